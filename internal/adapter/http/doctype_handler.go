package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"doc-compliance/internal/usecase/assignment"
	"doc-compliance/internal/usecase/catalog"
)

type DocumentTypeHandler struct {
	catalog *catalog.Usecase
	assign  *assignment.Usecase
}

func NewDocumentTypeHandler(catalog *catalog.Usecase, assign *assignment.Usecase) *DocumentTypeHandler {
	return &DocumentTypeHandler{catalog: catalog, assign: assign}
}

type upsertDocumentTypeReq struct {
	Name          string  `json:"name"           validate:"required,notblank,max=191"`
	Category      string  `json:"category"       validate:"max=64"`
	Description   string  `json:"description"`
	Required      bool    `json:"required"`
	HasExpiration bool    `json:"has_expiration"`
	RenewalPeriod *int    `json:"renewal_period" validate:"omitempty,gt=0"`
	RenewalUnit   *string `json:"renewal_unit"   validate:"omitempty,oneof=days months years"`
}

func (h *DocumentTypeHandler) List(c echo.Context) error {
	var in catalog.ListInput
	if v := strings.TrimSpace(c.QueryParam("category")); v != "" {
		in.Category = &v
	}
	if v := c.QueryParam("required"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "required must be true or false", Code: "bad_request"})
		}
		in.Required = &b
	}
	items, err := h.catalog.List(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *DocumentTypeHandler) Get(c echo.Context) error {
	d, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DocumentTypeHandler) Upsert(c echo.Context) error {
	var req upsertDocumentTypeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	d, err := h.catalog.Upsert(c.Request().Context(), catalog.UpsertInput{
		Name:          req.Name,
		Category:      req.Category,
		Description:   req.Description,
		Required:      req.Required,
		HasExpiration: req.HasExpiration,
		RenewalPeriod: req.RenewalPeriod,
		RenewalUnit:   req.RenewalUnit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DocumentTypeHandler) Deactivate(c echo.Context) error {
	d, err := h.catalog.Deactivate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// Backfill assigns the type to every known employee.
func (h *DocumentTypeHandler) Backfill(c echo.Context) error {
	typeID := c.Param("id")
	n, err := h.assign.BackfillType(c.Request().Context(), typeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"document_type_id": typeID, "created": n})
}
