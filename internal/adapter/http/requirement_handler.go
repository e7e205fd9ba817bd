package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"doc-compliance/internal/adapter/middleware"
	"doc-compliance/internal/usecase/assignment"
	"doc-compliance/internal/usecase/workflow"
)

type RequirementHandler struct {
	assign *assignment.Usecase
	flow   *workflow.Usecase
}

func NewRequirementHandler(assign *assignment.Usecase, flow *workflow.Usecase) *RequirementHandler {
	return &RequirementHandler{assign: assign, flow: flow}
}

type assignReq struct {
	// empty assigns every active required type
	DocumentTypeID string `json:"document_type_id" validate:"omitempty,hex32"`
}

type approveReq struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

type rejectReq struct {
	Notes string `json:"notes" validate:"required,notblank,max=2000"`
}

func (h *RequirementHandler) Assign(c echo.Context) error {
	var req assignReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	employeeID := c.Param("employee_id")

	if req.DocumentTypeID == "" {
		created, err := h.assign.AssignRequiredFor(ctx, employeeID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"employee_id": employeeID, "created": created})
	}
	r, err := h.assign.AssignOne(ctx, employeeID, req.DocumentTypeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *RequirementHandler) ListForEmployee(c echo.Context) error {
	rs, err := h.assign.ListForEmployee(c.Request().Context(), c.Param("employee_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rs)
}

func (h *RequirementHandler) Get(c echo.Context) error {
	r, err := h.flow.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *RequirementHandler) Submit(c echo.Context) error {
	r, err := h.flow.Submit(c.Request().Context(), workflow.SubmitInput{
		RequirementID: c.Param("id"),
		ActorID:       actorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *RequirementHandler) Approve(c echo.Context) error {
	var req approveReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	r, err := h.flow.Approve(c.Request().Context(), workflow.ApproveInput{
		RequirementID: c.Param("id"),
		ActorID:       actorID(c),
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *RequirementHandler) Reject(c echo.Context) error {
	var req rejectReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	r, err := h.flow.Reject(c.Request().Context(), workflow.RejectInput{
		RequirementID: c.Param("id"),
		ActorID:       actorID(c),
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func actorID(c echo.Context) string {
	if a, ok := middleware.ActorFrom(c); ok {
		return a.ID
	}
	return c.Request().Header.Get(middleware.HeaderActorID)
}
