package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"doc-compliance/internal/usecase/compliance"
	"doc-compliance/internal/usecase/sweep"
)

type ComplianceHandler struct {
	snapshots *compliance.Usecase
	sweeper   *sweep.Usecase
	clock     func() time.Time
}

// NewComplianceHandler uses clock for a sweep without an explicit now; nil
// means wall time.
func NewComplianceHandler(snapshots *compliance.Usecase, sweeper *sweep.Usecase, clock func() time.Time) *ComplianceHandler {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &ComplianceHandler{snapshots: snapshots, sweeper: sweeper, clock: clock}
}

type sweepReq struct {
	Now *time.Time `json:"now"`
}

// Snapshot evaluates compliance now, or at ?as_of= (RFC3339).
func (h *ComplianceHandler) Snapshot(c echo.Context) error {
	ctx, employeeID := c.Request().Context(), c.Param("employee_id")
	var (
		s   *compliance.Snapshot
		err error
	)
	if raw := c.QueryParam("as_of"); raw != "" {
		asOf, perr := time.Parse(time.RFC3339Nano, raw)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "as_of must be RFC3339 with timezone", Code: "bad_request"})
		}
		s, err = h.snapshots.SnapshotAt(ctx, employeeID, asOf.UTC())
	} else {
		s, err = h.snapshots.Snapshot(ctx, employeeID)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Sweep runs one expiry pass synchronously.
func (h *ComplianceHandler) Sweep(c echo.Context) error {
	var req sweepReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	now := h.clock()
	if req.Now != nil {
		now = req.Now.UTC()
	}
	n, err := h.sweeper.Sweep(c.Request().Context(), now)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"now": now, "expired": n})
}
