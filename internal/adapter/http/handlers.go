package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const checkTimeout = 2 * time.Second

// Dependency reports whether a backing dependency is reachable.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct {
	deps []Dependency
}

func NewHandler(deps ...Dependency) *Handler { return &Handler{deps: deps} }

// Health answers 200 when every dependency check passes and 503 with per-dependency
// errors otherwise.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for _, d := range h.deps {
		if err := d.Check(ctx); err != nil {
			checks[d.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[d.Name] = "ok"
	}
	return c.JSON(code, map[string]any{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
