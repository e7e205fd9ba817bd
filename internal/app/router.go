package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpadp "doc-compliance/internal/adapter/http"
	"doc-compliance/internal/adapter/middleware"
)

// NewRouter builds the echo instance serving the compliance API.
func NewRouter(svc *Services, d Deps) *echo.Echo {
	d = d.withDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), requestLogger(d.Logger))

	health := httpadp.NewHandler(healthChecks(d)...)
	types := httpadp.NewDocumentTypeHandler(svc.Catalog, svc.Assign)
	reqs := httpadp.NewRequirementHandler(svc.Assign, svc.Flow)
	comp := httpadp.NewComplianceHandler(svc.Compliance, svc.Sweep, d.Clock)

	// mutating routes: actor check first, then idempotency keyed by that actor
	mutate := func(roles ...middleware.Role) []echo.MiddlewareFunc {
		mw := []echo.MiddlewareFunc{middleware.RequireActor(roles...)}
		if d.Redis != nil {
			mw = append(mw, middleware.Idempotency(d.Redis, d.IdempTTL, d.Logger))
		}
		return mw
	}
	admin := mutate(middleware.RoleAdmin)
	approver := mutate(middleware.RoleApprover, middleware.RoleAdmin)

	e.GET("/health", health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	e.GET("/document-types", types.List)
	e.GET("/document-types/:id", types.Get)
	e.PUT("/document-types", types.Upsert, admin...)
	e.POST("/document-types/:id/deactivate", types.Deactivate, admin...)
	e.POST("/document-types/:id/backfill", types.Backfill, admin...)

	e.POST("/employees/:employee_id/requirements", reqs.Assign, admin...)
	e.GET("/employees/:employee_id/requirements", reqs.ListForEmployee)
	e.GET("/employees/:employee_id/compliance", comp.Snapshot)

	e.GET("/requirements/:id", reqs.Get)
	e.POST("/requirements/:id/submit", reqs.Submit, mutate()...)
	e.POST("/requirements/:id/approve", reqs.Approve, approver...)
	e.POST("/requirements/:id/reject", reqs.Reject, approver...)

	e.POST("/sweeps", comp.Sweep, admin...)

	return e
}

func healthChecks(d Deps) []httpadp.Dependency {
	var out []httpadp.Dependency
	if d.DB != nil {
		out = append(out, httpadp.Dependency{Name: "database", Check: func(ctx context.Context) error {
			sqlDB, err := d.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}})
	}
	if d.Redis != nil {
		out = append(out, httpadp.Dependency{Name: "redis", Check: func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		}})
	}
	return out
}

func requestLogger(l *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency.Round(time.Microsecond)),
			}
			if id := c.Request().Header.Get(middleware.HeaderActorID); id != "" {
				attrs = append(attrs, slog.String("actor_id", id))
			}
			if v.Error != nil {
				attrs = append(attrs, slog.Any("error", v.Error))
				l.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
				return nil
			}
			l.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	})
}
