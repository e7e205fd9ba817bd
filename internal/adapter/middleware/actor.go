package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"

	actorKey = "compliance.actor"
	// matches the employee_id / approver_id column width
	maxActorIDLen = 64
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleApprover Role = "approver"
	RoleEmployee Role = "employee"
)

func (r Role) valid() bool {
	switch r {
	case RoleAdmin, RoleApprover, RoleEmployee:
		return true
	}
	return false
}

// Actor is the authenticated caller as asserted by the upstream gateway.
type Actor struct {
	ID   string
	Role Role
}

// RequireActor reads the actor headers and, when roles are given, rejects
// callers holding none of them.
func RequireActor(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			id := strings.TrimSpace(h.Get(HeaderActorID))
			if id == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + HeaderActorID})
			}
			if len(id) > maxActorIDLen {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid " + HeaderActorID})
			}
			role := Role(strings.ToLower(strings.TrimSpace(h.Get(HeaderActorRole))))
			if !role.valid() {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or unknown " + HeaderActorRole})
			}
			if len(roles) > 0 && !hasRole(roles, role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "role " + string(role) + " may not perform this action"})
			}
			c.Set(actorKey, Actor{ID: id, Role: role})
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by RequireActor.
func ActorFrom(c echo.Context) (Actor, bool) {
	a, ok := c.Get(actorKey).(Actor)
	return a, ok
}

func hasRole(roles []Role, r Role) bool {
	for _, want := range roles {
		if want == r {
			return true
		}
	}
	return false
}
