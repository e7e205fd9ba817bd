package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireActor(t *testing.T) {
	tests := []struct {
		name  string
		roles []Role
		id    string
		role  string
		want  int
	}{
		{name: "any role allowed", id: "E1", role: "employee", want: http.StatusOK},
		{name: "role is case-insensitive", roles: []Role{RoleAdmin}, id: "A1", role: "Admin", want: http.StatusOK},
		{name: "approver on approver route", roles: []Role{RoleApprover, RoleAdmin}, id: "A1", role: "approver", want: http.StatusOK},
		{name: "employee on approver route", roles: []Role{RoleApprover, RoleAdmin}, id: "E1", role: "employee", want: http.StatusForbidden},
		{name: "missing id", role: "admin", want: http.StatusUnauthorized},
		{name: "id too long", id: strings.Repeat("x", 65), role: "admin", want: http.StatusUnauthorized},
		{name: "missing role", id: "E1", want: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			var seen Actor
			h := RequireActor(tc.roles...)(func(c echo.Context) error {
				seen, _ = ActorFrom(c)
				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.id != "" {
				req.Header.Set(HeaderActorID, tc.id)
			}
			if tc.role != "" {
				req.Header.Set(HeaderActorRole, tc.role)
			}
			rec := httptest.NewRecorder()
			if err := h(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
			if tc.want == http.StatusOK && (seen.ID != tc.id || seen.Role != Role(strings.ToLower(tc.role))) {
				t.Fatalf("actor not stored: %+v", seen)
			}
		})
	}
}

func TestActorFrom_Missing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, ok := ActorFrom(c); ok {
		t.Fatal("expected no actor")
	}
}
