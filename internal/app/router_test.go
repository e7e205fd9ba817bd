package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"doc-compliance/internal/adapter/middleware"
	"doc-compliance/internal/domain/doctype"
	"doc-compliance/internal/domain/event"
	"doc-compliance/internal/domain/requirement"
	"doc-compliance/internal/infrastructure/db"
	"doc-compliance/internal/metrics"
	"doc-compliance/internal/testutil/notifymock"
	"doc-compliance/internal/usecase/compliance"
	"doc-compliance/pkg/id"
)

type harness struct {
	t        *testing.T
	e        *echo.Echo
	notifier *notifymock.Recorder
}

func newHarness(t *testing.T, clock func() time.Time) *harness {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := prometheus.NewRegistry()
	notifier := &notifymock.Recorder{}
	deps := Deps{
		DB:       gdb,
		Redis:    rdb,
		IdempTTL: time.Minute,
		Notifier: notifier,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Clock:    clock,
	}
	return &harness{t: t, e: NewRouter(NewServices(deps), deps), notifier: notifier}
}

type call struct {
	method, path string
	body         any
	actor, role  string
	requestID    string
}

func (h *harness) do(c call) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.actor != "" {
		req.Header.Set(middleware.HeaderActorID, c.actor)
		req.Header.Set(middleware.HeaderActorRole, c.role)
	}
	if c.method != http.MethodGet {
		if c.requestID == "" {
			c.requestID = id.NewID32()
		}
		req.Header.Set(middleware.HeaderRequestID, c.requestID)
		req.Header.Set(middleware.HeaderRequestAt, time.Now().UTC().Format(time.RFC3339))
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestIDCardLifecycleOverHTTP(t *testing.T) {
	approvedOn := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := newHarness(t, func() time.Time { return approvedOn })

	rec := h.do(call{method: http.MethodPut, path: "/document-types", actor: "HR1", role: "admin", body: map[string]any{
		"name": "ID Card", "category": "identity", "required": true,
		"has_expiration": true, "renewal_period": 12, "renewal_unit": "months",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	idCard := decode[doctype.DocumentType](t, rec)

	rec = h.do(call{method: http.MethodPost, path: "/employees/E1/requirements", actor: "HR1", role: "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assigned := decode[struct {
		Created []requirement.Requirement `json:"created"`
	}](t, rec)
	require.Len(t, assigned.Created, 1)
	reqID := assigned.Created[0].RequirementID

	rec = h.do(call{method: http.MethodPost, path: "/requirements/" + reqID + "/submit", actor: "E1", role: "employee"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(call{method: http.MethodPost, path: "/requirements/" + reqID + "/approve", actor: "E1", role: "employee"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "employees cannot approve")

	approveID := id.NewID32()
	approve := call{method: http.MethodPost, path: "/requirements/" + reqID + "/approve", actor: "A1", role: "approver", requestID: approveID}
	rec = h.do(approve)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[requirement.Requirement](t, rec)
	require.NotNil(t, approved.ExpiresAt)
	assert.True(t, approved.ExpiresAt.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	replay := h.do(approve)
	assert.Equal(t, http.StatusOK, replay.Code, "a retried approve replays the stored response")
	assert.Equal(t, rec.Body.String(), replay.Body.String())
	assert.Equal(t, "true", replay.Header().Get(middleware.HeaderReplayed), "the replay is how a caller detects its retry")

	rec = h.do(call{method: http.MethodPost, path: "/requirements/" + reqID + "/approve", actor: "A1", role: "approver"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_approved")

	rec = h.do(call{method: http.MethodGet, path: "/employees/E1/compliance?as_of=2024-06-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[compliance.Snapshot](t, rec).IsCompliant)

	rec = h.do(call{method: http.MethodPost, path: "/sweeps", actor: "OPS", role: "admin", body: map[string]any{"now": "2025-02-01T00:00:00Z"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode[map[string]any](t, rec)["expired"])

	rec = h.do(call{method: http.MethodGet, path: "/employees/E1/compliance?as_of=2025-02-01T00:00:00Z"})
	snap := decode[compliance.Snapshot](t, rec)
	assert.False(t, snap.IsCompliant)
	assert.Equal(t, []string{idCard.TypeID}, snap.MissingDocumentTypeIDs)
	assert.Equal(t, 1, snap.Counts[requirement.StatusExpired])

	assert.Equal(t, []event.Kind{
		event.KindAssigned, event.KindSubmitted, event.KindApproved, event.KindExpired,
	}, h.notifier.Kinds())

	rec = h.do(call{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `compliance_requirement_transitions_total{status="approved"} 1`), rec.Body.String())
}

func TestRenewalAfterExpiryOverHTTP(t *testing.T) {
	h := newHarness(t, func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) })

	rec := h.do(call{method: http.MethodPut, path: "/document-types", actor: "HR1", role: "admin", body: map[string]any{
		"name": "First Aid", "required": true, "has_expiration": true, "renewal_period": 30, "renewal_unit": "days",
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	typeID := decode[doctype.DocumentType](t, rec).TypeID

	assign := func() *httptest.ResponseRecorder {
		return h.do(call{method: http.MethodPost, path: "/employees/E7/requirements", actor: "HR1", role: "admin",
			body: map[string]string{"document_type_id": typeID}})
	}
	rec = assign()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[requirement.Requirement](t, rec)

	rec = assign()
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), first.RequirementID)

	h.do(call{method: http.MethodPost, path: "/requirements/" + first.RequirementID + "/submit", actor: "E7", role: "employee"})
	h.do(call{method: http.MethodPost, path: "/requirements/" + first.RequirementID + "/approve", actor: "A1", role: "approver"})
	rec = h.do(call{method: http.MethodPost, path: "/sweeps", actor: "OPS", role: "admin", body: map[string]any{"now": "2024-03-01T00:00:00Z"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = assign()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	second := decode[requirement.Requirement](t, rec)
	assert.Equal(t, 2, second.Cycle)
	assert.Equal(t, requirement.StatusPending, second.Status)

	rec = h.do(call{method: http.MethodGet, path: "/employees/E7/requirements"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]requirement.Requirement](t, rec), 2)
}

func TestMutatingRoutesNeedActor(t *testing.T) {
	h := newHarness(t, nil)
	rec := h.do(call{method: http.MethodPost, path: "/sweeps"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(call{method: http.MethodPost, path: "/sweeps", actor: "E1", role: "employee"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestComplianceAndSweepFollowTheServiceClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := newHarness(t, func() time.Time { return now })

	rec := h.do(call{method: http.MethodPut, path: "/document-types", actor: "HR1", role: "admin", body: map[string]any{
		"name": "ID Card", "required": true, "has_expiration": true, "renewal_period": 12, "renewal_unit": "months",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(call{method: http.MethodPost, path: "/employees/E1/requirements", actor: "HR1", role: "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reqID := decode[struct {
		Created []requirement.Requirement `json:"created"`
	}](t, rec).Created[0].RequirementID
	h.do(call{method: http.MethodPost, path: "/requirements/" + reqID + "/submit", actor: "E1", role: "employee"})
	rec = h.do(call{method: http.MethodPost, path: "/requirements/" + reqID + "/approve", actor: "A1", role: "approver"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(call{method: http.MethodGet, path: "/employees/E1/compliance"})
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[compliance.Snapshot](t, rec)
	assert.True(t, snap.AsOf.Equal(now), "as_of = %v", snap.AsOf)
	assert.True(t, snap.IsCompliant)

	rec = h.do(call{method: http.MethodPost, path: "/sweeps", actor: "OPS", role: "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(0), decode[map[string]any](t, rec)["expired"], "nothing lapses under the pinned clock")

	rec = h.do(call{method: http.MethodGet, path: "/requirements/" + reqID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, requirement.StatusApproved, decode[requirement.Requirement](t, rec).Status)
}
