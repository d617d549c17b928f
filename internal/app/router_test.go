package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/estatedesk/estatedesk/internal/jobs"
	"github.com/estatedesk/estatedesk/internal/observability"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
	reporthttp "github.com/estatedesk/estatedesk/internal/reports/http"
	"github.com/estatedesk/estatedesk/jobs"
)

func newTestRouter(t *testing.T, checks map[string]HealthChecker) (http.Handler, records.Scope) {
	t.Helper()
	scope := records.Scope{TenantID: uuid.New()}
	mem := records.NewMemory()
	mem.Put(scope, records.Snapshot{
		Units: []records.Unit{
			{ID: uuid.New(), Title: "4B", Status: records.UnitRented, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			{ID: uuid.New(), Title: "7A", Status: records.UnitAvailable, CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		},
	})
	svc := reports.NewService(mem, nil, nil, nil, reports.Config{})
	cfg := &Config{AppEnv: "development", AppRequestTimeout: time.Second}
	return NewRouter(RouterParams{
		Config:        cfg,
		ReportHandler: reporthttp.NewHandler(nil, svc, cfg.AppRequestTimeout),
		JobHandler:    jobs.NewHandler(nil, nil, nil),
		Metrics:       observability.NewMetrics(),
		Checks:        checks,
	}), scope
}

func TestRouterServesReportForPrincipal(t *testing.T) {
	router, scope := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard-summary", nil)
	req.Header.Set("X-Tenant-ID", scope.TenantID.String())
	req.Header.Set("X-User-Role", "agent")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"occupancy_rate":50`)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Frame-Options"))
}

func TestRouterRejectsMissingIdentity(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports/financial", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouterGatesJobsToAdmins(t *testing.T) {
	router, scope := newTestRouter(t, nil)
	for role, want := range map[string]int{"manager": http.StatusForbidden, "admin": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
		req.Header.Set("X-Tenant-ID", scope.TenantID.String())
		req.Header.Set("X-User-Role", role)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, role)
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, map[string]HealthChecker{
		"postgres": HealthCheckFunc(func(ctx context.Context) error { return nil }),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"postgres":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `estatedesk_http_requests_total{code="200",route="/readyz"} 1`))
}

func TestOpsRouterExposesJobMetrics(t *testing.T) {
	metrics := observability.NewMetrics()
	tracked := jobmetrics.NewMetrics(metrics.Registerer())
	_ = tracked.Track("reports:warmup").End(errors.New("scope failed"))

	router := NewOpsRouter(nil, metrics, map[string]HealthChecker{
		"redis": HealthCheckFunc(func(ctx context.Context) error { return nil }),
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `estatedesk_jobs_failures_total{job="reports:warmup"} 1`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.JSONEq(t, `{"redis":"ok"}`, rr.Body.String())
}

func TestRouterReadinessFailure(t *testing.T) {
	router, _ := newTestRouter(t, map[string]HealthChecker{
		"redis": HealthCheckFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"redis":"unavailable"}`, rr.Body.String())
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{AppEnv: "production", LogFormat: "json"}, &buf).Info("ready")
	assert.Contains(t, buf.String(), `"msg":"ready"`)
	assert.Contains(t, buf.String(), `"env":"production"`)

	buf.Reset()
	newLogger(&Config{AppEnv: "development"}, &buf).Debug("verbose")
	assert.Contains(t, buf.String(), "msg=verbose")
}
