package reporthttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/estatedesk/internal/aggregate"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
	"github.com/estatedesk/estatedesk/internal/shared"
)

type stubService struct {
	last  reports.Request
	calls int
	err   error
}

func (s *stubService) Build(ctx context.Context, req reports.Request) (reports.Report, error) {
	s.last = req
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &reports.DashboardSummary{
		Header:     reports.Header{Report: req.Type},
		TotalUnits: 10,
	}, nil
}

func (s *stubService) Financial(ctx context.Context, req reports.Request) (*reports.Financial, error) {
	s.last = req
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &reports.Financial{
		Header:          reports.Header{Report: reports.TypeFinancial},
		TotalRevenue:    decimal.NewFromInt(100000),
		TotalExpenses:   decimal.NewFromInt(40000),
		NetProfit:       decimal.NewFromInt(60000),
		ProfitMarginPct: 60,
	}, nil
}

func (s *stubService) Analytics(ctx context.Context, req reports.Request) (*reports.Analytics, error) {
	s.last = req
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &reports.Analytics{Header: reports.Header{Report: reports.TypeAnalytics}, TotalViews: 42}, nil
}

var tenant = records.Scope{TenantID: uuid.MustParse("6f1c2f9e-3a55-4c3e-9f1e-2b0c6a4d7e11")}

func newRouter(svc ReportService) http.Handler {
	h := NewHandler(nil, svc, time.Second)
	h.WithNow(func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Anonymous") != "" {
				next.ServeHTTP(w, r)
				return
			}
			p := &shared.Principal{Scope: tenant, Role: reports.RoleManager}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), p)))
		})
	})
	h.MountRoutes(r)
	return r
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestReportJSON(t *testing.T) {
	svc := &stubService{}
	rr := get(t, newRouter(svc), "/reports/dashboard-summary?from=2024-01-01&to=2024-01-31&granularity=week")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "dashboard-summary", body["report"])
	assert.EqualValues(t, 10, body["total_units"])

	assert.Equal(t, tenant, svc.last.Scope)
	assert.Equal(t, reports.RoleManager, svc.last.Role)
	assert.Equal(t, reports.TypeDashboard, svc.last.Type)
	assert.Equal(t, aggregate.Week, svc.last.Granularity)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), svc.last.Range.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), svc.last.Range.To, "to is inclusive")
}

func TestReportWithoutRangeIsAllTime(t *testing.T) {
	svc := &stubService{}
	rr := get(t, newRouter(svc), "/reports/wallet")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, records.AllTime, svc.last.Range)
	assert.Empty(t, svc.last.Granularity)
}

func TestReportRejectsBadParameters(t *testing.T) {
	cases := map[string]string{
		"unknown type":        "/reports/balance-sheet",
		"bad date":            "/reports/financial?from=01-01-2024&to=2024-01-31",
		"unknown granularity": "/reports/financial?granularity=hourly",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubService{}
			rr := get(t, newRouter(svc), target)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestReportWithoutPrincipal(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard-summary", nil)
	req.Header.Set("X-Anonymous", "1")
	rr := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, svc.calls)
}

func TestReportErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{reports.ErrForbidden, http.StatusForbidden},
		{records.ErrNotFound, http.StatusNotFound},
		{&reports.UnavailableError{Report: reports.TypeDashboard, Err: records.ErrTransport}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		rr := get(t, newRouter(&stubService{err: tc.err}), "/reports/dashboard-summary")
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
	}
	rr := get(t, newRouter(&stubService{err: &reports.UnavailableError{Err: records.ErrTransport}}), "/reports/financial")
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestFinancialCSV(t *testing.T) {
	svc := &stubService{}
	rr := get(t, newRouter(svc), "/reports/financial/export.csv?from=2024-01-01&to=2024-03-31")

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="financial-2024-01-01_2024-03-31.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, reports.TypeFinancial, svc.last.Type)

	reader := csv.NewReader(strings.NewReader(rr.Body.String()))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"Net Profit", "60000.00"})
}

func TestAnalyticsCSVAllTime(t *testing.T) {
	rr := get(t, newRouter(&stubService{}), "/reports/analytics/export.csv")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="analytics-all-time-2024-06-15.csv"`, rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Body.String(), "Total Views,42")
}

func TestCSVExportIsRateLimitedPerTenant(t *testing.T) {
	router := newRouter(&stubService{})
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, get(t, router, "/reports/analytics/export.csv").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(t, router, "/reports/analytics/export.csv").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/reports/analytics").Code, "JSON reports are not limited")
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reports/financial/export.csv", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), &shared.Principal{Scope: tenant}))
	key, err := rateLimitKey(req)
	require.NoError(t, err)
	assert.Equal(t, "tenant:company:"+tenant.TenantID.String(), key)
}
