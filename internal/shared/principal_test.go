package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
)

type stubResolver struct {
	scope records.Scope
	err   error
	asked uuid.UUID
}

func (s *stubResolver) ResolveScope(ctx context.Context, userID uuid.UUID) (records.Scope, error) {
	s.asked = userID
	return s.scope, s.err
}

func serve(t *testing.T, resolver ScopeResolver, header http.Header) (*httptest.ResponseRecorder, *Principal) {
	t.Helper()
	var got *Principal
	handler := PrincipalMiddleware(Headers{}, resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard-summary", nil)
	req.Header = header
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, got
}

func TestPrincipalMiddlewareTenantHeader(t *testing.T) {
	tenant := uuid.New()
	rr, p := serve(t, nil, http.Header{
		"X-Tenant-Id":    {tenant.String()},
		"X-Tenant-Scope": {"Individual"},
		"X-User-Role":    {"Manager"},
	})
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, p)
	assert.Equal(t, records.Scope{TenantID: tenant, Individual: true}, p.Scope)
	assert.Equal(t, reports.RoleManager, p.Role)
}

func TestPrincipalMiddlewareResolvesUser(t *testing.T) {
	company := uuid.New()
	user := uuid.New()
	resolver := &stubResolver{scope: records.Scope{TenantID: company}}
	rr, p := serve(t, resolver, http.Header{
		"X-User-Id":   {user.String()},
		"X-User-Role": {"agent"},
	})
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, user, resolver.asked)
	assert.Equal(t, company, p.Scope.TenantID)
	assert.False(t, p.Scope.Individual)
}

func TestPrincipalMiddlewareRejects(t *testing.T) {
	cases := map[string]struct {
		resolver ScopeResolver
		header   http.Header
		status   int
	}{
		"missing identity": {
			header: http.Header{"X-User-Role": {"admin"}},
			status: http.StatusBadRequest,
		},
		"malformed tenant": {
			header: http.Header{"X-Tenant-Id": {"not-a-uuid"}, "X-User-Role": {"admin"}},
			status: http.StatusBadRequest,
		},
		"nil tenant": {
			header: http.Header{"X-Tenant-Id": {uuid.Nil.String()}, "X-User-Role": {"admin"}},
			status: http.StatusBadRequest,
		},
		"unknown scope kind": {
			header: http.Header{"X-Tenant-Id": {uuid.NewString()}, "X-Tenant-Scope": {"team"}, "X-User-Role": {"admin"}},
			status: http.StatusBadRequest,
		},
		"unknown role": {
			header: http.Header{"X-Tenant-Id": {uuid.NewString()}, "X-User-Role": {"owner"}},
			status: http.StatusBadRequest,
		},
		"user without account": {
			resolver: &stubResolver{err: records.ErrNotFound},
			header:   http.Header{"X-User-Id": {uuid.NewString()}, "X-User-Role": {"admin"}},
			status:   http.StatusNotFound,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr, p := serve(t, tc.resolver, tc.header)
			assert.Equal(t, tc.status, rr.Code)
			assert.Nil(t, p)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	guard := RequireRole(reports.RoleAdmin)(ok)

	run := func(p *Principal) int {
		req := httptest.NewRequest(http.MethodPost, "/jobs/warmup", nil)
		if p != nil {
			req = req.WithContext(ContextWithPrincipal(req.Context(), p))
		}
		rr := httptest.NewRecorder()
		guard.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, run(&Principal{Role: reports.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, run(&Principal{Role: reports.RoleAgent}))
	assert.Equal(t, http.StatusBadRequest, run(nil))
}
