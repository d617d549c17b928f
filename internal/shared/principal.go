package shared

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/estatedesk/estatedesk/internal/platform/httpx"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
)

const (
	// ScopeCompany marks a company account tenant.
	ScopeCompany = "company"
	// ScopeIndividual marks a single-owner tenant.
	ScopeIndividual = "individual"
)

// Headers names the identity headers set by the auth gateway.
type Headers struct {
	Tenant string
	Scope  string
	User   string
	Role   string
}

// DefaultHeaders are used for any header name left empty.
var DefaultHeaders = Headers{
	Tenant: "X-Tenant-ID",
	Scope:  "X-Tenant-Scope",
	User:   "X-User-ID",
	Role:   "X-User-Role",
}

func (h Headers) withDefaults() Headers {
	if h.Tenant == "" {
		h.Tenant = DefaultHeaders.Tenant
	}
	if h.Scope == "" {
		h.Scope = DefaultHeaders.Scope
	}
	if h.User == "" {
		h.User = DefaultHeaders.User
	}
	if h.Role == "" {
		h.Role = DefaultHeaders.Role
	}
	return h
}

// ScopeResolver maps an authenticated user to the tenant scope they act in.
type ScopeResolver interface {
	ResolveScope(ctx context.Context, userID uuid.UUID) (records.Scope, error)
}

// PrincipalMiddleware builds the request principal from identity headers.
// An explicit tenant header wins; otherwise the user header is resolved
// through resolver. Requests without a usable identity are rejected.
func PrincipalMiddleware(headers Headers, resolver ScopeResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	headers = headers.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := principalFromRequest(r, headers, resolver)
			if err != nil {
				if httpx.Status(err) >= http.StatusInternalServerError {
					logger.Error("resolve principal", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

func principalFromRequest(r *http.Request, headers Headers, resolver ScopeResolver) (*Principal, error) {
	role, err := reports.ParseRole(r.Header.Get(headers.Role))
	if err != nil {
		return nil, err
	}

	if tenant := r.Header.Get(headers.Tenant); strings.TrimSpace(tenant) != "" {
		individual, err := parseScopeKind(r.Header.Get(headers.Scope))
		if err != nil {
			return nil, err
		}
		scope, err := records.ParseScope(tenant, individual)
		if err != nil {
			return nil, err
		}
		return &Principal{Scope: scope, Role: role}, nil
	}

	user := strings.TrimSpace(r.Header.Get(headers.User))
	if user == "" || resolver == nil {
		return nil, fmt.Errorf("%w: no tenant identity on request", records.ErrInvalidTenant)
	}
	userID, err := uuid.Parse(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", records.ErrInvalidTenant, err)
	}
	scope, err := resolver.ResolveScope(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return &Principal{Scope: scope, Role: role}, nil
}

func parseScopeKind(raw string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", ScopeCompany:
		return false, nil
	case ScopeIndividual:
		return true, nil
	}
	return false, fmt.Errorf("%w: unknown tenant scope %q", records.ErrInvalidTenant, raw)
}

// RequireRole rejects requests whose principal is not one of roles.
func RequireRole(roles ...reports.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				httpx.RespondError(w, records.ErrInvalidTenant)
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, reports.ErrForbidden)
		})
	}
}
