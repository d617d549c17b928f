package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/estatedesk/estatedesk/internal/observability"
	"github.com/estatedesk/estatedesk/internal/platform/httpx"
	"github.com/estatedesk/estatedesk/internal/reports"
	reporthttp "github.com/estatedesk/estatedesk/internal/reports/http"
	"github.com/estatedesk/estatedesk/internal/shared"
	"github.com/estatedesk/estatedesk/jobs"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// Ping calls f.
func (f HealthCheckFunc) Ping(ctx context.Context) error { return f(ctx) }

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	ReportHandler *reporthttp.Handler
	JobHandler    *jobs.Handler
	ScopeResolver shared.ScopeResolver
	Metrics       *observability.Metrics
	Checks        map[string]HealthChecker
}

// NewRouter constructs the chi.Router with service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(params.Logger, params.Checks))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(shared.PrincipalMiddleware(params.Config.Headers(), params.ScopeResolver, params.Logger))
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.With(shared.RequireRole(reports.RoleAdmin)).Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}

// NewOpsRouter serves the health and metrics endpoints of processes that have
// no public API, such as the worker.
func NewOpsRouter(logger *slog.Logger, metrics *observability.Metrics, checks map[string]HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(logger, checks))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}
	return r
}

func readiness(logger *slog.Logger, checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{}
		code := http.StatusOK
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(r.Context()); err != nil {
				if logger != nil {
					logger.Warn("readiness check failed", slog.String("dependency", name), slog.Any("error", err))
				}
				status[name] = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httpx.JSON(w, code, status)
	}
}
