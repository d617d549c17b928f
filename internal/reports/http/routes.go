package reporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/estatedesk/estatedesk/internal/shared"
)

// MountRoutes registers report endpoints onto the router. CSV exports are
// rate limited per tenant.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Route("/reports", func(rr chi.Router) {
		rr.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/financial/export.csv", h.handleFinancialCSV)
			gr.Get("/analytics/export.csv", h.handleAnalyticsCSV)
		})
		rr.Get("/{type}", h.handleReport)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if p := shared.PrincipalFromContext(r.Context()); p != nil {
		return "tenant:" + p.Scope.String(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
