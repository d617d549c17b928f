package reporthttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/estatedesk/estatedesk/internal/aggregate"
	"github.com/estatedesk/estatedesk/internal/platform/httpx"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
	"github.com/estatedesk/estatedesk/internal/reports/export"
	"github.com/estatedesk/estatedesk/internal/shared"
)

const (
	dateLayout            = "2006-01-02"
	defaultRequestTimeout = 10 * time.Second
)

// ReportService defines the assembly contract used by the handler.
type ReportService interface {
	Build(ctx context.Context, req reports.Request) (reports.Report, error)
	Financial(ctx context.Context, req reports.Request) (*reports.Financial, error)
	Analytics(ctx context.Context, req reports.Request) (*reports.Analytics, error)
}

// Handler serves report view models as JSON and CSV.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	timeout time.Duration
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the report HTTP handler. A non-positive timeout
// selects the default.
func NewHandler(logger *slog.Logger, service ReportService, timeout time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	h := &Handler{
		logger:  logger,
		service: service,
		timeout: timeout,
		now:     time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r, chi.URLParam(r, "type"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.service.Build(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleFinancialCSV(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r, string(reports.TypeFinancial))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.service.Financial(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.streamCSV(w, "financial", req, func(buf io.Writer) error {
		return export.WriteFinancialCSV(buf, *view)
	})
}

func (h *Handler) handleAnalyticsCSV(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r, string(reports.TypeAnalytics))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.service.Analytics(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.streamCSV(w, "analytics", req, func(buf io.Writer) error {
		return export.WriteAnalyticsCSV(buf, *view)
	})
}

// streamCSV renders into a pooled buffer first so a write failure still
// produces a clean error response.
func (h *Handler) streamCSV(w http.ResponseWriter, name string, req reports.Request, write func(io.Writer) error) {
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := write(buf); err != nil {
		h.logger.Error("write csv", slog.String("report", name), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", name, h.filenameSuffix(req.Range))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("stream csv", slog.Any("error", err))
	}
}

func (h *Handler) filenameSuffix(rng records.Range) string {
	if !rng.Bounded() {
		return "all-time-" + h.now().UTC().Format(dateLayout)
	}
	return rng.From.Format(dateLayout) + "_" + rng.To.AddDate(0, 0, -1).Format(dateLayout)
}

// parseRequest reads the principal and the from/to/granularity query
// parameters. Dates are whole UTC days and to is inclusive.
func (h *Handler) parseRequest(r *http.Request, rawType string) (reports.Request, error) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		return reports.Request{}, fmt.Errorf("%w: no principal on request", records.ErrInvalidTenant)
	}
	reportType, err := reports.ParseType(rawType)
	if err != nil {
		return reports.Request{}, err
	}

	query := r.URL.Query()
	req := reports.Request{Scope: p.Scope, Role: p.Role, Type: reportType}

	from, err := parseDate(query.Get("from"))
	if err != nil {
		return reports.Request{}, err
	}
	to, err := parseDate(query.Get("to"))
	if err != nil {
		return reports.Request{}, err
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}
	req.Range = records.Range{From: from, To: to}

	if raw := strings.TrimSpace(query.Get("granularity")); raw != "" {
		g, err := aggregate.ParseGranularity(raw)
		if err != nil {
			return reports.Request{}, fmt.Errorf("%w: %v", reports.ErrInvalidRequest, err)
		}
		req.Granularity = g
	}
	return req, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", reports.ErrInvalidRequest, raw)
	}
	return t, nil
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// client went away
		return
	}
	if httpx.Status(err) >= http.StatusInternalServerError {
		attrs := []any{slog.String("path", r.URL.Path), slog.Any("error", err)}
		if p := shared.PrincipalFromContext(r.Context()); p != nil {
			attrs = append(attrs, slog.String("tenant_id", p.Scope.TenantID.String()))
		}
		h.logger.Error("report request failed", attrs...)
	}
	httpx.RespondError(w, err)
}
