package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/estatedesk/estatedesk/internal/aggregate"
	"github.com/estatedesk/estatedesk/internal/records"
)

const (
	defaultTrendDays   = 30
	defaultRecentLimit = 20
	topListings        = 5
)

// Config tunes report assembly.
type Config struct {
	// TrendDays is the trailing trend window used when no range is requested.
	TrendDays int
	// PreviewMode substitutes sample reports when assembly fails.
	PreviewMode bool
	// RecentLimit caps the transaction lists embedded in reports.
	RecentLimit int
}

// Service assembles reports from a record source, with an optional cache.
type Service struct {
	source  records.Source
	cache   *Cache
	metrics *Metrics
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

// NewService wires a record Source with a Cache helper. cache and metrics
// may be nil.
func NewService(source records.Source, cache *Cache, metrics *Metrics, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = defaultTrendDays
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	return &Service{source: source, cache: cache, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// SetClock replaces the wall clock used to resolve trailing windows.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// frame is the resolved context a report is computed in.
type frame struct {
	req         Request
	windows     Windows
	cumulative  records.Range
	trend       records.Range
	granularity aggregate.Granularity
	now         time.Time
	preview     bool
	recent      int
}

func (f frame) header() Header {
	return Header{
		Report:      f.req.Type,
		Windows:     f.windows,
		Granularity: f.granularity,
		Preview:     f.preview,
		GeneratedAt: f.now,
	}
}

// plan describes one report: which collections it reads and how it is built
// from them. fixed forces a granularity.
type plan[V any] struct {
	fixed    aggregate.Granularity
	requests func(frame) []records.Request
	build    func(frame, records.Snapshot) *V
}

func (s *Service) frame(req Request, fixed aggregate.Granularity) frame {
	now := s.now().UTC()
	windows := resolveWindows(req.Range, s.cfg.TrendDays, now)
	f := frame{
		req:        req,
		windows:    windows,
		cumulative: windows.Cumulative.Range(),
		trend:      windows.Trend.Range(),
		now:        now,
		recent:     s.cfg.RecentLimit,
	}
	switch {
	case fixed != "":
		f.granularity = fixed
	case req.Granularity != "":
		f.granularity = req.Granularity
	default:
		f.granularity = aggregate.DefaultGranularity(f.trend)
	}
	return f
}

// assemble authorises the request, serves it from cache when possible and
// otherwise loads every collection the report needs before building it. A
// failed load never yields a partial report.
func assemble[V any](ctx context.Context, s *Service, req Request, want Type, p plan[V]) (*V, error) {
	start := time.Now()
	req.Type = want
	if err := req.Validate(); err != nil {
		s.metrics.observe(want, outcomeRejected, start)
		return nil, err
	}
	if !Allowed(req.Role, req.Type) {
		s.metrics.observe(want, outcomeRejected, start)
		return nil, fmt.Errorf("%w: role %s may not read %s", ErrForbidden, req.Role, req.Type)
	}

	f := s.frame(req, p.fixed)
	key := cacheKey(req, f.windows, f.granularity)
	logger := s.logger.With(
		slog.String("report", string(req.Type)),
		slog.String("tenant_id", req.Scope.String()),
	)

	if s.cache.Enabled() {
		var cached V
		err := s.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			s.metrics.cacheResult("hit")
			s.metrics.observe(want, outcomeCached, start)
			return &cached, nil
		case errors.Is(err, errMiss):
			s.metrics.cacheResult("miss")
			logger.Debug("report cache miss", slog.String("key", key))
		default:
			s.metrics.cacheResult("error")
			logger.Warn("report cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	snap, err := records.Load(ctx, s.source, req.Scope, p.requests(f)...)
	if err != nil {
		if passthrough(err) {
			s.metrics.observe(want, outcomeRejected, start)
			return nil, err
		}
		logger.Error("report unavailable", slog.Any("error", err))
		if s.cfg.PreviewMode {
			s.metrics.observe(want, outcomePreview, start)
			f.preview = true
			return p.build(f, previewSnapshot(f.trend, req.Scope)), nil
		}
		s.metrics.observe(want, outcomeUnavailable, start)
		return nil, &UnavailableError{Report: want, Err: err}
	}

	view := p.build(f, snap)
	if err := s.cache.Set(ctx, key, view); err != nil {
		s.metrics.cacheResult("error")
		logger.Warn("report cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	s.metrics.observe(want, outcomeSuccess, start)
	return view, nil
}

// Dashboard assembles the dashboard summary.
func (s *Service) Dashboard(ctx context.Context, req Request) (*DashboardSummary, error) {
	return assemble(ctx, s, req, TypeDashboard, dashboardPlan)
}

// Analytics assembles the listing analytics report.
func (s *Service) Analytics(ctx context.Context, req Request) (*Analytics, error) {
	return assemble(ctx, s, req, TypeAnalytics, analyticsPlan)
}

// Financial assembles the financial report.
func (s *Service) Financial(ctx context.Context, req Request) (*Financial, error) {
	return assemble(ctx, s, req, TypeFinancial, financialPlan)
}

// AdminOverview assembles the administrator overview.
func (s *Service) AdminOverview(ctx context.Context, req Request) (*AdminOverview, error) {
	return assemble(ctx, s, req, TypeAdminOverview, adminPlan)
}

// Ads assembles the ad performance report.
func (s *Service) Ads(ctx context.Context, req Request) (*AdReport, error) {
	return assemble(ctx, s, req, TypeAds, adsPlan)
}

// Wallet assembles the wallet report.
func (s *Service) Wallet(ctx context.Context, req Request) (*WalletReport, error) {
	return assemble(ctx, s, req, TypeWallet, walletPlan)
}

// Build assembles the report named by req.Type.
func (s *Service) Build(ctx context.Context, req Request) (Report, error) {
	switch req.Type {
	case TypeDashboard:
		return nonNil(s.Dashboard(ctx, req))
	case TypeAnalytics:
		return nonNil(s.Analytics(ctx, req))
	case TypeFinancial:
		return nonNil(s.Financial(ctx, req))
	case TypeAdminOverview:
		return nonNil(s.AdminOverview(ctx, req))
	case TypeAds:
		return nonNil(s.Ads(ctx, req))
	case TypeWallet:
		return nonNil(s.Wallet(ctx, req))
	default:
		return nil, fmt.Errorf("%w: unknown report type %q", ErrInvalidRequest, req.Type)
	}
}

// nonNil keeps a typed nil pointer out of the Report interface.
func nonNil[P Report](view P, err error) (Report, error) {
	if err != nil {
		return nil, err
	}
	return view, nil
}
