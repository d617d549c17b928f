package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/estatedesk/estatedesk/internal/jobs"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const scopeTimeout = 20 * time.Second

// ReportBuilder assembles a report; building it fills the report cache.
type ReportBuilder interface {
	Build(ctx context.Context, req reports.Request) (reports.Report, error)
}

// ScopeLister discovers the tenant scopes worth warming.
type ScopeLister interface {
	Scopes(ctx context.Context) ([]records.Scope, error)
}

// ReportsWarmupJob prebuilds reports for every company scope so dashboards
// are served from cache.
type ReportsWarmupJob struct {
	Reports ReportBuilder
	Scopes  ScopeLister
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(builder ReportBuilder, scopes ScopeLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{
		Reports: builder,
		Scopes:  scopes,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes warmup tasks. A scope that fails does not stop the run;
// the task fails at the end so asynq retries it.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil || j.Scopes == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("reports warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	types, err := payload.Types()
	if err != nil {
		return fmt.Errorf("reports warmup: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskReportsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting reports warmup", slog.Int("report_types", len(types)))

	scopes, err := j.Scopes.Scopes(ctx)
	if err != nil {
		resultErr = err
		logger.Error("load warmup scopes", slog.Any("error", err))
		return resultErr
	}
	if len(scopes) == 0 {
		logger.Info("no scopes discovered for warmup")
		return resultErr
	}

	start := j.now()
	var failures []error
	warmed := 0
	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}
		if err := j.warmScope(ctx, scope, types); err != nil {
			failures = append(failures, err)
			logger.Warn("warm scope", slog.String("tenant_id", scope.TenantID.String()), slog.Any("error", err))
			continue
		}
		warmed++
	}
	j.metrics().AddScopes(TaskReportsWarmup, "warmed", warmed)
	j.metrics().AddScopes(TaskReportsWarmup, "failed", len(scopes)-warmed)

	logger.Info("completed reports warmup",
		slog.Int("scopes", len(scopes)),
		slog.Int("warmed", warmed),
		slog.Duration("duration", j.now().Sub(start)))
	resultErr = errors.Join(failures...)
	return resultErr
}

func (j *ReportsWarmupJob) warmScope(ctx context.Context, scope records.Scope, types []reports.Type) error {
	scopeCtx, cancel := context.WithTimeout(ctx, scopeTimeout)
	defer cancel()

	for _, t := range types {
		req := reports.Request{Scope: scope, Role: reports.RoleAdmin, Type: t}
		if _, err := j.Reports.Build(scopeCtx, req); err != nil {
			return fmt.Errorf("%s for %s: %w", t, scope, err)
		}
	}
	return nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
