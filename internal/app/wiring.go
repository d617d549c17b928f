package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
)

// Retry builds the fetch retry policy from configuration.
func (c *Config) Retry(logger *slog.Logger) records.Retry {
	return records.Retry{
		Attempts: c.ReportFetchAttempts,
		Backoff:  c.ReportRetryBackoff,
		Logger:   logger,
	}
}

// ReportConfig builds the assembler settings from configuration.
func (c *Config) ReportConfig() reports.Config {
	return reports.Config{
		TrendDays:   c.ReportTrendDays,
		PreviewMode: c.PreviewMode,
		RecentLimit: c.ReportRecentLimit,
	}
}

// Reporting bundles the record repository and the report service built on it.
type Reporting struct {
	Repository *records.Repository
	Service    *reports.Service
}

// NewReporting wires the pgx repository, Redis cache and Prometheus
// instrumentation into a report service. redisClient may be nil to run
// without a cache.
func NewReporting(cfg *Config, pool *pgxpool.Pool, redisClient redis.Cmdable, registerer prometheus.Registerer, logger *slog.Logger) Reporting {
	repo := records.NewRepository(pool, cfg.Retry(logger), logger)
	var cache *reports.Cache
	if redisClient != nil {
		cache = reports.NewCache(redisClient, cfg.ReportCacheTTL)
	}
	svc := reports.NewService(repo, cache, reports.NewMetrics(registerer), logger, cfg.ReportConfig())
	return Reporting{Repository: repo, Service: svc}
}
