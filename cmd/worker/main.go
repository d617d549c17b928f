package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/estatedesk/estatedesk/internal/app"
	jobmetrics "github.com/estatedesk/estatedesk/internal/jobs"
	"github.com/estatedesk/estatedesk/internal/observability"
	"github.com/estatedesk/estatedesk/internal/platform/cache"
	"github.com/estatedesk/estatedesk/internal/platform/db"
	"github.com/estatedesk/estatedesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, ApplicationName: "estatedesk-worker"})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Warming is pointless without the cache, so Redis is required here.
	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	reporting := app.NewReporting(cfg, pool, redisClient, metrics.Registerer(), logger)
	warmupJob := jobs.NewReportsWarmupJob(reporting.Service, reporting.Repository, logger, jobmetrics.NewMetrics(metrics.Registerer()))

	opsRouter := app.NewOpsRouter(logger, metrics, map[string]app.HealthChecker{
		"postgres": pool,
		"redis":    app.HealthCheckFunc(cache.Ping(redisClient)),
	})
	opsServer := &http.Server{
		Addr:              cfg.WorkerAddr,
		Handler:           opsRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting ops server", slog.String("addr", cfg.WorkerAddr))
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server", slog.Any("error", err))
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("ops server shutdown", slog.Any("error", err))
		}
	}()

	warmupTask, err := jobs.NewReportsWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
