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
	"golang.org/x/sync/errgroup"

	"doc-compliance/internal/adapter/notify"
	"doc-compliance/internal/app"
	"doc-compliance/internal/config"
	"doc-compliance/internal/infrastructure/cache"
	"doc-compliance/internal/infrastructure/db"
	"doc-compliance/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg).With(slog.String("process", "worker"))
	slog.SetDefault(logger)

	if !cfg.RedisEnabled() {
		logger.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	gdb, err := db.Open(cfg, logger)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}

	queue := asynq.NewClient(cache.QueueOpt(cfg))
	defer queue.Close()

	m := metrics.New(nil)
	svc := app.NewServices(app.Deps{
		DB:             gdb,
		Notifier:       notify.NewQueue(queue, cfg.NotifyQueue),
		Metrics:        m,
		Logger:         logger,
		SweepBatchSize: cfg.SweepBatchSize,
	})

	worker, err := app.NewWorker(cfg, svc, logger, m)
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("sweep scheduled", slog.String("cron", cfg.SweepCron))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if cfg.WorkerMetricsAddr != "" {
		srv := app.NewMetricsServer(cfg.WorkerMetricsAddr, nil)
		g.Go(func() error {
			logger.Info("metrics listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
