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
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"doc-compliance/internal/adapter/notify"
	"doc-compliance/internal/app"
	"doc-compliance/internal/config"
	"doc-compliance/internal/domain/event"
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
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	gdb, err := db.Open(cfg, logger)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	m := metrics.New(nil)
	var (
		rdb      *redis.Client
		notifier event.Notifier = notify.NewLog(logger)
	)
	if cfg.RedisEnabled() {
		rdb, err = cache.Open(ctx, cfg)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()

		queue := asynq.NewClient(cache.QueueOpt(cfg))
		defer queue.Close()
		notifier = notify.NewQueue(queue, cfg.NotifyQueue)
	} else {
		logger.Warn("REDIS_ADDR empty: idempotency and event queue disabled")
	}

	deps := app.Deps{
		DB:             gdb,
		Redis:          rdb,
		IdempTTL:       cfg.IdempTTL,
		Notifier:       notifier,
		Metrics:        m,
		Logger:         logger,
		SweepBatchSize: cfg.SweepBatchSize,
	}
	svc := app.NewServices(deps)
	e := app.NewRouter(svc, deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.AppPort
		logger.Info("listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if cfg.EmbedWorker && rdb != nil {
		w, err := app.NewWorker(cfg, svc, logger, m)
		if err != nil {
			logger.Error("init worker", slog.Any("error", err))
			os.Exit(1)
		}
		g.Go(func() error {
			if err := w.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
