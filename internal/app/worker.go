package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"doc-compliance/internal/config"
	"doc-compliance/internal/infrastructure/cache"
	"doc-compliance/internal/jobs"
	"doc-compliance/internal/metrics"
)

// NewWorker registers the sweep cron and the event consumer.
func NewWorker(cfg *config.Config, svc *Services, logger *slog.Logger, m *metrics.Metrics) (*jobs.Worker, error) {
	sweepTask, err := jobs.NewSweepTask(jobs.SweepPayload{})
	if err != nil {
		return nil, err
	}
	sweepJob := jobs.NewSweepJob(svc.Sweep, logger, m)
	eventJob := jobs.NewEventJob(logger)

	return jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cache.QueueOpt(cfg),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		EventQueue:  cfg.NotifyQueue,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskEvent, Handler: eventJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// Unique keeps overlapping ticks from queuing a second sweep.
			{Spec: cfg.SweepCron, Task: sweepTask, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Unique(cronUniqueTTL)}},
		},
	})
}

const cronUniqueTTL = 10 * time.Minute

// NewMetricsServer exposes gatherer at /metrics for processes without the API
// router. A nil gatherer uses the default registry.
func NewMetricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
