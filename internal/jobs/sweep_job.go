package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"doc-compliance/internal/metrics"
)

// Sweeper is the expiry pass the sweep task drives.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type SweepJob struct {
	Sweeper Sweeper
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	clock   func() time.Time
}

func NewSweepJob(s Sweeper, logger *slog.Logger, m *metrics.Metrics) *SweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepJob{
		Sweeper: s,
		Logger:  logger,
		Metrics: m,
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Handle runs one sweep. Malformed payloads are not retried.
func (j *SweepJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Sweeper == nil {
		return errors.New("sweep: handler not configured")
	}
	var payload SweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("sweep payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	now := j.clock()
	if payload.Now != nil {
		now = payload.Now.UTC()
	}

	tracker := j.Metrics.Track(TaskSweep)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	n, err := j.Sweeper.Sweep(ctx, now)
	if err != nil {
		j.Logger.Error("sweep failed", slog.Time("now", now), slog.Int("expired", n), slog.Any("error", err))
		return err
	}
	j.Logger.Info("sweep completed",
		slog.Time("now", now),
		slog.Int("expired", n),
		slog.Duration("duration", time.Since(start)))
	return nil
}
