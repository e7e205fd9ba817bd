package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"doc-compliance/internal/domain/event"
)

// EventJob consumes queued compliance events. Delivery to people (email,
// chat) plugs in behind Deliver; by default events are only logged.
type EventJob struct {
	Logger  *slog.Logger
	Deliver func(ctx context.Context, e event.Event) error
}

func NewEventJob(logger *slog.Logger) *EventJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventJob{Logger: logger}
}

func (j *EventJob) Handle(ctx context.Context, t *asynq.Task) error {
	var e event.Event
	if err := json.Unmarshal(t.Payload(), &e); err != nil {
		return fmt.Errorf("event payload: %v: %w", err, asynq.SkipRetry)
	}
	if e.Kind == "" || e.RequirementID == "" {
		return fmt.Errorf("event payload missing kind or requirement: %w", asynq.SkipRetry)
	}
	j.Logger.Info("compliance event",
		slog.String("kind", string(e.Kind)),
		slog.String("requirement_id", e.RequirementID),
		slog.String("employee_id", e.EmployeeID),
		slog.String("document_type_id", e.DocumentTypeID),
		slog.String("actor_id", e.ActorID),
		slog.Time("at", e.At))
	if j.Deliver == nil {
		return nil
	}
	return j.Deliver(ctx, e)
}
