package notify

import (
	"context"
	"log/slog"

	"doc-compliance/internal/domain/event"
)

// Log writes events to the process log. Used when no queue is configured.
type Log struct {
	logger *slog.Logger
}

var _ event.Notifier = (*Log)(nil)

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, e event.Event) error {
	l.logger.InfoContext(ctx, "compliance event",
		slog.String("kind", string(e.Kind)),
		slog.String("requirement_id", e.RequirementID),
		slog.String("employee_id", e.EmployeeID),
		slog.String("document_type_id", e.DocumentTypeID),
		slog.String("actor_id", e.ActorID))
	return nil
}
