package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"doc-compliance/internal/domain/event"
)

const (
	// QueueDefault carries scheduled maintenance tasks.
	QueueDefault = "default"
	// TaskSweep expires lapsed approvals.
	TaskSweep = "compliance:sweep"
	// TaskEvent delivers one compliance event.
	TaskEvent = "compliance:event"
)

// SweepPayload pins the sweep clock. Zero Now means "when the task runs".
type SweepPayload struct {
	Now *time.Time `json:"now,omitempty"`
}

func NewSweepTask(payload SweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSweep, data), nil
}

func NewEventTask(e event.Event) (*asynq.Task, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEvent, data), nil
}
