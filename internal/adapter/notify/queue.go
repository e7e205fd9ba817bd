package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"doc-compliance/internal/domain/event"
	"doc-compliance/internal/jobs"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue hands events to the worker through asynq.
type Queue struct {
	client Enqueuer
	queue  string
}

var _ event.Notifier = (*Queue)(nil)

func NewQueue(client Enqueuer, queue string) *Queue {
	if queue == "" {
		queue = jobs.QueueDefault
	}
	return &Queue{client: client, queue: queue}
}

func (q *Queue) Notify(ctx context.Context, e event.Event) error {
	task, err := jobs.NewEventTask(e)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.queue),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s for %s: %w", e.Kind, e.RequirementID, err)
	}
	return nil
}
