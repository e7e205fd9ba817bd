package notifymock

import (
	"context"
	"sync"

	"doc-compliance/internal/domain/event"
)

// Recorder keeps every event it is handed. Err, when set, is returned from
// Notify after recording.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
	Err    error
}

func (r *Recorder) Notify(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Kinds() []event.Kind {
	var out []event.Kind
	for _, e := range r.Events() {
		out = append(out, e.Kind)
	}
	return out
}
