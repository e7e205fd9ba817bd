package event

import (
	"context"
	"time"
)

type Kind string

const (
	KindAssigned  Kind = "requirement.assigned"
	KindSubmitted Kind = "requirement.submitted"
	KindApproved  Kind = "requirement.approved"
	KindRejected  Kind = "requirement.rejected"
	KindExpired   Kind = "requirement.expired"
)

// Event is a compliance-state change handed to the notification channel.
type Event struct {
	Kind           Kind       `json:"kind"`
	RequirementID  string     `json:"requirement_id"`
	EmployeeID     string     `json:"employee_id"`
	DocumentTypeID string     `json:"document_type_id"`
	ActorID        string     `json:"actor_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	At             time.Time  `json:"at"`
}

// Notifier accepts events fire-and-forget. Callers log a returned error and
// carry on; a failed notification never undoes a transition.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
