package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doc-compliance/internal/domain/apperr"
	"doc-compliance/internal/domain/doctype"
	"doc-compliance/internal/domain/event"
	"doc-compliance/internal/domain/requirement"
	"doc-compliance/internal/metrics"

	"gorm.io/gorm"
)

// Usecase drives a requirement through submit/approve/reject. Every write is
// one compare-and-swap on the requirement's status; expiry belongs to the
// sweeper and is not reachable from here.
type Usecase struct {
	reqs     requirement.Repository
	types    doctype.Repository
	notifier event.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clock    func() time.Time
}

type Option func(*Usecase)

func WithNotifier(n event.Notifier) Option { return func(u *Usecase) { u.notifier = n } }

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.logger = l } }

func WithClock(c func() time.Time) Option { return func(u *Usecase) { u.clock = c } }

func NewUsecase(reqs requirement.Repository, types doctype.Repository, opts ...Option) *Usecase {
	u := &Usecase{
		reqs:     reqs,
		types:    types,
		notifier: event.Nop{},
		logger:   slog.Default(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) Get(ctx context.Context, requirementID string) (*requirement.Requirement, error) {
	return u.load(ctx, requirementID)
}

func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*requirement.Requirement, error) {
	r, err := u.load(ctx, in.RequirementID)
	if err != nil {
		return nil, err
	}
	if _, err := requirement.Guard(r, requirement.ActionSubmit); err != nil {
		return nil, err
	}
	if err := u.swap(ctx, r, requirement.SubmitChange(u.clock())); err != nil {
		return nil, err
	}
	u.emit(ctx, event.KindSubmitted, r, in.ActorID)
	return r, nil
}

// Approve is deliberately not idempotent: approving an approved requirement
// returns AlreadyApproved so a retried request is visible to the caller.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*requirement.Requirement, error) {
	actor, err := cleanActor(in.ActorID)
	if err != nil {
		return nil, err
	}
	r, err := u.load(ctx, in.RequirementID)
	if err != nil {
		return nil, err
	}
	if _, err := requirement.Guard(r, requirement.ActionApprove); err != nil {
		return nil, err
	}

	t, err := u.types.GetByTypeID(ctx, r.DocumentTypeID)
	if err != nil {
		return nil, fmt.Errorf("load document type %s of requirement %s: %w", r.DocumentTypeID, r.RequirementID, err)
	}
	now := u.clock()
	if err := u.swap(ctx, r, requirement.ApproveChange(now, actor, cleanNotes(in.Notes), t.Expiry(now))); err != nil {
		return nil, err
	}
	u.emit(ctx, event.KindApproved, r, actor)
	return r, nil
}

func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*requirement.Requirement, error) {
	actor, err := cleanActor(in.ActorID)
	if err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		return nil, apperr.Validation("notes", "a rejection reason is required")
	}
	r, err := u.load(ctx, in.RequirementID)
	if err != nil {
		return nil, err
	}
	if _, err := requirement.Guard(r, requirement.ActionReject); err != nil {
		return nil, err
	}
	if err := u.swap(ctx, r, requirement.RejectChange(notes)); err != nil {
		return nil, err
	}
	u.emit(ctx, event.KindRejected, r, actor)
	return r, nil
}

func (u *Usecase) load(ctx context.Context, requirementID string) (*requirement.Requirement, error) {
	r, err := u.reqs.GetByRequirementID(ctx, requirementID)
	switch {
	case err == nil:
		return r, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("requirement %s not found", requirementID)
	default:
		return nil, err
	}
}

// swap writes c conditioned on r's current status and applies it to r.
func (u *Usecase) swap(ctx context.Context, r *requirement.Requirement, c requirement.Change) error {
	ok, err := u.reqs.CompareAndSwap(ctx, r.RequirementID, r.Status, c)
	if err != nil {
		return err
	}
	if !ok {
		u.logger.Info("requirement transition lost race",
			slog.String("requirement_id", r.RequirementID),
			slog.String("from", string(r.Status)),
			slog.String("to", string(c.To)))
		return apperr.StaleState(r.RequirementID)
	}
	from := r.Status
	r.Apply(c)
	u.metrics.ObserveTransition(string(c.To))
	u.logger.Info("requirement transitioned",
		slog.String("requirement_id", r.RequirementID),
		slog.String("employee_id", r.EmployeeID),
		slog.String("from", string(from)),
		slog.String("to", string(c.To)))
	return nil
}

func (u *Usecase) emit(ctx context.Context, kind event.Kind, r *requirement.Requirement, actor string) {
	e := event.Event{
		Kind:           kind,
		RequirementID:  r.RequirementID,
		EmployeeID:     r.EmployeeID,
		DocumentTypeID: r.DocumentTypeID,
		ActorID:        actor,
		ExpiresAt:      r.ExpiresAt,
		At:             u.clock(),
	}
	if r.Notes != nil {
		e.Notes = *r.Notes
	}
	if err := u.notifier.Notify(ctx, e); err != nil {
		u.logger.Warn("notify transition",
			slog.String("kind", string(kind)),
			slog.String("requirement_id", r.RequirementID),
			slog.Any("error", err))
	}
}

func cleanActor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("actor_id", "is required")
	}
	return s, nil
}

func cleanNotes(n *string) *string {
	if n == nil {
		return nil
	}
	s := strings.TrimSpace(*n)
	if s == "" {
		return nil
	}
	return &s
}
