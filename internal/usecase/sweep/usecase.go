package sweep

import (
	"context"
	"log/slog"
	"time"

	"doc-compliance/internal/domain/event"
	"doc-compliance/internal/domain/requirement"
	"doc-compliance/internal/metrics"
)

const DefaultBatchSize = 200

// Usecase moves lapsed approvals to expired. It never creates replacement
// requirements; renewal is an explicit assignment.
type Usecase struct {
	reqs      requirement.Repository
	notifier  event.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
	batchSize int
}

type Option func(*Usecase)

func WithNotifier(n event.Notifier) Option { return func(u *Usecase) { u.notifier = n } }

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.logger = l } }

func WithBatchSize(n int) Option {
	return func(u *Usecase) {
		if n > 0 {
			u.batchSize = n
		}
	}
}

func NewUsecase(reqs requirement.Repository, opts ...Option) *Usecase {
	u := &Usecase{
		reqs:      reqs,
		notifier:  event.Nop{},
		logger:    slog.Default(),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Sweep expires every approved requirement with expires_at <= now and returns
// how many it transitioned. Records another sweeper got to first are skipped.
func (u *Usecase) Sweep(ctx context.Context, now time.Time) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		batch, err := u.reqs.ListExpiring(ctx, now, u.batchSize)
		if err != nil {
			return total, err
		}

		moved := 0
		for i := range batch {
			r := &batch[i]
			c := requirement.ExpireChange()
			ok, err := u.reqs.CompareAndSwap(ctx, r.RequirementID, requirement.StatusApproved, c)
			if err != nil {
				return total, err
			}
			if !ok {
				u.logger.Debug("sweep skipped requirement", slog.String("requirement_id", r.RequirementID))
				continue
			}
			r.Apply(c)
			moved++
			u.metrics.ObserveTransition(string(requirement.StatusExpired))
			u.emit(ctx, r, now)
		}
		total += moved
		u.metrics.AddExpired(moved)

		// A short page is the last one. A page with no wins means a
		// concurrent sweeper owns the rest.
		if len(batch) < u.batchSize || moved == 0 {
			break
		}
	}

	u.logger.Info("sweep finished", slog.Time("now", now), slog.Int("expired", total))
	return total, nil
}

func (u *Usecase) emit(ctx context.Context, r *requirement.Requirement, now time.Time) {
	e := event.Event{
		Kind:           event.KindExpired,
		RequirementID:  r.RequirementID,
		EmployeeID:     r.EmployeeID,
		DocumentTypeID: r.DocumentTypeID,
		ExpiresAt:      r.ExpiresAt,
		At:             now,
	}
	if err := u.notifier.Notify(ctx, e); err != nil {
		u.logger.Warn("notify expiry", slog.String("requirement_id", r.RequirementID), slog.Any("error", err))
	}
}
