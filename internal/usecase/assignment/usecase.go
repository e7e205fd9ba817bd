package assignment

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
	"doc-compliance/internal/domain/uow"
	"doc-compliance/pkg/id"

	"gorm.io/gorm"
)

const maxEmployeeIDLen = 64

type Usecase struct {
	types    doctype.Repository
	reqs     requirement.Repository
	uow      uow.UnitOfWork
	notifier event.Notifier
	logger   *slog.Logger
	clock    func() time.Time
}

type Option func(*Usecase)

func WithNotifier(n event.Notifier) Option { return func(u *Usecase) { u.notifier = n } }

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.logger = l } }

func WithClock(c func() time.Time) Option { return func(u *Usecase) { u.clock = c } }

// WithUnitOfWork makes AssignRequiredFor and BackfillType all or nothing.
func WithUnitOfWork(w uow.UnitOfWork) Option { return func(u *Usecase) { u.uow = w } }

func NewUsecase(types doctype.Repository, reqs requirement.Repository, opts ...Option) *Usecase {
	u := &Usecase{
		types:    types,
		reqs:     reqs,
		notifier: event.Nop{},
		logger:   slog.Default(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AssignRequiredFor gives the employee a pending requirement for every active
// required type it has no live requirement for. Calling it again creates
// nothing new. Returns only the requirements created by this call.
func (u *Usecase) AssignRequiredFor(ctx context.Context, employeeID string) ([]requirement.Requirement, error) {
	employeeID, err := cleanEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}
	required := true
	types, err := u.types.List(ctx, doctype.Filter{Required: &required})
	if err != nil {
		return nil, fmt.Errorf("list required document types: %w", err)
	}

	var created []requirement.Requirement
	err = u.withinTx(ctx, func(reqs requirement.Repository) error {
		created = make([]requirement.Requirement, 0, len(types))
		for _, t := range types {
			r, isNew, err := ensure(ctx, reqs, employeeID, t.TypeID)
			if err != nil {
				return err
			}
			if isNew {
				created = append(created, *r)
			}
		}
		return nil
	})
	if err != nil {
		created = u.kept(created)
		u.announce(ctx, created)
		return created, err
	}
	u.announce(ctx, created)
	u.logger.Info("required documents assigned",
		slog.String("employee_id", employeeID),
		slog.Int("required_types", len(types)),
		slog.Int("created", len(created)))
	return created, nil
}

// AssignOne assigns a single document type. A live requirement for the same
// pair is a Conflict carrying the existing requirement id.
func (u *Usecase) AssignOne(ctx context.Context, employeeID, documentTypeID string) (*requirement.Requirement, error) {
	employeeID, err := cleanEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}
	if _, err := u.activeType(ctx, documentTypeID); err != nil {
		return nil, err
	}

	r, isNew, err := ensure(ctx, u.reqs, employeeID, documentTypeID)
	if err != nil {
		return nil, err
	}
	if !isNew {
		return nil, apperr.Conflict(r.RequirementID,
			"employee %s already has requirement %s for document type %s", employeeID, r.RequirementID, documentTypeID)
	}
	u.announce(ctx, []requirement.Requirement{*r})
	return r, nil
}

func (u *Usecase) ListForEmployee(ctx context.Context, employeeID string) ([]requirement.Requirement, error) {
	employeeID, err := cleanEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}
	return u.reqs.ListByEmployee(ctx, employeeID)
}

// BackfillType assigns a newly activated type to every employee the tracker
// already knows. Employees that hold a live requirement are skipped.
func (u *Usecase) BackfillType(ctx context.Context, documentTypeID string) (int, error) {
	if _, err := u.activeType(ctx, documentTypeID); err != nil {
		return 0, err
	}
	employees, err := u.reqs.ListEmployeeIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}
	var created []requirement.Requirement
	err = u.withinTx(ctx, func(reqs requirement.Repository) error {
		created = created[:0]
		for _, e := range employees {
			r, isNew, err := ensure(ctx, reqs, e, documentTypeID)
			if err != nil {
				return err
			}
			if isNew {
				created = append(created, *r)
			}
		}
		return nil
	})
	if err != nil {
		created = u.kept(created)
		u.announce(ctx, created)
		return len(created), err
	}
	u.announce(ctx, created)
	n := len(created)
	u.logger.Info("document type backfilled",
		slog.String("document_type_id", documentTypeID),
		slog.Int("employees", len(employees)),
		slog.Int("created", n))
	return n, nil
}

// ensure returns the live requirement for the pair, creating the next cycle
// when there is none. The bool reports whether a row was created.
func ensure(ctx context.Context, reqs requirement.Repository, employeeID, typeID string) (*requirement.Requirement, bool, error) {
	cycle := 1
	latest, err := reqs.GetLatest(ctx, employeeID, typeID)
	switch {
	case err == nil:
		if latest.Status.Live() {
			return latest, false, nil
		}
		cycle = latest.Cycle + 1
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	r := &requirement.Requirement{
		RequirementID:  id.NewID32(),
		EmployeeID:     employeeID,
		DocumentTypeID: typeID,
		Cycle:          cycle,
		Status:         requirement.StatusPending,
	}
	if err := reqs.Create(ctx, r); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, err
		}
		// a concurrent assigner created this cycle first
		existing, gerr := reqs.GetLatest(ctx, employeeID, typeID)
		if gerr != nil {
			return nil, false, gerr
		}
		return existing, false, nil
	}
	return r, true, nil
}

// withinTx runs fn against a transaction-bound repository when a unit of work
// is configured.
func (u *Usecase) withinTx(ctx context.Context, fn func(requirement.Repository) error) error {
	if u.uow == nil {
		return fn(u.reqs)
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error { return fn(r.Requirements) })
}

// kept returns what survives a failed batch: everything written so far
// without a unit of work, nothing after a rollback.
func (u *Usecase) kept(created []requirement.Requirement) []requirement.Requirement {
	if u.uow != nil {
		return nil
	}
	return created
}

// announce emits an assigned event per persisted row once the write is final.
func (u *Usecase) announce(ctx context.Context, created []requirement.Requirement) {
	for _, r := range created {
		if nerr := u.notifier.Notify(ctx, event.Event{
			Kind:           event.KindAssigned,
			RequirementID:  r.RequirementID,
			EmployeeID:     r.EmployeeID,
			DocumentTypeID: r.DocumentTypeID,
			At:             u.clock(),
		}); nerr != nil {
			u.logger.Warn("notify assigned", slog.String("requirement_id", r.RequirementID), slog.Any("error", nerr))
		}
	}
}

func (u *Usecase) activeType(ctx context.Context, typeID string) (*doctype.DocumentType, error) {
	t, err := u.types.GetByTypeID(ctx, typeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("document type %s not found", typeID)
		}
		return nil, err
	}
	if !t.Active {
		return nil, apperr.Validation("document_type_id", "document type %s is inactive", typeID)
	}
	return t, nil
}

func cleanEmployeeID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperr.Validation("employee_id", "is required")
	}
	if len(s) > maxEmployeeIDLen {
		return "", apperr.Validation("employee_id", "must be at most %d characters", maxEmployeeIDLen)
	}
	return s, nil
}
