package requirementmock

import (
	"context"
	"time"

	domain "doc-compliance/internal/domain/requirement"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn             func(ctx context.Context, r *domain.Requirement) error
	GetByRequirementIDFn func(ctx context.Context, requirementID string) (*domain.Requirement, error)
	GetLatestFn          func(ctx context.Context, employeeID, documentTypeID string) (*domain.Requirement, error)
	ListByEmployeeFn     func(ctx context.Context, employeeID string) ([]domain.Requirement, error)
	ListEmployeeIDsFn    func(ctx context.Context) ([]string, error)
	ListExpiringFn       func(ctx context.Context, now time.Time, limit int) ([]domain.Requirement, error)
	CompareAndSwapFn     func(ctx context.Context, requirementID string, from domain.Status, c domain.Change) (bool, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Requirement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRequirementID(ctx context.Context, requirementID string) (*domain.Requirement, error) {
	if m.GetByRequirementIDFn != nil {
		return m.GetByRequirementIDFn(ctx, requirementID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetLatest(ctx context.Context, employeeID, documentTypeID string) (*domain.Requirement, error) {
	if m.GetLatestFn != nil {
		return m.GetLatestFn(ctx, employeeID, documentTypeID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByEmployee(ctx context.Context, employeeID string) ([]domain.Requirement, error) {
	if m.ListByEmployeeFn != nil {
		return m.ListByEmployeeFn(ctx, employeeID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	if m.ListEmployeeIDsFn != nil {
		return m.ListEmployeeIDsFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListExpiring(ctx context.Context, now time.Time, limit int) ([]domain.Requirement, error) {
	if m.ListExpiringFn != nil {
		return m.ListExpiringFn(ctx, now, limit)
	}
	return nil, context.Canceled
}

func (m *Repo) CompareAndSwap(ctx context.Context, requirementID string, from domain.Status, c domain.Change) (bool, error) {
	if m.CompareAndSwapFn != nil {
		return m.CompareAndSwapFn(ctx, requirementID, from, c)
	}
	return false, context.Canceled
}
