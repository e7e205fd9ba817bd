package doctypemock

import (
	"context"

	domain "doc-compliance/internal/domain/doctype"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset functions return context.Canceled so a forgotten stub fails loudly.
type Repo struct {
	UpsertFn      func(ctx context.Context, d *domain.DocumentType) (*domain.DocumentType, error)
	GetByTypeIDFn func(ctx context.Context, typeID string) (*domain.DocumentType, error)
	ListFn        func(ctx context.Context, f domain.Filter) ([]domain.DocumentType, error)
	SetActiveFn   func(ctx context.Context, typeID string, active bool) error
}

func (m *Repo) Upsert(ctx context.Context, d *domain.DocumentType) (*domain.DocumentType, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, d)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByTypeID(ctx context.Context, typeID string) (*domain.DocumentType, error) {
	if m.GetByTypeIDFn != nil {
		return m.GetByTypeIDFn(ctx, typeID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.DocumentType, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) SetActive(ctx context.Context, typeID string, active bool) error {
	if m.SetActiveFn != nil {
		return m.SetActiveFn(ctx, typeID, active)
	}
	return context.Canceled
}
