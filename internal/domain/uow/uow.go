package uow

import (
	"context"

	"doc-compliance/internal/domain/doctype"
	"doc-compliance/internal/domain/requirement"
)

// Repos are bound to the transaction opened by WithinTx.
type Repos struct {
	Types        doctype.Repository
	Requirements requirement.Repository
}

type UnitOfWork interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
