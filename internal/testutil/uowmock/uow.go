package uowmock

import (
	"context"
	"errors"

	"doc-compliance/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Leave WithinTxFn nil and set Repos to run fn directly against them.
type UoW struct {
	WithinTxFn func(ctx context.Context, fn func(r uow.Repos) error) error

	// Repos are handed to fn by Passthrough.
	Repos uow.Repos
	Calls int
}

func New() *UoW { return &UoW{} }

// Passthrough returns a UoW that calls fn with repos and returns its error.
func Passthrough(repos uow.Repos) *UoW {
	m := &UoW{Repos: repos}
	m.WithinTxFn = func(_ context.Context, fn func(uow.Repos) error) error { return fn(m.Repos) }
	return m
}

func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	m.Calls++
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
