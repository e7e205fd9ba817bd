package requirement

import (
	"context"
	"time"
)

type Repository interface {
	// Create a new requirement (DB uniqueness on employee/type/cycle)
	Create(ctx context.Context, r *Requirement) error

	// Get by public requirement_id
	GetByRequirementID(ctx context.Context, requirementID string) (*Requirement, error)

	// Latest cycle for the pair, gorm.ErrRecordNotFound when never assigned.
	GetLatest(ctx context.Context, employeeID, documentTypeID string) (*Requirement, error)

	ListByEmployee(ctx context.Context, employeeID string) ([]Requirement, error)

	// Distinct employees that hold at least one requirement.
	ListEmployeeIDs(ctx context.Context) ([]string, error)

	// Approved requirements with expires_at <= now, oldest first, at most limit.
	ListExpiring(ctx context.Context, now time.Time, limit int) ([]Requirement, error)

	// CompareAndSwap applies c only if the row still has status from.
	// Returns false when another writer got there first.
	CompareAndSwap(ctx context.Context, requirementID string, from Status, c Change) (bool, error)
}
