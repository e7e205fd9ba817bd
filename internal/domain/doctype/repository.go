package doctype

import "context"

type Repository interface {
	// Upsert inserts or overwrites the row keyed by Name and returns the stored row.
	Upsert(ctx context.Context, d *DocumentType) (*DocumentType, error)

	// Get by public type_id (active or not)
	GetByTypeID(ctx context.Context, typeID string) (*DocumentType, error)

	// List active types matching f, ordered by name.
	List(ctx context.Context, f Filter) ([]DocumentType, error)

	SetActive(ctx context.Context, typeID string, active bool) error
}
