package compliance

import (
	"context"
	"log/slog"
	"time"

	"doc-compliance/internal/domain/doctype"
	"doc-compliance/internal/domain/requirement"
)

// Snapshot is derived on every read and never persisted.
type Snapshot struct {
	EmployeeID string                     `json:"employee_id"`
	Counts     map[requirement.Status]int `json:"counts"`
	Total      int                        `json:"total"`
	// RequiredTotal is the number of active required document types.
	RequiredTotal          int       `json:"required_total"`
	Satisfied              int       `json:"satisfied"`
	MissingDocumentTypeIDs []string  `json:"missing_document_type_ids"`
	IsCompliant            bool      `json:"is_compliant"`
	AsOf                   time.Time `json:"as_of"`
}

type Usecase struct {
	types  doctype.Repository
	reqs   requirement.Repository
	logger *slog.Logger
	clock  func() time.Time
}

type Option func(*Usecase)

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.logger = l } }

func WithClock(c func() time.Time) Option { return func(u *Usecase) { u.clock = c } }

func NewUsecase(types doctype.Repository, reqs requirement.Repository, opts ...Option) *Usecase {
	u := &Usecase{
		types:  types,
		reqs:   reqs,
		logger: slog.Default(),
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) Snapshot(ctx context.Context, employeeID string) (*Snapshot, error) {
	return u.SnapshotAt(ctx, employeeID, u.clock())
}

// SnapshotAt evaluates compliance as of asOf. A required type the employee
// was never assigned counts as missing, the same as a pending one.
func (u *Usecase) SnapshotAt(ctx context.Context, employeeID string, asOf time.Time) (*Snapshot, error) {
	required := true
	types, err := u.types.List(ctx, doctype.Filter{Required: &required})
	if err != nil {
		return nil, err
	}
	records, err := u.reqs.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		EmployeeID:             employeeID,
		Counts:                 make(map[requirement.Status]int, len(requirement.Statuses)),
		Total:                  len(records),
		RequiredTotal:          len(types),
		MissingDocumentTypeIDs: []string{},
		AsOf:                   asOf,
	}
	for _, st := range requirement.Statuses {
		s.Counts[st] = 0
	}

	valid := make(map[string]bool, len(records))
	for i := range records {
		r := &records[i]
		s.Counts[r.Status]++
		if r.ValidAt(asOf) {
			valid[r.DocumentTypeID] = true
		}
	}
	for _, t := range types {
		if valid[t.TypeID] {
			s.Satisfied++
			continue
		}
		s.MissingDocumentTypeIDs = append(s.MissingDocumentTypeIDs, t.TypeID)
	}
	s.IsCompliant = len(s.MissingDocumentTypeIDs) == 0

	u.logger.Debug("compliance snapshot",
		slog.String("employee_id", employeeID),
		slog.Int("required", s.RequiredTotal),
		slog.Int("satisfied", s.Satisfied))
	return s, nil
}
