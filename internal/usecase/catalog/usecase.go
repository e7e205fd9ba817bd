package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"doc-compliance/internal/domain/apperr"
	"doc-compliance/internal/domain/doctype"
	"doc-compliance/pkg/id"

	"gorm.io/gorm"
)

const defaultCategory = "general"

type Usecase struct {
	repo   doctype.Repository
	logger *slog.Logger
}

func NewUsecase(r doctype.Repository, logger *slog.Logger) *Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{repo: r, logger: logger}
}

// Upsert creates the entry or overwrites the one with the same name. Running
// it twice with the same input leaves one identical row.
func (u *Usecase) Upsert(ctx context.Context, in UpsertInput) (*doctype.DocumentType, error) {
	d, err := build(in)
	if err != nil {
		return nil, err
	}
	out, err := u.repo.Upsert(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("upsert document type %q: %w", d.Name, err)
	}
	u.logger.Info("document type upserted",
		slog.String("type_id", out.TypeID),
		slog.String("name", out.Name),
		slog.Bool("required", out.Required))
	return out, nil
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]doctype.DocumentType, error) {
	return u.repo.List(ctx, doctype.Filter{Category: in.Category, Required: in.Required})
}

func (u *Usecase) Get(ctx context.Context, typeID string) (*doctype.DocumentType, error) {
	d, err := u.repo.GetByTypeID(ctx, typeID)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("document type %s not found", typeID)
	default:
		return nil, err
	}
}

// Deactivate hides the type from listings, assignment and the required set.
// Requirements already issued against it are kept.
func (u *Usecase) Deactivate(ctx context.Context, typeID string) (*doctype.DocumentType, error) {
	d, err := u.Get(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if !d.Active {
		return d, nil
	}
	if err := u.repo.SetActive(ctx, typeID, false); err != nil {
		return nil, err
	}
	d.Active = false
	u.logger.Info("document type deactivated", slog.String("type_id", typeID))
	return d, nil
}

func build(in UpsertInput) (*doctype.DocumentType, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}

	d := &doctype.DocumentType{
		TypeID:        id.NewID32(),
		Name:          name,
		Category:      category,
		Description:   strings.TrimSpace(in.Description),
		Required:      in.Required,
		HasExpiration: in.HasExpiration,
		Active:        true,
	}

	if !in.HasExpiration {
		if in.RenewalPeriod != nil {
			return nil, apperr.Validation("renewal_period", "must be absent when has_expiration is false")
		}
		if in.RenewalUnit != nil {
			return nil, apperr.Validation("renewal_unit", "must be absent when has_expiration is false")
		}
		return d, nil
	}

	if in.RenewalPeriod == nil {
		return nil, apperr.Validation("renewal_period", "is required when has_expiration is true")
	}
	if *in.RenewalPeriod <= 0 {
		return nil, apperr.Validation("renewal_period", "must be greater than 0")
	}
	if in.RenewalUnit == nil {
		return nil, apperr.Validation("renewal_unit", "is required when has_expiration is true")
	}
	unit := doctype.RenewalUnit(strings.ToLower(strings.TrimSpace(*in.RenewalUnit)))
	if !unit.Valid() {
		return nil, apperr.Validation("renewal_unit", "must be one of days, months, years")
	}
	period := *in.RenewalPeriod
	d.RenewalPeriod = &period
	d.RenewalUnit = &unit
	return d, nil
}
