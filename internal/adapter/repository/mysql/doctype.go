package mysql

import (
	"context"

	doctypeDomain "doc-compliance/internal/domain/doctype"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentTypeRepository struct{ db *gorm.DB }

func NewDocumentTypeRepository(db *gorm.DB) *DocumentTypeRepository {
	return &DocumentTypeRepository{db: db}
}

// columns overwritten when an upsert hits an existing name
var upsertColumns = []string{
	"category", "description", "required", "has_expiration",
	"renewal_period", "renewal_unit", "active", "updated_at",
}

func (r *DocumentTypeRepository) Upsert(ctx context.Context, d *doctypeDomain.DocumentType) (*doctypeDomain.DocumentType, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(d).Error
	if err != nil {
		return nil, err
	}
	// type_id of an existing row is kept, so read back what is stored
	return r.getByName(ctx, d.Name)
}

func (r *DocumentTypeRepository) getByName(ctx context.Context, name string) (*doctypeDomain.DocumentType, error) {
	var out doctypeDomain.DocumentType
	res := r.db.WithContext(ctx).Where("name = ?", name).First(&out)
	return &out, res.Error
}

func (r *DocumentTypeRepository) GetByTypeID(ctx context.Context, typeID string) (*doctypeDomain.DocumentType, error) {
	var out doctypeDomain.DocumentType
	res := r.db.WithContext(ctx).Where("type_id = ?", typeID).First(&out)
	return &out, res.Error
}

func (r *DocumentTypeRepository) List(ctx context.Context, f doctypeDomain.Filter) ([]doctypeDomain.DocumentType, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Required != nil {
		q = q.Where("required = ?", *f.Required)
	}
	var out []doctypeDomain.DocumentType
	err := q.Order("name ASC").Find(&out).Error
	return out, err
}

func (r *DocumentTypeRepository) SetActive(ctx context.Context, typeID string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&doctypeDomain.DocumentType{}).
		Where("type_id = ?", typeID).
		Update("active", active).Error
}
