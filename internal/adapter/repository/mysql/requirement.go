package mysql

import (
	"context"
	"time"

	reqDomain "doc-compliance/internal/domain/requirement"

	"gorm.io/gorm"
)

type RequirementRepository struct{ db *gorm.DB }

func NewRequirementRepository(db *gorm.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

func (r *RequirementRepository) Create(ctx context.Context, req *reqDomain.Requirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequirementRepository) GetByRequirementID(ctx context.Context, requirementID string) (*reqDomain.Requirement, error) {
	var out reqDomain.Requirement
	res := r.db.WithContext(ctx).Where("requirement_id = ?", requirementID).First(&out)
	return &out, res.Error
}

func (r *RequirementRepository) GetLatest(ctx context.Context, employeeID, documentTypeID string) (*reqDomain.Requirement, error) {
	var out reqDomain.Requirement
	res := r.db.WithContext(ctx).
		Where("employee_id = ? AND document_type_id = ?", employeeID, documentTypeID).
		Order("cycle DESC").
		First(&out)
	return &out, res.Error
}

func (r *RequirementRepository) ListByEmployee(ctx context.Context, employeeID string) ([]reqDomain.Requirement, error) {
	var out []reqDomain.Requirement
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("document_type_id ASC, cycle DESC").
		Find(&out).Error
	return out, err
}

func (r *RequirementRepository) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&reqDomain.Requirement{}).
		Distinct("employee_id").
		Order("employee_id ASC").
		Pluck("employee_id", &ids).Error
	return ids, err
}

func (r *RequirementRepository) ListExpiring(ctx context.Context, now time.Time, limit int) ([]reqDomain.Requirement, error) {
	var out []reqDomain.Requirement
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", reqDomain.StatusApproved, now.UTC()).
		Order("expires_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CompareAndSwap is a single conditional UPDATE; the status predicate is the
// only concurrency control on requirement rows.
func (r *RequirementRepository) CompareAndSwap(ctx context.Context, requirementID string, from reqDomain.Status, c reqDomain.Change) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&reqDomain.Requirement{}).
		Where("requirement_id = ? AND status = ?", requirementID, from).
		Updates(changeColumns(c))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func changeColumns(c reqDomain.Change) map[string]any {
	cols := map[string]any{
		"status":     c.To,
		"updated_at": time.Now().UTC(),
	}
	if c.SubmittedAt != nil {
		cols["submitted_at"] = c.SubmittedAt.UTC()
	}
	if c.ClearApproval {
		cols["approved_at"] = nil
		cols["approver_id"] = nil
	}
	if c.ApprovedAt != nil {
		cols["approved_at"] = c.ApprovedAt.UTC()
	}
	if c.ApproverID != nil {
		cols["approver_id"] = *c.ApproverID
	}
	if c.WriteNotes {
		if c.Notes == nil {
			cols["notes"] = nil
		} else {
			cols["notes"] = *c.Notes
		}
	}
	if c.ExpiresAt != nil {
		cols["expires_at"] = c.ExpiresAt.UTC()
	}
	return cols
}
