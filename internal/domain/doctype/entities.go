package doctype

import (
	"time"
)

type RenewalUnit string

const (
	UnitDays   RenewalUnit = "days"
	UnitMonths RenewalUnit = "months"
	UnitYears  RenewalUnit = "years"
)

func (u RenewalUnit) Valid() bool {
	switch u {
	case UnitDays, UnitMonths, UnitYears:
		return true
	}
	return false
}

// Table: document_types
type DocumentType struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	TypeID        string       `gorm:"column:type_id;type:char(32);not null;uniqueIndex:ux_document_types_type_id" json:"id"`
	Name          string       `gorm:"column:name;size:191;not null;uniqueIndex:ux_document_types_name" json:"name"`
	Category      string       `gorm:"column:category;size:64;not null;index" json:"category"`
	Description   string       `gorm:"column:description;type:text" json:"description"`
	Required      bool         `gorm:"column:required;not null" json:"required"`
	HasExpiration bool         `gorm:"column:has_expiration;not null" json:"has_expiration"`
	RenewalPeriod *int         `gorm:"column:renewal_period" json:"renewal_period,omitempty"`
	RenewalUnit   *RenewalUnit `gorm:"column:renewal_unit;size:16" json:"renewal_unit,omitempty"`
	Active        bool         `gorm:"column:active;not null;index" json:"active"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (DocumentType) TableName() string { return "document_types" }

// Expiry returns the expiry instant for an approval at approvedAt, or nil
// when the type does not expire.
func (d *DocumentType) Expiry(approvedAt time.Time) *time.Time {
	if !d.HasExpiration || d.RenewalPeriod == nil || d.RenewalUnit == nil {
		return nil
	}
	return ComputeExpiry(approvedAt, *d.RenewalPeriod, *d.RenewalUnit)
}

// Filter narrows List; nil fields are not applied.
type Filter struct {
	Category *string
	Required *bool
}
