package requirement

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusSubmitted, StatusApproved, StatusRejected, StatusExpired}

// Live reports whether the requirement still occupies its (employee, type)
// slot. Expired is terminal; a new cycle needs a fresh assignment.
func (s Status) Live() bool { return s != StatusExpired }

// Table: employee_document_requirements
type Requirement struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	RequirementID  string `gorm:"column:requirement_id;type:char(32);not null;uniqueIndex:ux_requirements_requirement_id" json:"id"`
	EmployeeID     string `gorm:"column:employee_id;size:64;not null;uniqueIndex:ux_requirements_employee_type_cycle,priority:1;index:idx_requirements_employee" json:"employee_id"`
	DocumentTypeID string `gorm:"column:document_type_id;type:char(32);not null;uniqueIndex:ux_requirements_employee_type_cycle,priority:2" json:"document_type_id"`
	// Cycle numbers successive assignments of the same pair, starting at 1.
	Cycle       int        `gorm:"column:cycle;not null;uniqueIndex:ux_requirements_employee_type_cycle,priority:3" json:"cycle"`
	Status      Status     `gorm:"column:status;size:16;not null;index:idx_requirements_status_expires,priority:1" json:"status"`
	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	ApproverID  *string    `gorm:"column:approver_id;size:64" json:"approver_id,omitempty"`
	Notes       *string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;index:idx_requirements_status_expires,priority:2" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Requirement) TableName() string { return "employee_document_requirements" }

// ValidAt reports whether r counts towards compliance at now.
func (r *Requirement) ValidAt(now time.Time) bool {
	if r.Status != StatusApproved {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// Change is the column set written by a compare-and-swap transition. Build
// it with the constructors below; the repository writes only what is set.
type Change struct {
	To          Status
	SubmittedAt *time.Time
	ApprovedAt  *time.Time
	ApproverID  *string
	// ClearApproval nulls approved_at and approver_id.
	ClearApproval bool
	Notes         *string
	// WriteNotes writes Notes even when nil (clearing the column).
	WriteNotes bool
	// ExpiresAt is written when non-nil and never cleared, so a computed
	// expiry stays frozen.
	ExpiresAt *time.Time
}

func SubmitChange(now time.Time) Change {
	return Change{To: StatusSubmitted, SubmittedAt: &now, WriteNotes: true}
}

func ApproveChange(now time.Time, approverID string, notes *string, expiresAt *time.Time) Change {
	return Change{
		To:         StatusApproved,
		ApprovedAt: &now,
		ApproverID: &approverID,
		Notes:      notes,
		WriteNotes: true,
		ExpiresAt:  expiresAt,
	}
}

func RejectChange(notes string) Change {
	return Change{To: StatusRejected, Notes: &notes, WriteNotes: true, ClearApproval: true}
}

func ExpireChange() Change { return Change{To: StatusExpired} }

// Apply mirrors a successful CompareAndSwap onto the in-memory record.
func (r *Requirement) Apply(c Change) {
	r.Status = c.To
	if c.SubmittedAt != nil {
		r.SubmittedAt = c.SubmittedAt
	}
	if c.ClearApproval {
		r.ApprovedAt = nil
		r.ApproverID = nil
	}
	if c.ApprovedAt != nil {
		r.ApprovedAt = c.ApprovedAt
	}
	if c.ApproverID != nil {
		r.ApproverID = c.ApproverID
	}
	if c.WriteNotes {
		r.Notes = c.Notes
	}
	if c.ExpiresAt != nil {
		r.ExpiresAt = c.ExpiresAt
	}
}
