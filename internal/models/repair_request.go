package models

import "time"

// ApprovalStatus is the three-valued admin decision state of a repair
// request, independent of the cancellation flag.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// Valid reports whether the status is one of the known values.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// RepairRequest represents a repair ticket owned by a teacher.
type RepairRequest struct {
	ID          string `db:"id" json:"id"`
	RequestNo   string `db:"request_no" json:"request_no"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Building    string `db:"building" json:"building"`
	Room        string `db:"room" json:"room"`

	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`

	IsCancelled     bool       `db:"is_cancelled" json:"is_cancelled"`
	CancelledAt     *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelledReason *string    `db:"cancelled_reason" json:"cancelled_reason,omitempty"`

	// Quote fields are set together and may be overwritten while Pending.
	ElectricianID   *string    `db:"electrician_id" json:"electrician_id,omitempty"`
	QuotedAmount    *float64   `db:"quoted_amount" json:"quoted_amount,omitempty"`
	Currency        string     `db:"currency" json:"currency"`
	ElectricianNote *string    `db:"electrician_note" json:"electrician_note,omitempty"`
	QuotedAt        *time.Time `db:"quoted_at" json:"quoted_at,omitempty"`

	// Admin fields are set together, exactly once, when status leaves Pending.
	ApprovalStatus    ApprovalStatus `db:"approval_status" json:"approval_status"`
	AdminID           *string        `db:"admin_id" json:"admin_id,omitempty"`
	AdminDecisionNote *string        `db:"admin_decision_note" json:"admin_decision_note,omitempty"`
	DecidedAt         *time.Time     `db:"decided_at" json:"decided_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Quoted reports whether an electrician quote has been recorded.
func (r *RepairRequest) Quoted() bool {
	return r.QuotedAmount != nil
}

// RepairRequestFilter captures list criteria shared by all list endpoints.
type RepairRequestFilter struct {
	TeacherID      string
	ApprovalStatus *ApprovalStatus
	IsCancelled    *bool
	Building       string
	Room           string
	PendingOnly    bool
	QuotedOnly     bool

	SkipCount      int
	MaxResultCount int
	Sorting        string
}
