package dto

import (
	"time"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

// CreateRepairRequestRequest describes the payload for submitting a repair request.
type CreateRepairRequestRequest struct {
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"required,max=2000"`
	Building    string `json:"building" validate:"required,max=64"`
	Room        string `json:"room" validate:"required,max=64"`
}

// UpdateRepairRequestRequest describes the payload for editing a repair request.
type UpdateRepairRequestRequest struct {
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"required,max=2000"`
	Building    string `json:"building" validate:"required,max=64"`
	Room        string `json:"room" validate:"required,max=64"`
}

// CancelRepairRequestRequest carries the optional cancellation reason.
type CancelRepairRequestRequest struct {
	Reason string `json:"reason" validate:"max=512"`
}

// QuoteRepairRequestRequest describes an electrician cost estimate.
type QuoteRepairRequestRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Note     string  `json:"note" validate:"max=1000"`
}

// DecideRepairRequestRequest carries the optional admin decision note.
type DecideRepairRequestRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

// ListRepairRequestsQuery captures the list query parameters shared by the
// teacher, electrician and admin listings.
type ListRepairRequestsQuery struct {
	ApprovalStatus string `form:"approvalStatus"`
	IsCancelled    *bool  `form:"isCancelled"`
	Building       string `form:"building"`
	Room           string `form:"room"`
	SkipCount      int    `form:"skipCount"`
	MaxResultCount int    `form:"maxResultCount"`
	Sorting        string `form:"sorting"`
}

// RepairRequestItem is the API representation of a repair request.
type RepairRequestItem struct {
	ID                string     `json:"id"`
	RequestNo         string     `json:"request_no"`
	TeacherID         string     `json:"teacher_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Building          string     `json:"building"`
	Room              string     `json:"room"`
	SubmittedAt       time.Time  `json:"submitted_at"`
	IsCancelled       bool       `json:"is_cancelled"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	CancelledReason   *string    `json:"cancelled_reason,omitempty"`
	ElectricianID     *string    `json:"electrician_id,omitempty"`
	QuotedAmount      *float64   `json:"quoted_amount,omitempty"`
	Currency          string     `json:"currency"`
	ElectricianNote   *string    `json:"electrician_note,omitempty"`
	QuotedAt          *time.Time `json:"quoted_at,omitempty"`
	ApprovalStatus    string     `json:"approval_status"`
	AdminID           *string    `json:"admin_id,omitempty"`
	AdminDecisionNote *string    `json:"admin_decision_note,omitempty"`
	DecidedAt         *time.Time `json:"decided_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewRepairRequestItem maps a repair request model to its API shape.
func NewRepairRequestItem(req *models.RepairRequest) RepairRequestItem {
	return RepairRequestItem{
		ID:                req.ID,
		RequestNo:         req.RequestNo,
		TeacherID:         req.TeacherID,
		Title:             req.Title,
		Description:       req.Description,
		Building:          req.Building,
		Room:              req.Room,
		SubmittedAt:       req.SubmittedAt,
		IsCancelled:       req.IsCancelled,
		CancelledAt:       req.CancelledAt,
		CancelledReason:   req.CancelledReason,
		ElectricianID:     req.ElectricianID,
		QuotedAmount:      req.QuotedAmount,
		Currency:          req.Currency,
		ElectricianNote:   req.ElectricianNote,
		QuotedAt:          req.QuotedAt,
		ApprovalStatus:    string(req.ApprovalStatus),
		AdminID:           req.AdminID,
		AdminDecisionNote: req.AdminDecisionNote,
		DecidedAt:         req.DecidedAt,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
}

// NewRepairRequestItems maps a slice of repair requests to their API shape.
func NewRepairRequestItems(reqs []models.RepairRequest) []RepairRequestItem {
	items := make([]RepairRequestItem, 0, len(reqs))
	for i := range reqs {
		items = append(items, NewRepairRequestItem(&reqs[i]))
	}
	return items
}
