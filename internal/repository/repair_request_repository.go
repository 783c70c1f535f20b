package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

const repairRequestColumns = `id, request_no, teacher_id, title, description, building, room, submitted_at, is_cancelled, cancelled_at, cancelled_reason, electrician_id, quoted_amount, currency, electrician_note, quoted_at, approval_status, admin_id, admin_decision_note, decided_at, created_at, updated_at`

// RepairRequestRepository provides database access for repair requests.
type RepairRequestRepository struct {
	db *sqlx.DB
}

// NewRepairRequestRepository creates a new instance of RepairRequestRepository.
func NewRepairRequestRepository(db *sqlx.DB) *RepairRequestRepository {
	return &RepairRequestRepository{db: db}
}

// FindByID returns a repair request by identifier.
func (r *RepairRequestRepository) FindByID(ctx context.Context, id string) (*models.RepairRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM repair_requests WHERE id = $1 LIMIT 1`, repairRequestColumns)
	var req models.RepairRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find repair request by id: %w", err)
	}
	return &req, nil
}

// Create inserts a new repair request.
func (r *RepairRequestRepository) Create(ctx context.Context, req *models.RepairRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	const query = `INSERT INTO repair_requests (id, request_no, teacher_id, title, description, building, room, submitted_at, is_cancelled, currency, approval_status, created_at, updated_at) VALUES (:id, :request_no, :teacher_id, :title, :description, :building, :room, :submitted_at, :is_cancelled, :currency, :approval_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create repair request: %w", err)
	}
	return nil
}

// Update persists every mutable field of a repair request.
func (r *RepairRequestRepository) Update(ctx context.Context, req *models.RepairRequest) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE repair_requests SET title = :title, description = :description, building = :building, room = :room, is_cancelled = :is_cancelled, cancelled_at = :cancelled_at, cancelled_reason = :cancelled_reason, electrician_id = :electrician_id, quoted_amount = :quoted_amount, currency = :currency, electrician_note = :electrician_note, quoted_at = :quoted_at, approval_status = :approval_status, admin_id = :admin_id, admin_decision_note = :admin_decision_note, decided_at = :decided_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("update repair request: %w", err)
	}
	return nil
}

// List returns repair requests matching the filter plus the total count.
func (r *RepairRequestRepository) List(ctx context.Context, filter models.RepairRequestFilter) ([]models.RepairRequest, int, error) {
	baseQuery := `FROM repair_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.PendingOnly {
		conditions = append(conditions, fmt.Sprintf("approval_status = $%d", len(args)+1))
		args = append(args, models.ApprovalPending)
		conditions = append(conditions, "is_cancelled = FALSE")
	} else {
		if filter.ApprovalStatus != nil {
			conditions = append(conditions, fmt.Sprintf("approval_status = $%d", len(args)+1))
			args = append(args, *filter.ApprovalStatus)
		}
		if filter.IsCancelled != nil {
			conditions = append(conditions, fmt.Sprintf("is_cancelled = $%d", len(args)+1))
			args = append(args, *filter.IsCancelled)
		}
	}
	if filter.QuotedOnly {
		conditions = append(conditions, "quoted_amount IS NOT NULL")
	}
	if filter.Building != "" {
		conditions = append(conditions, fmt.Sprintf("building ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Building+"%")
	}
	if filter.Room != "" {
		conditions = append(conditions, fmt.Sprintf("room ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Room+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	// Lists are ordered by creation time only; the sorting parameter picks
	// the direction, newest first by default.
	direction := "DESC"
	if filter.Sorting != "" && !strings.HasSuffix(strings.ToUpper(strings.TrimSpace(filter.Sorting)), " DESC") {
		direction = "ASC"
	}

	skip := filter.SkipCount
	if skip < 0 {
		skip = 0
	}
	take := filter.MaxResultCount
	if take <= 0 {
		take = 20
	}

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at %s LIMIT %d OFFSET %d", repairRequestColumns, baseQuery, direction, take, skip)

	var items []models.RepairRequest
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list repair requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count repair requests: %w", err)
	}

	return items, total, nil
}

// ExistsByRequestNo reports whether the request number is already taken.
func (r *RepairRequestRepository) ExistsByRequestNo(ctx context.Context, requestNo string) (bool, error) {
	const query = `SELECT 1 FROM repair_requests WHERE request_no = $1 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, requestNo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check request number: %w", err)
	}
	return true, nil
}
