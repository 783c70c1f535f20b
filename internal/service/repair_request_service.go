package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
)

const defaultCurrency = "CAD"

type repairRequestRepository interface {
	FindByID(ctx context.Context, id string) (*models.RepairRequest, error)
	Create(ctx context.Context, req *models.RepairRequest) error
	Update(ctx context.Context, req *models.RepairRequest) error
	List(ctx context.Context, filter models.RepairRequestFilter) ([]models.RepairRequest, int, error)
	ExistsByRequestNo(ctx context.Context, requestNo string) (bool, error)
}

type repairRequestPermissionChecker interface {
	IsGranted(ctx context.Context, claims *models.JWTClaims, name string) (bool, error)
}

type repairRequestAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RepairRequestService orchestrates the repair request lifecycle: submission
// and editing by teachers, quoting by electricians, decisions by admins.
type RepairRequestService struct {
	repo        repairRequestRepository
	permissions repairRequestPermissionChecker
	audit       repairRequestAuditLogger
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	now         func() time.Time
	randomDigit func() int
}

// NewRepairRequestService constructs a RepairRequestService.
func NewRepairRequestService(repo repairRequestRepository, permissions repairRequestPermissionChecker, audit repairRequestAuditLogger, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *RepairRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepairRequestService{
		repo:        repo,
		permissions: permissions,
		audit:       audit,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
		randomDigit: func() int { return rand.Intn(10) },
	}
}

// Create submits a new repair request on behalf of a teacher.
func (s *RepairRequestService) Create(ctx context.Context, teacherID string, req dto.CreateRepairRequestRequest) (*dto.RepairRequestItem, error) {
	if teacherID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid repair request payload")
	}

	now := s.now()
	requestNo, err := s.nextRequestNo(ctx, now)
	if err != nil {
		return nil, err
	}
	request := &models.RepairRequest{
		RequestNo:      requestNo,
		TeacherID:      teacherID,
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Building:       strings.TrimSpace(req.Building),
		Room:           strings.TrimSpace(req.Room),
		SubmittedAt:    now,
		IsCancelled:    false,
		Currency:       defaultCurrency,
		ApprovalStatus: models.ApprovalPending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create repair request")
	}

	s.logger.Info("repair request created",
		zap.String("request_no", request.RequestNo),
		zap.String("teacher_id", teacherID))

	item := dto.NewRepairRequestItem(request)
	return &item, nil
}

// Update overwrites the editable fields of a repair request. Only the owning
// teacher may edit, and only while the request is still pending and not
// cancelled.
func (s *RepairRequestService) Update(ctx context.Context, id, requesterID string, req dto.UpdateRepairRequestRequest) (*dto.RepairRequestItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid repair request payload")
	}

	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.TeacherID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the request owner may edit it")
	}
	if request.IsCancelled || request.ApprovalStatus != models.ApprovalPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "repair request can no longer be edited")
	}

	request.Title = strings.TrimSpace(req.Title)
	request.Description = strings.TrimSpace(req.Description)
	request.Building = strings.TrimSpace(req.Building)
	request.Room = strings.TrimSpace(req.Room)

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update repair request")
	}

	item := dto.NewRepairRequestItem(request)
	return &item, nil
}

// Cancel withdraws a repair request. Only the owner may cancel; a request
// already cancelled or already approved stays as it is.
func (s *RepairRequestService) Cancel(ctx context.Context, id, requesterID, reason string) (*dto.RepairRequestItem, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cancellation reason is required")
	}

	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.TeacherID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the request owner may cancel it")
	}
	if request.IsCancelled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "repair request is already cancelled")
	}
	if request.ApprovalStatus == models.ApprovalApproved {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "approved repair requests cannot be cancelled")
	}

	now := s.now()
	request.IsCancelled = true
	request.CancelledAt = &now
	request.CancelledReason = &reason

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel repair request")
	}

	item := dto.NewRepairRequestItem(request)
	return &item, nil
}

// Quote records an electrician's cost estimate. Quoting is repeatable while
// the request stays pending; a later quote overwrites the earlier one.
func (s *RepairRequestService) Quote(ctx context.Context, id, electricianID string, req dto.QuoteRepairRequestRequest) (*dto.RepairRequestItem, error) {
	if electricianID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quote payload")
	}

	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.IsCancelled || request.ApprovalStatus != models.ApprovalPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "repair request is not open for quoting")
	}

	now := s.now()
	amount := req.Amount
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	request.ElectricianID = &electricianID
	request.QuotedAmount = &amount
	request.Currency = currency
	request.ElectricianNote = optionalString(req.Note)
	request.QuotedAt = &now

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to quote repair request")
	}

	item := dto.NewRepairRequestItem(request)
	return &item, nil
}

// Approve marks a pending repair request as approved. The decision is
// terminal.
func (s *RepairRequestService) Approve(ctx context.Context, id, adminID, note string) (*dto.RepairRequestItem, error) {
	return s.decide(ctx, id, adminID, note, models.ApprovalApproved)
}

// Reject marks a pending repair request as rejected. A non-empty note is
// required so the teacher learns why.
func (s *RepairRequestService) Reject(ctx context.Context, id, adminID, note string) (*dto.RepairRequestItem, error) {
	if strings.TrimSpace(note) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection note is required")
	}
	return s.decide(ctx, id, adminID, note, models.ApprovalRejected)
}

func (s *RepairRequestService) decide(ctx context.Context, id, adminID, note string, status models.ApprovalStatus) (*dto.RepairRequestItem, error) {
	if adminID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.IsCancelled || request.ApprovalStatus != models.ApprovalPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "repair request is not pending decision")
	}

	now := s.now()
	request.ApprovalStatus = status
	request.AdminID = &adminID
	request.AdminDecisionNote = optionalString(note)
	request.DecidedAt = &now

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	s.emitDecisionAudit(ctx, request, adminID, status)

	item := dto.NewRepairRequestItem(request)
	return &item, nil
}

// GetDetail returns a single repair request. The owner can always see their
// own request; other callers need the admin or electrician list permission.
func (s *RepairRequestService) GetDetail(ctx context.Context, id string, claims *models.JWTClaims) (*dto.RepairRequestItem, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.TeacherID != claims.UserID {
		allowed, err := s.anyGranted(ctx, claims, models.PermRepairRequestsAdminList, models.PermRepairRequestsElectricianList)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this repair request")
		}
	}

	item := dto.NewRepairRequestItem(request)
	return &item, nil
}

// ListMine returns the caller's own repair requests.
func (s *RepairRequestService) ListMine(ctx context.Context, teacherID string, query dto.ListRepairRequestsQuery) ([]dto.RepairRequestItem, int, error) {
	if teacherID == "" {
		return nil, 0, appErrors.ErrUnauthorized
	}
	filter, err := buildRepairRequestFilter(query)
	if err != nil {
		return nil, 0, err
	}
	filter.TeacherID = teacherID
	return s.list(ctx, filter)
}

// ListAdmin returns every repair request for back-office review.
func (s *RepairRequestService) ListAdmin(ctx context.Context, query dto.ListRepairRequestsQuery) ([]dto.RepairRequestItem, int, error) {
	filter, err := buildRepairRequestFilter(query)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, filter)
}

// ListElectricianQueue returns pending, not cancelled requests awaiting a
// quote or an updated quote.
func (s *RepairRequestService) ListElectricianQueue(ctx context.Context, query dto.ListRepairRequestsQuery) ([]dto.RepairRequestItem, int, error) {
	filter, err := buildRepairRequestFilter(query)
	if err != nil {
		return nil, 0, err
	}
	filter.PendingOnly = true
	return s.list(ctx, filter)
}

// ListApprovals returns pending, not cancelled requests that already carry a
// quote and are ready for an admin decision.
func (s *RepairRequestService) ListApprovals(ctx context.Context, query dto.ListRepairRequestsQuery) ([]dto.RepairRequestItem, int, error) {
	filter, err := buildRepairRequestFilter(query)
	if err != nil {
		return nil, 0, err
	}
	filter.PendingOnly = true
	filter.QuotedOnly = true
	return s.list(ctx, filter)
}

func (s *RepairRequestService) list(ctx context.Context, filter models.RepairRequestFilter) ([]dto.RepairRequestItem, int, error) {
	start := s.now()
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list repair requests")
	}
	s.metrics.ObserveDBQuery("repair_requests_list", time.Since(start))
	return dto.NewRepairRequestItems(items), total, nil
}

func (s *RepairRequestService) findRequest(ctx context.Context, id string) (*models.RepairRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "repair request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load repair request")
	}
	return request, nil
}

func (s *RepairRequestService) anyGranted(ctx context.Context, claims *models.JWTClaims, names ...string) (bool, error) {
	if s.permissions == nil {
		return false, nil
	}
	for _, name := range names {
		granted, err := s.permissions.IsGranted(ctx, claims, name)
		if err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve permissions")
		}
		if granted {
			return true, nil
		}
	}
	return false, nil
}

// nextRequestNo generates a ticket number and pre-checks it against the
// store, regenerating on a collision. The request_no unique index stays the
// final guard against a concurrent insert between check and create.
func (s *RepairRequestService) nextRequestNo(ctx context.Context, now time.Time) (string, error) {
	requestNo := s.generateRequestNo(now)
	for attempt := 0; attempt < 3; attempt++ {
		taken, err := s.repo.ExistsByRequestNo(ctx, requestNo)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify request number")
		}
		if !taken {
			return requestNo, nil
		}
		requestNo = s.generateRequestNo(now)
	}
	return requestNo, nil
}

// generateRequestNo builds a human readable ticket number: "RR", the date,
// then six random digits.
func (s *RepairRequestService) generateRequestNo(now time.Time) string {
	var digits strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&digits, "%d", s.randomDigit())
	}
	return fmt.Sprintf("RR%s%s", now.Format("20060102"), digits.String())
}

func (s *RepairRequestService) emitDecisionAudit(ctx context.Context, request *models.RepairRequest, adminID string, status models.ApprovalStatus) {
	if s.audit == nil {
		return
	}
	action := models.AuditActionApprove
	if status == models.ApprovalRejected {
		action = models.AuditActionReject
	}
	log := &models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		Resource:   "repair_request",
		ResourceID: &request.ID,
		IPAddress:  "system",
		UserAgent:  "repair-request-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record decision audit", zap.Error(err))
	}
}

func buildRepairRequestFilter(query dto.ListRepairRequestsQuery) (models.RepairRequestFilter, error) {
	skip := query.SkipCount
	if skip < 0 {
		skip = 0
	}
	take := query.MaxResultCount
	if take <= 0 {
		take = 20
	}
	if take > 100 {
		take = 100
	}

	filter := models.RepairRequestFilter{
		IsCancelled:    query.IsCancelled,
		Building:       strings.TrimSpace(query.Building),
		Room:           strings.TrimSpace(query.Room),
		SkipCount:      skip,
		MaxResultCount: take,
		Sorting:        query.Sorting,
	}
	if raw := strings.TrimSpace(query.ApprovalStatus); raw != "" {
		status := models.ApprovalStatus(raw)
		if !status.Valid() {
			return models.RepairRequestFilter{}, appErrors.Clone(appErrors.ErrValidation, "unknown approval status")
		}
		filter.ApprovalStatus = &status
	}
	return filter, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
