package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
)

type repairRepoStub struct {
	items       map[string]models.RepairRequest
	listResult  []models.RepairRequest
	listTotal   int
	lastFilter  models.RepairRequestFilter
	takenNos    map[string]bool
	existsCalls int
	err         error
}

func (s *repairRepoStub) FindByID(ctx context.Context, id string) (*models.RepairRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	if req, ok := s.items[id]; ok {
		return &req, nil
	}
	return nil, sql.ErrNoRows
}

func (s *repairRepoStub) Create(ctx context.Context, req *models.RepairRequest) error {
	if s.err != nil {
		return s.err
	}
	if s.items == nil {
		s.items = make(map[string]models.RepairRequest)
	}
	if req.ID == "" {
		req.ID = "rr-" + req.RequestNo
	}
	s.items[req.ID] = *req
	return nil
}

func (s *repairRepoStub) Update(ctx context.Context, req *models.RepairRequest) error {
	if s.err != nil {
		return s.err
	}
	if s.items == nil {
		s.items = make(map[string]models.RepairRequest)
	}
	s.items[req.ID] = *req
	return nil
}

func (s *repairRepoStub) ExistsByRequestNo(ctx context.Context, requestNo string) (bool, error) {
	s.existsCalls++
	if s.err != nil {
		return false, s.err
	}
	return s.takenNos[requestNo], nil
}

func (s *repairRepoStub) List(ctx context.Context, filter models.RepairRequestFilter) ([]models.RepairRequest, int, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.listResult, s.listTotal, nil
}

type permCheckerStub struct {
	granted map[string]bool
	err     error
}

func (s *permCheckerStub) IsGranted(ctx context.Context, claims *models.JWTClaims, name string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.granted[name], nil
}

type auditRecorderStub struct {
	logs []*models.AuditLog
}

func (s *auditRecorderStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func newRepairService(repo *repairRepoStub, perms *permCheckerStub, audit *auditRecorderStub) *RepairRequestService {
	svc := NewRepairRequestService(repo, perms, audit, validator.New(), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	svc.randomDigit = func() int { return 7 }
	return svc
}

func pendingRequest(id, teacherID string) models.RepairRequest {
	return models.RepairRequest{
		ID:             id,
		RequestNo:      "RR20260301777777",
		TeacherID:      teacherID,
		Title:          "Broken outlet",
		Description:    "Outlet sparks when plugging in",
		Building:       "Main",
		Room:           "101",
		SubmittedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Currency:       "CAD",
		ApprovalStatus: models.ApprovalPending,
	}
}

func TestRepairRequestCreateGeneratesRequestNo(t *testing.T) {
	repo := &repairRepoStub{}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	item, err := svc.Create(context.Background(), "teacher-1", dto.CreateRepairRequestRequest{
		Title:       "  Broken outlet  ",
		Description: "Outlet sparks",
		Building:    "Main",
		Room:        "101",
	})
	require.NoError(t, err)
	assert.Equal(t, "RR20260315777777", item.RequestNo)
	assert.Regexp(t, regexp.MustCompile(`^RR\d{8}\d{6}$`), item.RequestNo)
	assert.Equal(t, "Broken outlet", item.Title)
	assert.Equal(t, string(models.ApprovalPending), item.ApprovalStatus)
	assert.Equal(t, "CAD", item.Currency)
	assert.False(t, item.IsCancelled)
}

func TestRepairRequestCreateRegeneratesTakenRequestNo(t *testing.T) {
	repo := &repairRepoStub{takenNos: map[string]bool{"RR20260315111111": true}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})
	calls := 0
	svc.randomDigit = func() int {
		calls++
		if calls <= 6 {
			return 1
		}
		return 2
	}

	item, err := svc.Create(context.Background(), "teacher-1", dto.CreateRepairRequestRequest{
		Title:       "Broken outlet",
		Description: "Outlet sparks",
		Building:    "Main",
		Room:        "101",
	})
	require.NoError(t, err)
	assert.Equal(t, "RR20260315222222", item.RequestNo)
	assert.Equal(t, 2, repo.existsCalls)
}

func TestRepairRequestCreateRejectsMissingFields(t *testing.T) {
	svc := newRepairService(&repairRepoStub{}, &permCheckerStub{}, &auditRecorderStub{})
	_, err := svc.Create(context.Background(), "teacher-1", dto.CreateRepairRequestRequest{Title: "No room"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestUpdateOwnerOnly(t *testing.T) {
	repo := &repairRepoStub{items: map[string]models.RepairRequest{
		"rr-1": pendingRequest("rr-1", "teacher-1"),
	}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, err := svc.Update(context.Background(), "rr-1", "teacher-2", dto.UpdateRepairRequestRequest{
		Title: "x", Description: "y", Building: "b", Room: "r",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestUpdateRejectedIsLocked(t *testing.T) {
	req := pendingRequest("rr-1", "teacher-1")
	req.ApprovalStatus = models.ApprovalRejected
	repo := &repairRepoStub{items: map[string]models.RepairRequest{"rr-1": req}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, err := svc.Update(context.Background(), "rr-1", "teacher-1", dto.UpdateRepairRequestRequest{
		Title: "x", Description: "y", Building: "b", Room: "r",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestCancelRequiresReason(t *testing.T) {
	svc := newRepairService(&repairRepoStub{}, &permCheckerStub{}, &auditRecorderStub{})
	_, err := svc.Cancel(context.Background(), "rr-1", "teacher-1", "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestCancelApprovedFails(t *testing.T) {
	req := pendingRequest("rr-1", "teacher-1")
	req.ApprovalStatus = models.ApprovalApproved
	repo := &repairRepoStub{items: map[string]models.RepairRequest{"rr-1": req}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, err := svc.Cancel(context.Background(), "rr-1", "teacher-1", "no longer needed")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestCancelRejectedSucceeds(t *testing.T) {
	req := pendingRequest("rr-1", "teacher-1")
	req.ApprovalStatus = models.ApprovalRejected
	repo := &repairRepoStub{items: map[string]models.RepairRequest{"rr-1": req}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	item, err := svc.Cancel(context.Background(), "rr-1", "teacher-1", "resolved externally")
	require.NoError(t, err)
	assert.True(t, item.IsCancelled)
	require.NotNil(t, item.CancelledReason)
	assert.Equal(t, "resolved externally", *item.CancelledReason)
	assert.NotNil(t, item.CancelledAt)
}

func TestRepairRequestCancelTwiceFails(t *testing.T) {
	req := pendingRequest("rr-1", "teacher-1")
	req.IsCancelled = true
	repo := &repairRepoStub{items: map[string]models.RepairRequest{"rr-1": req}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, err := svc.Cancel(context.Background(), "rr-1", "teacher-1", "again")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestQuoteDefaultsCurrency(t *testing.T) {
	repo := &repairRepoStub{items: map[string]models.RepairRequest{
		"rr-1": pendingRequest("rr-1", "teacher-1"),
	}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	item, err := svc.Quote(context.Background(), "rr-1", "elec-1", dto.QuoteRepairRequestRequest{Amount: 240.5, Note: "parts and labour"})
	require.NoError(t, err)
	require.NotNil(t, item.QuotedAmount)
	assert.Equal(t, 240.5, *item.QuotedAmount)
	assert.Equal(t, "CAD", item.Currency)
	require.NotNil(t, item.ElectricianID)
	assert.Equal(t, "elec-1", *item.ElectricianID)
	assert.NotNil(t, item.QuotedAt)
}

func TestRepairRequestQuoteOverwritesEarlierQuote(t *testing.T) {
	req := pendingRequest("rr-1", "teacher-1")
	firstAmount := 100.0
	firstElec := "elec-1"
	req.QuotedAmount = &firstAmount
	req.ElectricianID = &firstElec
	repo := &repairRepoStub{items: map[string]models.RepairRequest{"rr-1": req}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	item, err := svc.Quote(context.Background(), "rr-1", "elec-2", dto.QuoteRepairRequestRequest{Amount: 180, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, 180.0, *item.QuotedAmount)
	assert.Equal(t, "USD", item.Currency)
	assert.Equal(t, "elec-2", *item.ElectricianID)
}

func TestRepairRequestQuoteCancelledFails(t *testing.T) {
	req := pendingRequest("rr-1", "teacher-1")
	req.IsCancelled = true
	repo := &repairRepoStub{items: map[string]models.RepairRequest{"rr-1": req}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, err := svc.Quote(context.Background(), "rr-1", "elec-1", dto.QuoteRepairRequestRequest{Amount: 50})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestApproveWithoutNote(t *testing.T) {
	repo := &repairRepoStub{items: map[string]models.RepairRequest{
		"rr-1": pendingRequest("rr-1", "teacher-1"),
	}}
	audit := &auditRecorderStub{}
	svc := newRepairService(repo, &permCheckerStub{}, audit)

	item, err := svc.Approve(context.Background(), "rr-1", "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, string(models.ApprovalApproved), item.ApprovalStatus)
	assert.Nil(t, item.AdminDecisionNote)
	require.NotNil(t, item.AdminID)
	assert.Equal(t, "admin-1", *item.AdminID)
	assert.NotNil(t, item.DecidedAt)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionApprove, audit.logs[0].Action)
}

func TestRepairRequestRejectRequiresNote(t *testing.T) {
	svc := newRepairService(&repairRepoStub{}, &permCheckerStub{}, &auditRecorderStub{})
	_, err := svc.Reject(context.Background(), "rr-1", "admin-1", " ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestDecisionIsTerminal(t *testing.T) {
	req := pendingRequest("rr-1", "teacher-1")
	req.ApprovalStatus = models.ApprovalApproved
	repo := &repairRepoStub{items: map[string]models.RepairRequest{"rr-1": req}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, err := svc.Reject(context.Background(), "rr-1", "admin-1", "changed my mind")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestGetDetailOwner(t *testing.T) {
	repo := &repairRepoStub{items: map[string]models.RepairRequest{
		"rr-1": pendingRequest("rr-1", "teacher-1"),
	}}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	item, err := svc.GetDetail(context.Background(), "rr-1", &models.JWTClaims{UserID: "teacher-1"})
	require.NoError(t, err)
	assert.Equal(t, "rr-1", item.ID)
}

func TestRepairRequestGetDetailNonOwnerNeedsListPermission(t *testing.T) {
	repo := &repairRepoStub{items: map[string]models.RepairRequest{
		"rr-1": pendingRequest("rr-1", "teacher-1"),
	}}

	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})
	_, err := svc.GetDetail(context.Background(), "rr-1", &models.JWTClaims{UserID: "other"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	perms := &permCheckerStub{granted: map[string]bool{models.PermRepairRequestsElectricianList: true}}
	svc = newRepairService(repo, perms, &auditRecorderStub{})
	item, err := svc.GetDetail(context.Background(), "rr-1", &models.JWTClaims{UserID: "elec-1"})
	require.NoError(t, err)
	assert.Equal(t, "rr-1", item.ID)
}

func TestRepairRequestGetDetailNotFound(t *testing.T) {
	svc := newRepairService(&repairRepoStub{}, &permCheckerStub{}, &auditRecorderStub{})
	_, err := svc.GetDetail(context.Background(), "missing", &models.JWTClaims{UserID: "teacher-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestListMineScopesToOwner(t *testing.T) {
	repo := &repairRepoStub{listResult: []models.RepairRequest{pendingRequest("rr-1", "teacher-1")}, listTotal: 1}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	items, total, err := svc.ListMine(context.Background(), "teacher-1", dto.ListRepairRequestsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "teacher-1", repo.lastFilter.TeacherID)
	assert.Equal(t, 20, repo.lastFilter.MaxResultCount)
}

func TestRepairRequestListClampsPageSize(t *testing.T) {
	repo := &repairRepoStub{}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, _, err := svc.ListAdmin(context.Background(), dto.ListRepairRequestsQuery{SkipCount: -5, MaxResultCount: 500})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.lastFilter.SkipCount)
	assert.Equal(t, 100, repo.lastFilter.MaxResultCount)
}

func TestRepairRequestListRejectsUnknownStatus(t *testing.T) {
	svc := newRepairService(&repairRepoStub{}, &permCheckerStub{}, &auditRecorderStub{})
	_, _, err := svc.ListAdmin(context.Background(), dto.ListRepairRequestsQuery{ApprovalStatus: "Open"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRepairRequestElectricianQueueForcesPending(t *testing.T) {
	repo := &repairRepoStub{}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, _, err := svc.ListElectricianQueue(context.Background(), dto.ListRepairRequestsQuery{})
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.PendingOnly)
	assert.False(t, repo.lastFilter.QuotedOnly)
}

func TestRepairRequestApprovalsRequireQuote(t *testing.T) {
	repo := &repairRepoStub{}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})

	_, _, err := svc.ListApprovals(context.Background(), dto.ListRepairRequestsQuery{})
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.PendingOnly)
	assert.True(t, repo.lastFilter.QuotedOnly)
}

func TestRepairRequestListHandlesRepoError(t *testing.T) {
	repo := &repairRepoStub{err: errors.New("db down")}
	svc := newRepairService(repo, &permCheckerStub{}, &auditRecorderStub{})
	_, _, err := svc.ListAdmin(context.Background(), dto.ListRepairRequestsQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
