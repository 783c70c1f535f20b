package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/middleware"
	"github.com/nexus-ops/servicedesk-api/internal/models"
	"github.com/nexus-ops/servicedesk-api/internal/service"
)

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Email: "admin@school.test", Roles: []string{models.RoleNameAdmin}}
}

func quotedTicket(id string) *models.RepairRequest {
	ticket := pendingTicket(id, "teacher-1")
	amount := 240.5
	electrician := "electrician-1"
	quotedAt := time.Now().UTC()
	ticket.QuotedAmount = &amount
	ticket.ElectricianID = &electrician
	ticket.QuotedAt = &quotedAt
	return ticket
}

func TestAdminRepairHandlerApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &repairRepoMock{items: map[string]*models.RepairRequest{"rr-1": quotedTicket("rr-1")}}
	handler := NewAdminRepairHandler(newRepairService(repo, nil), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.DecideRepairRequestRequest{Note: "budget cleared"})
	req, _ := http.NewRequest(http.MethodPost, "/admin-repair-request/rr-1/approve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "rr-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.RepairRequestItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, string(models.ApprovalApproved), envelope.Data.ApprovalStatus)
	require.NotNil(t, envelope.Data.AdminID)
	assert.Equal(t, "admin-1", *envelope.Data.AdminID)
}

func TestAdminRepairHandlerApproveAlreadyDecided(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ticket := quotedTicket("rr-1")
	ticket.ApprovalStatus = models.ApprovalApproved
	repo := &repairRepoMock{items: map[string]*models.RepairRequest{"rr-1": ticket}}
	handler := NewAdminRepairHandler(newRepairService(repo, nil), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/admin-repair-request/rr-1/approve", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "rr-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Approve(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminRepairHandlerRejectRequiresNote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &repairRepoMock{items: map[string]*models.RepairRequest{"rr-1": quotedTicket("rr-1")}}
	handler := NewAdminRepairHandler(newRepairService(repo, nil), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.DecideRepairRequestRequest{})
	req, _ := http.NewRequest(http.MethodPost, "/admin-repair-request/rr-1/reject", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "rr-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Reject(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRepairHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &repairRepoMock{
		list:      []models.RepairRequest{*quotedTicket("rr-1"), *pendingTicket("rr-2", "teacher-2")},
		listTotal: 2,
	}
	handler := NewAdminRepairHandler(newRepairService(repo, nil), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin-repair-request?approvalStatus=Pending", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Items      []dto.RepairRequestItem `json:"items"`
			TotalCount int                     `json:"total_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.TotalCount)
}

func TestAdminRepairHandlerListInvalidQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminRepairHandler(newRepairService(&repairRepoMock{}, nil), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin-repair-request?skipCount=abc", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRepairHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &repairRepoMock{list: []models.RepairRequest{*quotedTicket("rr-1")}, listTotal: 1}
	exports := service.NewExportService(repo, nil, nil, service.ExportConfig{Enabled: true, MaxRows: 100}, nil)
	handler := NewAdminRepairHandler(newRepairService(repo, nil), exports)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin-repair-request/export?format=csv", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(w.Body.String(), "Request No,"))
	assert.Contains(t, w.Body.String(), "RR20260315000001")
}

func TestAdminRepairHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &repairRepoMock{}
	exports := service.NewExportService(repo, nil, nil, service.ExportConfig{Enabled: true, MaxRows: 100}, nil)
	handler := NewAdminRepairHandler(newRepairService(repo, nil), exports)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin-repair-request/export?format=xlsx", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
