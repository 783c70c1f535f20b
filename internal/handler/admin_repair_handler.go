package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/service"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

// AdminRepairHandler exposes the back-office repair request endpoints.
type AdminRepairHandler struct {
	service *service.RepairRequestService
	exports *service.ExportService
}

// NewAdminRepairHandler creates a new handler.
func NewAdminRepairHandler(svc *service.RepairRequestService, exports *service.ExportService) *AdminRepairHandler {
	return &AdminRepairHandler{service: svc, exports: exports}
}

// List godoc
// @Summary Admin repair request listing
// @Description List every repair request with filters
// @Tags AdminRepairRequests
// @Produce json
// @Param approvalStatus query string false "Approval status filter"
// @Param isCancelled query bool false "Cancellation filter"
// @Param building query string false "Building substring filter"
// @Param room query string false "Room substring filter"
// @Param skipCount query int false "Items to skip"
// @Param maxResultCount query int false "Page size"
// @Param sorting query string false "Sort expression"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /app/admin-repair-request [get]
func (h *AdminRepairHandler) List(c *gin.Context) {
	var query dto.ListRepairRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	items, total, err := h.service.ListAdmin(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, items, total)
}

// Approvals godoc
// @Summary Approval queue
// @Description List pending, quoted repair requests ready for decision
// @Tags AdminRepairRequests
// @Produce json
// @Param skipCount query int false "Items to skip"
// @Param maxResultCount query int false "Page size"
// @Param sorting query string false "Sort expression"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /app/admin-repair-request/approvals [get]
func (h *AdminRepairHandler) Approvals(c *gin.Context) {
	var query dto.ListRepairRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	items, total, err := h.service.ListApprovals(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, items, total)
}

// Approve godoc
// @Summary Approve repair request
// @Description Approve a pending repair request
// @Tags AdminRepairRequests
// @Accept json
// @Produce json
// @Param id path string true "Repair request ID"
// @Param payload body dto.DecideRepairRequestRequest false "Decision note"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /app/admin-repair-request/{id}/approve [post]
func (h *AdminRepairHandler) Approve(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DecideRepairRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
			return
		}
	}

	item, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims.UserID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// Reject godoc
// @Summary Reject repair request
// @Description Reject a pending repair request with a note
// @Tags AdminRepairRequests
// @Accept json
// @Produce json
// @Param id path string true "Repair request ID"
// @Param payload body dto.DecideRepairRequestRequest true "Decision note"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /app/admin-repair-request/{id}/reject [post]
func (h *AdminRepairHandler) Reject(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DecideRepairRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	item, err := h.service.Reject(c.Request.Context(), c.Param("id"), claims.UserID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// Export godoc
// @Summary Export repair requests
// @Description Download the filtered admin listing as CSV or PDF
// @Tags AdminRepairRequests
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param approvalStatus query string false "Approval status filter"
// @Param isCancelled query bool false "Cancellation filter"
// @Success 200 {file} byte
// @Failure 400 {object} response.Envelope
// @Router /app/admin-repair-request/export [get]
func (h *AdminRepairHandler) Export(c *gin.Context) {
	var query dto.ListRepairRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	result, err := h.exports.RenderRepairRequests(c.Request.Context(), query, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
