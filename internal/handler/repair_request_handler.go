package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/service"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

// RepairRequestHandler exposes the teacher-facing repair request endpoints.
type RepairRequestHandler struct {
	service *service.RepairRequestService
}

// NewRepairRequestHandler creates a new handler.
func NewRepairRequestHandler(svc *service.RepairRequestService) *RepairRequestHandler {
	return &RepairRequestHandler{service: svc}
}

// Create godoc
// @Summary Submit repair request
// @Description Submit a new repair request for the current teacher
// @Tags RepairRequests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRepairRequestRequest true "Repair request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /app/repair-request [post]
func (h *RepairRequestHandler) Create(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateRepairRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid repair request payload"))
		return
	}

	item, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update godoc
// @Summary Edit repair request
// @Description Overwrite the editable fields of an own pending repair request
// @Tags RepairRequests
// @Accept json
// @Produce json
// @Param id path string true "Repair request ID"
// @Param payload body dto.UpdateRepairRequestRequest true "Repair request payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /app/repair-request/{id} [put]
func (h *RepairRequestHandler) Update(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateRepairRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid repair request payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// Cancel godoc
// @Summary Cancel repair request
// @Description Withdraw an own repair request that is not yet approved
// @Tags RepairRequests
// @Accept json
// @Produce json
// @Param id path string true "Repair request ID"
// @Param payload body dto.CancelRepairRequestRequest true "Cancellation reason"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /app/repair-request/{id}/cancel [post]
func (h *RepairRequestHandler) Cancel(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CancelRepairRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancellation payload"))
		return
	}

	item, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims.UserID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// MyList godoc
// @Summary List own repair requests
// @Description List the current teacher's repair requests
// @Tags RepairRequests
// @Produce json
// @Param skipCount query int false "Items to skip"
// @Param maxResultCount query int false "Page size"
// @Param sorting query string false "Sort expression"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /app/repair-request/my-list [get]
func (h *RepairRequestHandler) MyList(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.ListRepairRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	items, total, err := h.service.ListMine(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, items, total)
}

// Detail godoc
// @Summary Repair request detail
// @Description Show a repair request visible to the caller
// @Tags RepairRequests
// @Produce json
// @Param id path string true "Repair request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /app/repair-request/{id}/detail [get]
func (h *RepairRequestHandler) Detail(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	item, err := h.service.GetDetail(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}
