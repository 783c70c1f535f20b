package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/service"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

// ElectricianHandler exposes the electrician-facing repair request endpoints.
type ElectricianHandler struct {
	service *service.RepairRequestService
}

// NewElectricianHandler creates a new handler.
func NewElectricianHandler(svc *service.RepairRequestService) *ElectricianHandler {
	return &ElectricianHandler{service: svc}
}

// Queue godoc
// @Summary Electrician work queue
// @Description List pending, not cancelled repair requests awaiting a quote
// @Tags Electrician
// @Produce json
// @Param skipCount query int false "Items to skip"
// @Param maxResultCount query int false "Page size"
// @Param sorting query string false "Sort expression"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /app/electrician-repair-request [get]
func (h *ElectricianHandler) Queue(c *gin.Context) {
	var query dto.ListRepairRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}

	items, total, err := h.service.ListElectricianQueue(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, items, total)
}

// Quote godoc
// @Summary Quote repair request
// @Description Record or overwrite a cost estimate on a pending repair request
// @Tags Electrician
// @Accept json
// @Produce json
// @Param id path string true "Repair request ID"
// @Param payload body dto.QuoteRepairRequestRequest true "Quote payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /app/electrician-repair-request/{id}/quote [put]
// @Router /app/electrician-repair-request/{id}/quote [post]
func (h *ElectricianHandler) Quote(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.QuoteRepairRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quote payload"))
		return
	}

	item, err := h.service.Quote(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}
