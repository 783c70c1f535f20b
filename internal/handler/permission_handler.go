package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/service"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

// PermissionHandler exposes permission management endpoints.
type PermissionHandler struct {
	service *service.PermissionService
}

// NewPermissionHandler creates a new handler.
func NewPermissionHandler(svc *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: svc}
}

// Get godoc
// @Summary Get permission grants
// @Description Returns every known permission with its granted flag for one provider
// @Tags Permissions
// @Produce json
// @Param providerType query string true "R for role, U for user"
// @Param providerKey query string true "Role name or user ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /permission-management/permissions [get]
func (h *PermissionHandler) Get(c *gin.Context) {
	result, err := h.service.GetPermissions(c.Request.Context(), c.Query("providerType"), c.Query("providerKey"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Update godoc
// @Summary Update permission grants
// @Description Applies a batch of grant changes to one provider
// @Tags Permissions
// @Accept json
// @Produce json
// @Param providerType query string true "R for role, U for user"
// @Param providerKey query string true "Role name or user ID"
// @Param payload body dto.UpdatePermissionsRequest true "Grant changes"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /permission-management/permissions [put]
func (h *PermissionHandler) Update(c *gin.Context) {
	var req dto.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid permissions payload"))
		return
	}

	if err := h.service.SetPermissions(c.Request.Context(), c.Query("providerType"), c.Query("providerKey"), req, currentClaims(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
