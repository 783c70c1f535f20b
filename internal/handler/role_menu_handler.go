package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/service"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

// RoleMenuHandler exposes role to menu assignment endpoints.
type RoleMenuHandler struct {
	service *service.MenuService
}

// NewRoleMenuHandler creates a new handler.
func NewRoleMenuHandler(svc *service.MenuService) *RoleMenuHandler {
	return &RoleMenuHandler{service: svc}
}

// ByRole godoc
// @Summary Menus assigned to role
// @Description Returns the navigation tree a single role would see
// @Tags RoleMenus
// @Produce json
// @Param roleId path string true "Role ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /app/admin-role-menu/by-role/{roleId} [get]
func (h *RoleMenuHandler) ByRole(c *gin.Context) {
	tree, err := h.service.GetMenusForRole(c.Request.Context(), c.Param("roleId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tree)
}

// Save godoc
// @Summary Save role menus
// @Description Replace a role's menu assignments wholesale
// @Tags RoleMenus
// @Accept json
// @Produce json
// @Param payload body object true "Role and menu IDs"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /app/admin-role-menu/save [post]
func (h *RoleMenuHandler) Save(c *gin.Context) {
	var payload struct {
		RoleID string `json:"role_id" binding:"required"`
		dto.SaveRoleMenusRequest
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role menu payload"))
		return
	}

	if err := h.service.SaveRoleMenus(c.Request.Context(), payload.RoleID, payload.MenuIDs, currentClaims(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
