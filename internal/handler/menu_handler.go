package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/service"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

// MenuHandler exposes the per-user navigation endpoint.
type MenuHandler struct {
	service *service.MenuService
}

// NewMenuHandler creates a new handler.
func NewMenuHandler(svc *service.MenuService) *MenuHandler {
	return &MenuHandler{service: svc}
}

// MyMenus godoc
// @Summary Current user's menus
// @Description Returns the caller's navigation tree, unioned over their roles
// @Tags Menus
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /app/menu/my-menus [get]
func (h *MenuHandler) MyMenus(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tree, err := h.service.GetMyMenus(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tree)
}
