package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-ops/servicedesk-api/internal/dto"
	"github.com/nexus-ops/servicedesk-api/internal/service"
	appErrors "github.com/nexus-ops/servicedesk-api/pkg/errors"
	"github.com/nexus-ops/servicedesk-api/pkg/response"
)

// AdminMenuHandler exposes menu catalogue management endpoints.
type AdminMenuHandler struct {
	service *service.MenuService
}

// NewAdminMenuHandler creates a new handler.
func NewAdminMenuHandler(svc *service.MenuService) *AdminMenuHandler {
	return &AdminMenuHandler{service: svc}
}

// List godoc
// @Summary List menus
// @Description List the full menu catalogue
// @Tags AdminMenus
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /app/admin-menu [get]
func (h *AdminMenuHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Create godoc
// @Summary Create menu
// @Description Register a menu entry with a unique code
// @Tags AdminMenus
// @Accept json
// @Produce json
// @Param payload body dto.CreateMenuRequest true "Menu payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /app/admin-menu [post]
func (h *AdminMenuHandler) Create(c *gin.Context) {
	var req dto.CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid menu payload"))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update godoc
// @Summary Update menu
// @Description Edit a menu entry; code is immutable
// @Tags AdminMenus
// @Accept json
// @Produce json
// @Param id path string true "Menu ID"
// @Param payload body dto.UpdateMenuRequest true "Menu payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /app/admin-menu/{id} [put]
func (h *AdminMenuHandler) Update(c *gin.Context) {
	var req dto.UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid menu payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete menu
// @Description Remove a menu entry and its role assignments
// @Tags AdminMenus
// @Produce json
// @Param id path string true "Menu ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /app/admin-menu/{id} [delete]
func (h *AdminMenuHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
