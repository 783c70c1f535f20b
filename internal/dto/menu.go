package dto

import (
	"time"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

// CreateMenuRequest describes the payload for registering a menu entry.
type CreateMenuRequest struct {
	Code      string  `json:"code" validate:"required,max=64"`
	Name      string  `json:"name" validate:"required,max=128"`
	Path      *string `json:"path" validate:"omitempty,max=256"`
	Icon      *string `json:"icon" validate:"omitempty,max=64"`
	ParentID  *string `json:"parent_id" validate:"omitempty,uuid"`
	SortOrder int     `json:"sort_order"`
	IsEnabled *bool   `json:"is_enabled"`
}

// UpdateMenuRequest describes the payload for editing a menu entry. Code is
// immutable and therefore absent.
type UpdateMenuRequest struct {
	Name      string  `json:"name" validate:"required,max=128"`
	Path      *string `json:"path" validate:"omitempty,max=256"`
	Icon      *string `json:"icon" validate:"omitempty,max=64"`
	ParentID  *string `json:"parent_id" validate:"omitempty,uuid"`
	SortOrder int     `json:"sort_order"`
	IsEnabled *bool   `json:"is_enabled"`
}

// SaveRoleMenusRequest assigns a role's full menu set in one call.
type SaveRoleMenusRequest struct {
	MenuIDs []string `json:"menu_ids" validate:"dive,uuid"`
}

// MenuItem is the flat API representation of a menu entry.
type MenuItem struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Path      *string   `json:"path,omitempty"`
	Icon      *string   `json:"icon,omitempty"`
	ParentID  *string   `json:"parent_id,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsEnabled bool      `json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuTreeNode is a menu entry with its resolved children.
type MenuTreeNode struct {
	ID        string          `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Path      *string         `json:"path,omitempty"`
	Icon      *string         `json:"icon,omitempty"`
	SortOrder int             `json:"sort_order"`
	Children  []*MenuTreeNode `json:"children"`
}

// NewMenuItem maps a menu model to its API shape.
func NewMenuItem(menu *models.AppMenu) MenuItem {
	return MenuItem{
		ID:        menu.ID,
		Code:      menu.Code,
		Name:      menu.Name,
		Path:      menu.Path,
		Icon:      menu.Icon,
		ParentID:  menu.ParentID,
		SortOrder: menu.SortOrder,
		IsEnabled: menu.IsEnabled,
		CreatedAt: menu.CreatedAt,
		UpdatedAt: menu.UpdatedAt,
	}
}

// NewMenuItems maps a slice of menus to their API shape.
func NewMenuItems(menus []models.AppMenu) []MenuItem {
	items := make([]MenuItem, 0, len(menus))
	for i := range menus {
		items = append(items, NewMenuItem(&menus[i]))
	}
	return items
}
