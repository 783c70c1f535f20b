package models

import "time"

// AppMenu is a navigation menu entry. ParentID forms a tree; acyclicity is
// not enforced at write time, so readers guard traversal with a visited set.
type AppMenu struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Path      *string   `db:"path" json:"path,omitempty"`
	Icon      *string   `db:"icon" json:"icon,omitempty"`
	ParentID  *string   `db:"parent_id" json:"parent_id,omitempty"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	IsEnabled bool      `db:"is_enabled" json:"is_enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AppRoleMenu links a role to a menu entry.
type AppRoleMenu struct {
	RoleID    string    `db:"role_id" json:"role_id"`
	MenuID    string    `db:"menu_id" json:"menu_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MenuNode is a menu with its resolved children, sorted by sort_order.
type MenuNode struct {
	AppMenu
	Children []*MenuNode `json:"children"`
}
