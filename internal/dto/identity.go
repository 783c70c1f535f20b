package dto

import (
	"time"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

// CreateUserRequest describes the payload for registering a user.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	FullName string   `json:"full_name" validate:"required,max=128"`
	RoleIDs  []string `json:"role_ids" validate:"dive,uuid"`
}

// UpdateUserRequest describes the payload for editing a user.
type UpdateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	FullName string   `json:"full_name" validate:"required,max=128"`
	Active   *bool    `json:"active"`
	RoleIDs  []string `json:"role_ids" validate:"dive,uuid"`
}

// ListUsersQuery captures the user listing query parameters.
type ListUsersQuery struct {
	Active         *bool  `form:"active"`
	Search         string `form:"search"`
	SkipCount      int    `form:"skipCount"`
	MaxResultCount int    `form:"maxResultCount"`
	Sorting        string `form:"sorting"`
}

// UserItem is the API representation of a user.
type UserItem struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Active    bool       `json:"active"`
	Roles     []string   `json:"roles"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewUserItem maps a user model to its API shape.
func NewUserItem(user *models.User) UserItem {
	roles := user.RoleNames
	if roles == nil {
		roles = []string{}
	}
	return UserItem{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Active:    user.Active,
		Roles:     roles,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// CreateRoleRequest describes the payload for registering a role.
type CreateRoleRequest struct {
	Name      string `json:"name" validate:"required,max=64"`
	IsDefault bool   `json:"is_default"`
}

// UpdateRoleRequest describes the payload for editing a role.
type UpdateRoleRequest struct {
	Name      string `json:"name" validate:"required,max=64"`
	IsDefault bool   `json:"is_default"`
}

// RoleItem is the API representation of a role.
type RoleItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRoleItem maps a role model to its API shape.
func NewRoleItem(role *models.Role) RoleItem {
	return RoleItem{
		ID:        role.ID,
		Name:      role.Name,
		IsDefault: role.IsDefault,
		CreatedAt: role.CreatedAt,
		UpdatedAt: role.UpdatedAt,
	}
}

// NewRoleItems maps a slice of roles to their API shape.
func NewRoleItems(roles []models.Role) []RoleItem {
	items := make([]RoleItem, 0, len(roles))
	for i := range roles {
		items = append(items, NewRoleItem(&roles[i]))
	}
	return items
}
