package models

import "time"

// User represents an application user stored in the users table. Roles are
// assigned through the user_roles association rather than a fixed enum.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	RoleNames []string `db:"-" json:"role_names,omitempty"`
}

// Role is an identity role that can carry menu assignments and permission
// grants.
type Role struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Built-in role names created by the seeder.
const (
	RoleNameTeacher     = "Teacher"
	RoleNameElectrician = "Electrician"
	RoleNameAdmin       = "Admin"
)

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Active *bool
	Search string

	SkipCount      int
	MaxResultCount int
	Sorting        string
}
