package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

const roleColumns = `id, name, is_default, created_at, updated_at`

// RoleRepository provides database access for roles.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// List returns every role ordered by name.
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles ORDER BY name ASC`, roleColumns)
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// FindByID returns a role by identifier.
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE id = $1 LIMIT 1`, roleColumns)
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by id: %w", err)
	}
	return &role, nil
}

// FindByName returns a role by its name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE name = $1 LIMIT 1`, roleColumns)
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	return &role, nil
}

// FindByIDs returns the roles among the given identifiers.
func (r *RoleRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE id = ANY($1)`, roleColumns)
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find roles by ids: %w", err)
	}
	return roles, nil
}

// FindByNames returns the roles among the given names.
func (r *RoleRepository) FindByNames(ctx context.Context, names []string) ([]models.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE name = ANY($1)`, roleColumns)
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query, pq.Array(names)); err != nil {
		return nil, fmt.Errorf("find roles by names: %w", err)
	}
	return roles, nil
}

// ExistsByName reports whether a role name is already taken.
func (r *RoleRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := `SELECT 1 FROM roles WHERE LOWER(name) = LOWER($1)`
	args := []interface{}{name}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	query += ` LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check role name: %w", err)
	}
	return true, nil
}

// Create inserts a new role.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	const query = `INSERT INTO roles (id, name, is_default, created_at, updated_at) VALUES (:id, :name, :is_default, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// Update modifies an existing role.
func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = time.Now().UTC()
	const query = `UPDATE roles SET name = :name, is_default = :is_default, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

// Delete removes a role together with its user, menu and grant links.
func (r *RoleRepository) Delete(ctx context.Context, id, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE role_id = $1`, id); err != nil {
		return fmt.Errorf("delete role user links: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_role_menus WHERE role_id = $1`, id); err != nil {
		return fmt.Errorf("delete role menu links: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM permission_grants WHERE provider_type = 'R' AND provider_key = $1`, name); err != nil {
		return fmt.Errorf("delete role grants: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}
