package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

// RoleMenuRepository provides database access for role to menu links.
type RoleMenuRepository struct {
	db *sqlx.DB
}

// NewRoleMenuRepository creates a new instance of RoleMenuRepository.
func NewRoleMenuRepository(db *sqlx.DB) *RoleMenuRepository {
	return &RoleMenuRepository{db: db}
}

// ListByRole returns the menu links for a single role.
func (r *RoleMenuRepository) ListByRole(ctx context.Context, roleID string) ([]models.AppRoleMenu, error) {
	const query = `SELECT role_id, menu_id, created_at FROM app_role_menus WHERE role_id = $1`
	var links []models.AppRoleMenu
	if err := r.db.SelectContext(ctx, &links, query, roleID); err != nil {
		return nil, fmt.Errorf("list role menus: %w", err)
	}
	return links, nil
}

// ListByRoles returns the menu links for any of the given roles.
func (r *RoleMenuRepository) ListByRoles(ctx context.Context, roleIDs []string) ([]models.AppRoleMenu, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT role_id, menu_id, created_at FROM app_role_menus WHERE role_id = ANY($1)`
	var links []models.AppRoleMenu
	if err := r.db.SelectContext(ctx, &links, query, pq.Array(roleIDs)); err != nil {
		return nil, fmt.Errorf("list role menus by roles: %w", err)
	}
	return links, nil
}

// ReplaceForRole swaps a role's menu set wholesale: delete everything, then
// insert the new links. The two statements are separate round trips, matching
// the replace-all contract of the save endpoint.
func (r *RoleMenuRepository) ReplaceForRole(ctx context.Context, roleID string, menuIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_role_menus WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("delete role menus: %w", err)
	}

	now := time.Now().UTC()
	for _, menuID := range menuIDs {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO app_role_menus (role_id, menu_id, created_at) VALUES ($1, $2, $3)`, roleID, menuID, now); err != nil {
			return fmt.Errorf("insert role menu %s: %w", menuID, err)
		}
	}
	return nil
}
