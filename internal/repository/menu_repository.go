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

const menuColumns = `id, code, name, path, icon, parent_id, sort_order, is_enabled, created_at, updated_at`

// MenuRepository provides database access for app menus.
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository creates a new instance of MenuRepository.
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// List returns every menu ordered by sort_order.
func (r *MenuRepository) List(ctx context.Context) ([]models.AppMenu, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_menus ORDER BY sort_order ASC, code ASC`, menuColumns)
	var menus []models.AppMenu
	if err := r.db.SelectContext(ctx, &menus, query); err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

// FindByID returns a menu by identifier.
func (r *MenuRepository) FindByID(ctx context.Context, id string) (*models.AppMenu, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_menus WHERE id = $1 LIMIT 1`, menuColumns)
	var menu models.AppMenu
	if err := r.db.GetContext(ctx, &menu, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find menu by id: %w", err)
	}
	return &menu, nil
}

// FindEnabledByIDs returns the enabled menus among the given identifiers.
func (r *MenuRepository) FindEnabledByIDs(ctx context.Context, ids []string) ([]models.AppMenu, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM app_menus WHERE id = ANY($1) AND is_enabled = TRUE`, menuColumns)
	var menus []models.AppMenu
	if err := r.db.SelectContext(ctx, &menus, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find menus by ids: %w", err)
	}
	return menus, nil
}

// ExistsByCode reports whether a menu code is already taken.
func (r *MenuRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM app_menus WHERE code = $1 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check menu code: %w", err)
	}
	return true, nil
}

// Create inserts a new menu.
func (r *MenuRepository) Create(ctx context.Context, menu *models.AppMenu) error {
	if menu.ID == "" {
		menu.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if menu.CreatedAt.IsZero() {
		menu.CreatedAt = now
	}
	menu.UpdatedAt = now

	const query = `INSERT INTO app_menus (id, code, name, path, icon, parent_id, sort_order, is_enabled, created_at, updated_at) VALUES (:id, :code, :name, :path, :icon, :parent_id, :sort_order, :is_enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, menu); err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

// Update modifies an existing menu. Code is immutable after creation.
func (r *MenuRepository) Update(ctx context.Context, menu *models.AppMenu) error {
	menu.UpdatedAt = time.Now().UTC()
	const query = `UPDATE app_menus SET name = :name, path = :path, icon = :icon, parent_id = :parent_id, sort_order = :sort_order, is_enabled = :is_enabled, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, menu); err != nil {
		return fmt.Errorf("update menu: %w", err)
	}
	return nil
}

// Delete removes a menu and cascades to its role associations.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_role_menus WHERE menu_id = $1`, id); err != nil {
		return fmt.Errorf("delete menu role links: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_menus WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	return nil
}
