package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

// PermissionRepository provides database access for permission grants.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository creates a new instance of PermissionRepository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// ListByProvider returns every grant for a single provider.
func (r *PermissionRepository) ListByProvider(ctx context.Context, providerType models.ProviderType, providerKey string) ([]models.PermissionGrant, error) {
	const query = `SELECT id, provider_type, provider_key, name, is_granted, created_at, updated_at FROM permission_grants WHERE provider_type = $1 AND provider_key = $2`
	var grants []models.PermissionGrant
	if err := r.db.SelectContext(ctx, &grants, query, providerType, providerKey); err != nil {
		return nil, fmt.Errorf("list permission grants: %w", err)
	}
	return grants, nil
}

// ListGrantedForRoles returns the granted permission names for any of the
// given role keys.
func (r *PermissionRepository) ListGrantedForRoles(ctx context.Context, roleKeys []string) ([]string, error) {
	if len(roleKeys) == 0 {
		return nil, nil
	}
	const query = `SELECT name FROM permission_grants WHERE provider_type = $1 AND provider_key = ANY($2) AND is_granted = TRUE`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, models.ProviderRole, pq.Array(roleKeys)); err != nil {
		return nil, fmt.Errorf("list role grants: %w", err)
	}
	return names, nil
}

// ListGrantedForUser returns the granted permission names for a user key.
func (r *PermissionRepository) ListGrantedForUser(ctx context.Context, userKey string) ([]string, error) {
	const query = `SELECT name FROM permission_grants WHERE provider_type = $1 AND provider_key = $2 AND is_granted = TRUE`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, models.ProviderUser, userKey); err != nil {
		return nil, fmt.Errorf("list user grants: %w", err)
	}
	return names, nil
}

// Upsert stores a grant, replacing any previous value for the same
// (provider_type, provider_key, name) tuple.
func (r *PermissionRepository) Upsert(ctx context.Context, grant *models.PermissionGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = now
	}
	grant.UpdatedAt = now

	const query = `INSERT INTO permission_grants (id, provider_type, provider_key, name, is_granted, created_at, updated_at) VALUES (:id, :provider_type, :provider_key, :name, :is_granted, :created_at, :updated_at) ON CONFLICT (provider_type, provider_key, name) DO UPDATE SET is_granted = EXCLUDED.is_granted, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grant); err != nil {
		return fmt.Errorf("upsert permission grant: %w", err)
	}
	return nil
}
