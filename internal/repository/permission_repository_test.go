package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

func TestPermissionRepositoryListByProvider(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "provider_type", "provider_key", "name", "is_granted", "created_at", "updated_at"}).
		AddRow("g1", "R", "Teacher", models.PermRepairRequestsCreate, true, now, now)
	mock.ExpectQuery("SELECT id, provider_type").
		WithArgs(models.ProviderRole, "Teacher").
		WillReturnRows(rows)

	grants, err := repo.ListByProvider(context.Background(), models.ProviderRole, "Teacher")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].IsGranted)
	assert.Equal(t, models.PermRepairRequestsCreate, grants[0].Name)
}

func TestPermissionRepositoryListGrantedForRoles(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	rows := sqlmock.NewRows([]string{"name"}).
		AddRow(models.PermRepairRequestsQuote).
		AddRow(models.PermRepairRequestsElectricianList)
	mock.ExpectQuery("SELECT name FROM permission_grants(.+)is_granted = TRUE").
		WithArgs(models.ProviderRole, pq.Array([]string{"Electrician"})).
		WillReturnRows(rows)

	names, err := repo.ListGrantedForRoles(context.Background(), []string{"Electrician"})
	require.NoError(t, err)
	assert.Equal(t, []string{models.PermRepairRequestsQuote, models.PermRepairRequestsElectricianList}, names)
}

func TestPermissionRepositoryListGrantedForRolesEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	names, err := repo.ListGrantedForRoles(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, names)
}

func TestPermissionRepositoryListGrantedForUser(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	rows := sqlmock.NewRows([]string{"name"}).AddRow(models.PermRepairRequestsAdminList)
	mock.ExpectQuery("SELECT name FROM permission_grants").
		WithArgs(models.ProviderUser, "u1").
		WillReturnRows(rows)

	names, err := repo.ListGrantedForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{models.PermRepairRequestsAdminList}, names)
}

func TestPermissionRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectExec("INSERT INTO permission_grants(.+)ON CONFLICT").
		WithArgs(sqlmock.AnyArg(), "R", "Teacher", models.PermRepairRequestsCreate, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	grant := &models.PermissionGrant{
		ProviderType: models.ProviderRole,
		ProviderKey:  "Teacher",
		Name:         models.PermRepairRequestsCreate,
		IsGranted:    true,
	}
	require.NoError(t, repo.Upsert(context.Background(), grant))
	assert.NotEmpty(t, grant.ID)
}
