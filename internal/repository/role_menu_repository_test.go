package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleMenuRepositoryListByRoles(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRoleMenuRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"role_id", "menu_id", "created_at"}).
		AddRow("r1", "m1", now).
		AddRow("r2", "m2", now)
	mock.ExpectQuery("SELECT role_id, menu_id(.+)WHERE role_id = ANY").
		WithArgs(pq.Array([]string{"r1", "r2"})).
		WillReturnRows(rows)

	links, err := repo.ListByRoles(context.Background(), []string{"r1", "r2"})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "m1", links[0].MenuID)
}

func TestRoleMenuRepositoryListByRolesEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRoleMenuRepository(db)

	links, err := repo.ListByRoles(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, links)
}

func TestRoleMenuRepositoryReplaceForRole(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRoleMenuRepository(db)

	mock.ExpectExec("DELETE FROM app_role_menus WHERE role_id").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO app_role_menus").
		WithArgs("r1", "m1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO app_role_menus").
		WithArgs("r1", "m2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.ReplaceForRole(context.Background(), "r1", []string{"m1", "m2"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleMenuRepositoryReplaceForRoleEmptySet(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRoleMenuRepository(db)

	mock.ExpectExec("DELETE FROM app_role_menus WHERE role_id").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.ReplaceForRole(context.Background(), "r1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
