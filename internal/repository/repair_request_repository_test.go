package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ops/servicedesk-api/internal/models"
)

func newRepoTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func repairRequestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "request_no", "teacher_id", "title", "description", "building", "room",
		"submitted_at", "is_cancelled", "cancelled_at", "cancelled_reason",
		"electrician_id", "quoted_amount", "currency", "electrician_note", "quoted_at",
		"approval_status", "admin_id", "admin_decision_note", "decided_at",
		"created_at", "updated_at",
	})
}

func addRepairRequestRow(rows *sqlmock.Rows, id, teacherID string, status models.ApprovalStatus) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(
		id, "RR20260301123456", teacherID, "Broken outlet", "Sparks", "Main", "101",
		now, false, nil, nil,
		nil, nil, "CAD", nil, nil,
		string(status), nil, nil, nil,
		now, now,
	)
}

func TestRepairRequestRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	rows := addRepairRequestRow(repairRequestRows(), "rr-1", "teacher-1", models.ApprovalPending)
	mock.ExpectQuery("SELECT id, request_no").
		WithArgs("rr-1").
		WillReturnRows(rows)

	result, err := repo.FindByID(context.Background(), "rr-1")
	require.NoError(t, err)
	assert.Equal(t, "RR20260301123456", result.RequestNo)
	assert.Equal(t, models.ApprovalPending, result.ApprovalStatus)
}

func TestRepairRequestRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	mock.ExpectQuery("SELECT id, request_no").
		WithArgs("missing").
		WillReturnRows(repairRequestRows())

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestRepairRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	mock.ExpectExec("INSERT INTO repair_requests").
		WithArgs(
			sqlmock.AnyArg(), "RR20260301123456", "teacher-1", "Broken outlet", "Sparks", "Main", "101",
			sqlmock.AnyArg(), false, "CAD", "Pending", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.RepairRequest{
		RequestNo:      "RR20260301123456",
		TeacherID:      "teacher-1",
		Title:          "Broken outlet",
		Description:    "Sparks",
		Building:       "Main",
		Room:           "101",
		SubmittedAt:    time.Now().UTC(),
		Currency:       "CAD",
		ApprovalStatus: models.ApprovalPending,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.NotEmpty(t, req.ID)
}

func TestRepairRequestRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	rows := addRepairRequestRow(repairRequestRows(), "rr-1", "teacher-1", models.ApprovalPending)
	mock.ExpectQuery("SELECT id, request_no(.+)teacher_id = (.+)ORDER BY created_at DESC LIMIT 20 OFFSET 0").
		WithArgs("teacher-1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.RepairRequestFilter{TeacherID: "teacher-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "teacher-1", items[0].TeacherID)
}

func TestRepairRequestRepositoryListPendingQuotedOnly(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	mock.ExpectQuery("approval_status = (.+)is_cancelled = FALSE AND quoted_amount IS NOT NULL").
		WithArgs("Pending").
		WillReturnRows(repairRequestRows())
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("Pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	items, total, err := repo.List(context.Background(), models.RepairRequestFilter{PendingOnly: true, QuotedOnly: true})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestRepairRequestRepositoryListAscendingSort(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	mock.ExpectQuery("ORDER BY created_at ASC LIMIT 5 OFFSET 10").
		WillReturnRows(repairRequestRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.RepairRequestFilter{
		Sorting:        "created_at asc",
		SkipCount:      10,
		MaxResultCount: 5,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepairRequestRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	mock.ExpectExec("UPDATE repair_requests SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.RepairRequest{
		ID:             "rr-1",
		Title:          "Broken outlet",
		ApprovalStatus: models.ApprovalApproved,
		Currency:       "CAD",
	}
	require.NoError(t, repo.Update(context.Background(), req))
	assert.False(t, req.UpdatedAt.IsZero())
}

func TestRepairRequestRepositoryExistsByRequestNo(t *testing.T) {
	db, mock, cleanup := newRepoTestDB(t)
	defer cleanup()
	repo := NewRepairRequestRepository(db)

	mock.ExpectQuery("SELECT 1 FROM repair_requests").
		WithArgs("RR20260301123456").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByRequestNo(context.Background(), "RR20260301123456")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM repair_requests").
		WithArgs("RR20260399000000").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByRequestNo(context.Background(), "RR20260399000000")
	require.NoError(t, err)
	assert.False(t, exists)
}
