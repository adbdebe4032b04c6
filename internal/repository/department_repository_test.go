package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func newDepartmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestDepartmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "roll_number_start", "roll_number_end", "created_at", "updated_at"}).
		AddRow(1, "CSE", 1001, 1060, now, now).
		AddRow(2, "ECE", 2001, 2045, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM departments ORDER BY id ASC")).WillReturnRows(rows)

	departments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "CSE", departments[0].Name)
	assert.Equal(t, int64(2045), departments[1].RollNumberEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM departments WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDepartmentRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM departments WHERE LOWER(name) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("CSE", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	exists, err := repo.ExistsByName(context.Background(), "CSE", 3)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM departments WHERE LOWER(name) = LOWER($1) LIMIT 1")).
		WithArgs("MECH").
		WillReturnError(sql.ErrNoRows)
	exists, err = repo.ExistsByName(context.Background(), "MECH", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDepartmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO departments")).
		WithArgs("CSE", int64(1001), int64(1060), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	dept := &models.Department{Name: "CSE", RollNumberStart: 1001, RollNumberEnd: 1060}
	require.NoError(t, repo.Create(context.Background(), dept))
	assert.Equal(t, int64(7), dept.ID)
	assert.False(t, dept.CreatedAt.IsZero())
}

func TestDepartmentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE departments SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Department{ID: 4, Name: "CSE", RollNumberStart: 1, RollNumberEnd: 2})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDepartmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM departments WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
