package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func newHallRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

var hallRowColumns = []string{"id", "name", "rows", "columns", "seats_per_bench", "faculty_assigned", "floor", "created_at", "updated_at"}

func TestHallRepositoryListByFaculty(t *testing.T) {
	db, mock, cleanup := newHallRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(hallRowColumns).
		AddRow(1, "First Floor Hall A", 5, 4, 2, "{11,12}", "", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE $1 = ANY(faculty_assigned)")).
		WithArgs(int64(12)).
		WillReturnRows(rows)

	halls, err := repo.ListByFaculty(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, halls, 1)
	assert.Equal(t, pq.Int64Array{11, 12}, halls[0].FacultyAssigned)
	assert.Equal(t, 40, halls[0].Capacity())
}

func TestHallRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newHallRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO halls")).
		WithArgs("Hall A", 5, 4, 2, sqlmock.AnyArg(), "GROUND FLOOR", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	hall := &models.Hall{Name: "Hall A", Rows: 5, Columns: 4, SeatsPerBench: 2, Floor: "GROUND FLOOR"}
	require.NoError(t, repo.Create(context.Background(), hall))
	assert.Equal(t, int64(3), hall.ID)
	assert.NotNil(t, hall.FacultyAssigned)
}

func TestHallRepositoryDeleteRemovesAssignments(t *testing.T) {
	db, mock, cleanup := newHallRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seat_assignments WHERE hall_id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM halls WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHallRepositoryDeleteRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newHallRepoMock(t)
	defer cleanup()
	repo := NewHallRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seat_assignments WHERE hall_id = $1")).
		WithArgs(int64(3)).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 3)
	assert.ErrorContains(t, err, "lock timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
