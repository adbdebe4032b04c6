package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

const (
	seatAssignmentColumns = `hall_id, seat_row, seat_column, bench_position, student_roll_number, department_id, generated_at`
	// Seven parameters per row keeps every batch well below the postgres bind limit.
	insertBatchSize = 1000
)

// SeatAssignmentRepository stores generated seating plans.
type SeatAssignmentRepository struct {
	db *sqlx.DB
}

// NewSeatAssignmentRepository constructs a SeatAssignmentRepository.
func NewSeatAssignmentRepository(db *sqlx.DB) *SeatAssignmentRepository {
	return &SeatAssignmentRepository{db: db}
}

// ListByHall returns a hall's assignments in row-major order.
func (r *SeatAssignmentRepository) ListByHall(ctx context.Context, hallID int64) ([]models.SeatAssignment, error) {
	query := `SELECT ` + seatAssignmentColumns + ` FROM seat_assignments WHERE hall_id = $1
        ORDER BY seat_row, seat_column, bench_position`
	assignments := []models.SeatAssignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, hallID); err != nil {
		return nil, fmt.Errorf("list hall assignments: %w", err)
	}
	return assignments, nil
}

// ListAll returns every assignment ordered by hall then seat.
func (r *SeatAssignmentRepository) ListAll(ctx context.Context) ([]models.SeatAssignment, error) {
	query := `SELECT ` + seatAssignmentColumns + ` FROM seat_assignments
        ORDER BY hall_id, seat_row, seat_column, bench_position`
	assignments := []models.SeatAssignment{}
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// CountByHall returns how many seats of the hall are assigned.
func (r *SeatAssignmentRepository) CountByHall(ctx context.Context, hallID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seat_assignments WHERE hall_id = $1`, hallID); err != nil {
		return 0, fmt.Errorf("count hall assignments: %w", err)
	}
	return count, nil
}

// ReplaceForHall atomically swaps the hall's assignments for the given set.
func (r *SeatAssignmentRepository) ReplaceForHall(ctx context.Context, hallID int64, assignments []models.SeatAssignment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hall plan replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE hall_id = $1`, hallID); err != nil {
		return fmt.Errorf("clear hall assignments: %w", err)
	}
	if err = insertAssignments(ctx, tx, assignments); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit hall plan replace: %w", err)
	}
	return nil
}

// ReplaceAll atomically swaps every stored assignment for the given set.
func (r *SeatAssignmentRepository) ReplaceAll(ctx context.Context, assignments []models.SeatAssignment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM seat_assignments`); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	if err = insertAssignments(ctx, tx, assignments); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit plan replace: %w", err)
	}
	return nil
}

func insertAssignments(ctx context.Context, tx *sqlx.Tx, assignments []models.SeatAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range assignments {
		if assignments[i].GeneratedAt.IsZero() {
			assignments[i].GeneratedAt = now
		}
	}

	const query = `INSERT INTO seat_assignments (` + seatAssignmentColumns + `)
        VALUES (:hall_id, :seat_row, :seat_column, :bench_position, :student_roll_number, :department_id, :generated_at)`
	for start := 0; start < len(assignments); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(assignments) {
			end = len(assignments)
		}
		if _, err := tx.NamedExecContext(ctx, query, assignments[start:end]); err != nil {
			return fmt.Errorf("insert assignments: %w", err)
		}
	}
	return nil
}
