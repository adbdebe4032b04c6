package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

const hallColumns = `id, name, rows, columns, seats_per_bench, faculty_assigned, floor, created_at, updated_at`

// HallRepository manages persistence for examination halls.
type HallRepository struct {
	db *sqlx.DB
}

// NewHallRepository constructs a HallRepository.
func NewHallRepository(db *sqlx.DB) *HallRepository {
	return &HallRepository{db: db}
}

// List returns every hall in storage order.
func (r *HallRepository) List(ctx context.Context) ([]models.Hall, error) {
	query := `SELECT ` + hallColumns + ` FROM halls ORDER BY id ASC`
	halls := []models.Hall{}
	if err := r.db.SelectContext(ctx, &halls, query); err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	return halls, nil
}

// ListByFaculty returns halls the faculty member is assigned to.
func (r *HallRepository) ListByFaculty(ctx context.Context, facultyID int64) ([]models.Hall, error) {
	query := `SELECT ` + hallColumns + ` FROM halls WHERE $1 = ANY(faculty_assigned) ORDER BY id ASC`
	halls := []models.Hall{}
	if err := r.db.SelectContext(ctx, &halls, query, facultyID); err != nil {
		return nil, fmt.Errorf("list halls for faculty: %w", err)
	}
	return halls, nil
}

// FindByID fetches a hall by ID.
func (r *HallRepository) FindByID(ctx context.Context, id int64) (*models.Hall, error) {
	query := `SELECT ` + hallColumns + ` FROM halls WHERE id = $1`
	var hall models.Hall
	if err := r.db.GetContext(ctx, &hall, query, id); err != nil {
		return nil, err
	}
	return &hall, nil
}

// ExistsByName checks if a hall name is taken, optionally excluding an ID.
func (r *HallRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM halls WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check hall name: %w", err)
	}
	return true, nil
}

// Create inserts a hall and fills its generated ID.
func (r *HallRepository) Create(ctx context.Context, hall *models.Hall) error {
	now := time.Now().UTC()
	hall.CreatedAt = now
	hall.UpdatedAt = now
	if hall.FacultyAssigned == nil {
		hall.FacultyAssigned = []int64{}
	}
	const query = `INSERT INTO halls (name, rows, columns, seats_per_bench, faculty_assigned, floor, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.GetContext(ctx, &hall.ID, query,
		hall.Name, hall.Rows, hall.Columns, hall.SeatsPerBench, hall.FacultyAssigned, hall.Floor, hall.CreatedAt, hall.UpdatedAt); err != nil {
		return fmt.Errorf("create hall: %w", err)
	}
	return nil
}

// Update modifies an existing hall.
func (r *HallRepository) Update(ctx context.Context, hall *models.Hall) error {
	hall.UpdatedAt = time.Now().UTC()
	if hall.FacultyAssigned == nil {
		hall.FacultyAssigned = []int64{}
	}
	const query = `UPDATE halls SET name = $1, rows = $2, columns = $3, seats_per_bench = $4, faculty_assigned = $5, floor = $6, updated_at = $7 WHERE id = $8`
	result, err := r.db.ExecContext(ctx, query,
		hall.Name, hall.Rows, hall.Columns, hall.SeatsPerBench, hall.FacultyAssigned, hall.Floor, hall.UpdatedAt, hall.ID)
	if err != nil {
		return fmt.Errorf("update hall: %w", err)
	}
	return expectAffected(result, "update hall")
}

// Delete removes a hall together with its seat assignments.
func (r *HallRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hall delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM seat_assignments WHERE hall_id = $1`, id); err != nil {
		return fmt.Errorf("delete hall assignments: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM halls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hall: %w", err)
	}
	if err = expectAffected(result, "delete hall"); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit hall delete: %w", err)
	}
	return nil
}
