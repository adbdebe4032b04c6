package models

import (
	"time"

	"github.com/lib/pq"
)

// Hall is an examination room made of rows of benches.
type Hall struct {
	ID              int64         `db:"id" json:"id"`
	Name            string        `db:"name" json:"name"`
	Rows            int           `db:"rows" json:"rows"`
	Columns         int           `db:"columns" json:"columns"`
	SeatsPerBench   int           `db:"seats_per_bench" json:"seats_per_bench"`
	FacultyAssigned pq.Int64Array `db:"faculty_assigned" json:"faculty_assigned"`
	Floor           string        `db:"floor" json:"floor"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// Capacity returns the number of seats in the hall.
func (h Hall) Capacity() int {
	return h.Rows * h.Columns * h.SeatsPerBench
}

// HasFaculty reports whether the faculty member invigilates this hall.
func (h Hall) HasFaculty(facultyID int64) bool {
	for _, id := range h.FacultyAssigned {
		if id == facultyID {
			return true
		}
	}
	return false
}
