package models

import "time"

// SeatAssignment places one student on one seat. Row, Column (bench) and
// BenchPosition are 1-indexed.
type SeatAssignment struct {
	HallID            int64     `db:"hall_id" json:"hall_id"`
	Row               int       `db:"seat_row" json:"row"`
	Column            int       `db:"seat_column" json:"column"`
	BenchPosition     int       `db:"bench_position" json:"bench_position"`
	StudentRollNumber string    `db:"student_roll_number" json:"student_roll_number"`
	DepartmentID      int64     `db:"department_id" json:"department_id"`
	GeneratedAt       time.Time `db:"generated_at" json:"generated_at"`
}
