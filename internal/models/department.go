package models

import "time"

// Department owns an inclusive range of student roll numbers.
type Department struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	RollNumberStart int64     `db:"roll_number_start" json:"roll_number_start"`
	RollNumberEnd   int64     `db:"roll_number_end" json:"roll_number_end"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Size returns how many roll numbers the range spans.
func (d Department) Size() int64 {
	if d.RollNumberEnd < d.RollNumberStart {
		return 0
	}
	return d.RollNumberEnd - d.RollNumberStart + 1
}
