package models

import "time"

// PlanGeneratedEvent announces that a seating plan was stored.
type PlanGeneratedEvent struct {
	ID          string    `json:"id"`
	Scope       string    `json:"scope"`
	HallIDs     []int64   `json:"hall_ids"`
	Placed      int       `json:"placed"`
	Unallocated int       `json:"unallocated"`
	GeneratedAt time.Time `json:"generated_at"`
}
