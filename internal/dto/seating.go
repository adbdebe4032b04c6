package dto

import (
	"time"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// GenerateHallRequest carries the skip list and manual entries for a single-hall run.
type GenerateHallRequest struct {
	Skip   []string `json:"skip" validate:"omitempty,dive,max=64"`
	Manual []string `json:"manual" validate:"omitempty,dive,max=64"`
}

// GenerationStats summarises a single-hall run.
type GenerationStats struct {
	Capacity    int `json:"capacity"`
	Requested   int `json:"requested"`
	Placed      int `json:"placed"`
	Unallocated int `json:"unallocated"`
}

// HallPlacement reports how many students a hall received in an all-halls run.
type HallPlacement struct {
	HallID   int64  `json:"hallId"`
	HallName string `json:"hallName"`
	Capacity int    `json:"capacity"`
	Placed   int    `json:"placed"`
}

// GenerationResult is returned by every generation run.
type GenerationResult struct {
	Success     bool             `json:"success"`
	Unallocated []string         `json:"unallocated"`
	Warnings    []string         `json:"warnings,omitempty"`
	Stats       *GenerationStats `json:"stats,omitempty"`
	PerHall     []HallPlacement  `json:"perHall,omitempty"`
	GeneratedAt *time.Time       `json:"generatedAt,omitempty"`
}

// SeatView is a seat assignment labelled with its department name.
type SeatView struct {
	Row               int    `json:"row"`
	Column            int    `json:"column"`
	BenchPosition     int    `json:"benchPosition"`
	StudentRollNumber string `json:"studentRollNumber"`
	DepartmentID      int64  `json:"departmentId"`
	DepartmentName    string `json:"departmentName"`
}

// HallPlan is the stored plan of one hall.
type HallPlan struct {
	Hall     models.Hall `json:"hall"`
	Seats    []SeatView  `json:"seats"`
	Capacity int         `json:"capacity"`
	Occupied int         `json:"occupied"`
}

// ConsolidatedRow summarises one department's candidates inside one hall.
type ConsolidatedRow struct {
	HallID         int64  `json:"hallId"`
	HallName       string `json:"hallName"`
	Floor          string `json:"floor"`
	DepartmentID   int64  `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	FromRoll       string `json:"fromRoll"`
	ToRoll         string `json:"toRoll"`
	Count          int    `json:"count"`
}

// ExportRequest selects the document format and optional header details.
type ExportRequest struct {
	Format  string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
	HallID  *int64 `form:"hallId" validate:"omitempty,gt=0"`
	Session string `form:"session" validate:"omitempty,max=120"`
}

// ExportResult is a rendered document ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}
