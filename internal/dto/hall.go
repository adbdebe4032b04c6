package dto

// HallRequest defines the payload for creating or updating a hall.
type HallRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Rows            int     `json:"rows" validate:"required,min=1,max=200"`
	Columns         int     `json:"columns" validate:"required,min=1,max=200"`
	SeatsPerBench   int     `json:"seatsPerBench" validate:"required,min=1,max=10"`
	FacultyAssigned []int64 `json:"facultyAssigned" validate:"omitempty,dive,gt=0"`
	Floor           string  `json:"floor" validate:"omitempty,max=50"`
}
