package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// RollBound is a roll-number boundary accepted either as a JSON string or a JSON number.
type RollBound string

// UnmarshalJSON implements json.Unmarshaler.
func (b *RollBound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = RollBound(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("roll number bound must be a string or number")
	}
	*b = RollBound(n.String())
	return nil
}

// DepartmentRequest defines the payload for creating or updating a department.
type DepartmentRequest struct {
	Name            string    `json:"name" validate:"required,max=100"`
	RollNumberStart RollBound `json:"rollNumberStart" validate:"required"`
	RollNumberEnd   RollBound `json:"rollNumberEnd" validate:"required"`
}

// ValidateRangeRequest asks whether a range is free.
type ValidateRangeRequest struct {
	RollNumberStart RollBound `json:"rollNumberStart" validate:"required"`
	RollNumberEnd   RollBound `json:"rollNumberEnd" validate:"required"`
	ExcludeID       int64     `json:"excludeId"`
}

// ValidateRangeResponse reports the first conflicting department, if any.
type ValidateRangeResponse struct {
	Overlaps   bool               `json:"overlaps"`
	Department *models.Department `json:"department,omitempty"`
	Message    string             `json:"message,omitempty"`
}
