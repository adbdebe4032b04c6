package seating

import (
	"fmt"
	"strings"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// ManualDepartmentID groups roll numbers entered by hand outside any department range.
const ManualDepartmentID int64 = 0

// HallOutcome is the result of filling one hall.
type HallOutcome struct {
	Assignments []models.SeatAssignment
	Unallocated []string
	Warnings    []string
	Capacity    int
	Requested   int
}

// Placed returns how many students received a seat.
func (o HallOutcome) Placed() int {
	return len(o.Assignments)
}

// AllocateHall fills a single hall column by column. Each flattened column is
// bound to one department group by ColumnDepartment and its rows are filled
// from that group's queue only. Leftovers are reported as unallocated in
// group order.
func AllocateHall(hall models.Hall, departments []models.Department, skip []string, manual []string) (HallOutcome, error) {
	grid, err := GridForHall(hall)
	if err != nil {
		return HallOutcome{}, err
	}

	skipSet := NewSkipSet(skip)
	all, err := departmentQueues(departments, skipSet)
	if err != nil {
		return HallOutcome{}, err
	}
	if manualQueue := NewListQueue(ManualDepartmentID, manual, skipSet); manualQueue.Len() > 0 {
		all = append(all, manualQueue)
	}

	requested := 0
	groups := make([]Queue, 0, len(all))
	for _, q := range all {
		requested += q.Len()
		if q.Len() > 0 {
			groups = append(groups, q)
		}
	}

	outcome := HallOutcome{Capacity: grid.Capacity(), Requested: requested, Warnings: []string{}}
	if requested > outcome.Capacity {
		outcome.Warnings = append(outcome.Warnings, OverflowWarning(requested-outcome.Capacity, outcome.Capacity))
	}

	for col := 0; col < grid.FlatColumns(); col++ {
		idx, ok := ColumnDepartment(col, len(groups))
		if !ok {
			continue
		}
		queue := groups[idx]
		for row := 0; row < grid.Rows(); row++ {
			roll, ok := queue.Pop()
			if !ok {
				break
			}
			grid.Place(row, col, roll, queue.DepartmentID())
		}
	}

	outcome.Assignments = grid.Assignments(hall.ID)
	outcome.Unallocated = drainAll(groups)
	if len(outcome.Unallocated) > 0 {
		outcome.Warnings = append(outcome.Warnings, MissingWarning(outcome.Unallocated))
	}
	return outcome, nil
}

// OverflowWarning describes how many students exceed the hall capacity.
func OverflowWarning(overflow, capacity int) string {
	return fmt.Sprintf("Warning: %d students cannot be allocated due to limited hall capacity (%d seats available).", overflow, capacity)
}

// MissingWarning lists every roll number that did not receive a seat.
func MissingWarning(unallocated []string) string {
	return "Some seat numbers are missing due to limited space: " + strings.Join(unallocated, ", ")
}

func drainAll(queues []Queue) []string {
	out := []string{}
	for _, q := range queues {
		out = append(out, q.Drain()...)
	}
	return out
}
