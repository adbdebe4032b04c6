package seating

import (
	"github.com/noah-isme/exam-seating-api/internal/models"
)

// MultiOutcome is the result of refilling every hall at once.
type MultiOutcome struct {
	Assignments  []models.SeatAssignment
	Unallocated  []string
	PlacedByHall map[int64]int
}

// AllocateAllHalls distributes every department's students over the halls in
// order. Inside a hall each round takes one student from every non-empty
// department queue and seats them in row-major order; a round that seats
// nobody moves on to the next hall.
func AllocateAllHalls(halls []models.Hall, departments []models.Department) (MultiOutcome, error) {
	queues, err := departmentQueues(departments, nil)
	if err != nil {
		return MultiOutcome{}, err
	}
	outcome := MultiOutcome{
		Assignments:  []models.SeatAssignment{},
		PlacedByHall: make(map[int64]int, len(halls)),
	}

	for _, hall := range halls {
		seats := Seats(hall.Rows, hall.Columns, hall.SeatsPerBench)
		cursor := 0
		for cursor < len(seats) {
			placed := false
			for _, q := range queues {
				if cursor >= len(seats) {
					break
				}
				roll, ok := q.Pop()
				if !ok {
					continue
				}
				seat := seats[cursor]
				outcome.Assignments = append(outcome.Assignments, models.SeatAssignment{
					HallID:            hall.ID,
					Row:               seat.Row + 1,
					Column:            seat.Column + 1,
					BenchPosition:     seat.BenchPosition + 1,
					StudentRollNumber: roll,
					DepartmentID:      q.DepartmentID(),
				})
				cursor++
				placed = true
			}
			if !placed {
				break
			}
		}
		outcome.PlacedByHall[hall.ID] = cursor
	}

	outcome.Unallocated = drainAll(queues)
	return outcome, nil
}
