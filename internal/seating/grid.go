package seating

import (
	"fmt"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Cell is one occupied seat of a grid.
type Cell struct {
	RollNumber   string
	DepartmentID int64
}

// Grid is a hall's seat layout with benches flattened into columns.
type Grid struct {
	rows          int
	columns       int
	seatsPerBench int
	cells         [][]*Cell
}

// NewGrid builds an empty grid for the hall geometry.
func NewGrid(rows, columns, seatsPerBench int) (*Grid, error) {
	if rows < 1 || columns < 1 || seatsPerBench < 1 {
		return nil, fmt.Errorf("invalid hall geometry %dx%dx%d", rows, columns, seatsPerBench)
	}
	flat := columns * seatsPerBench
	cells := make([][]*Cell, rows)
	for r := range cells {
		cells[r] = make([]*Cell, flat)
	}
	return &Grid{rows: rows, columns: columns, seatsPerBench: seatsPerBench, cells: cells}, nil
}

// GridForHall builds an empty grid from a hall record.
func GridForHall(hall models.Hall) (*Grid, error) {
	return NewGrid(hall.Rows, hall.Columns, hall.SeatsPerBench)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// FlatColumns returns columns * seatsPerBench.
func (g *Grid) FlatColumns() int { return g.columns * g.seatsPerBench }

// Capacity returns rows * columns * seatsPerBench.
func (g *Grid) Capacity() int { return g.rows * g.columns * g.seatsPerBench }

// BenchOf maps a flattened column to its 0-indexed bench and bench position.
func (g *Grid) BenchOf(flatCol int) (bench, position int) {
	return flatCol / g.seatsPerBench, flatCol % g.seatsPerBench
}

// Place stores a student in the cell at (row, flatCol), both 0-indexed.
func (g *Grid) Place(row, flatCol int, roll string, deptID int64) {
	g.cells[row][flatCol] = &Cell{RollNumber: roll, DepartmentID: deptID}
}

// At returns the occupant of (row, flatCol) or nil.
func (g *Grid) At(row, flatCol int) *Cell {
	return g.cells[row][flatCol]
}

// Assignments converts occupied cells into 1-indexed seat assignments in
// row-major order.
func (g *Grid) Assignments(hallID int64) []models.SeatAssignment {
	out := make([]models.SeatAssignment, 0)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.FlatColumns(); c++ {
			cell := g.cells[r][c]
			if cell == nil {
				continue
			}
			bench, pos := g.BenchOf(c)
			out = append(out, models.SeatAssignment{
				HallID:            hallID,
				Row:               r + 1,
				Column:            bench + 1,
				BenchPosition:     pos + 1,
				StudentRollNumber: cell.RollNumber,
				DepartmentID:      cell.DepartmentID,
			})
		}
	}
	return out
}

// Seat is a 0-indexed seat address.
type Seat struct {
	Row           int
	Column        int
	BenchPosition int
}

// Seats lists every seat of the geometry ordered by row, bench column, then bench position.
func Seats(rows, columns, seatsPerBench int) []Seat {
	if rows < 1 || columns < 1 || seatsPerBench < 1 {
		return nil
	}
	seats := make([]Seat, 0, rows*columns*seatsPerBench)
	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			for p := 0; p < seatsPerBench; p++ {
				seats = append(seats, Seat{Row: r, Column: c, BenchPosition: p})
			}
		}
	}
	return seats
}
