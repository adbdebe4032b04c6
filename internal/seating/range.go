package seating

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// ParseBound converts a roll-number boundary into an integer.
func ParseBound(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("roll number bound is empty")
	}
	value, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("roll number bound %q is not numeric", raw)
	}
	return value, nil
}

// DefaultMaxRangeSize caps how many roll numbers one department may span.
const DefaultMaxRangeSize int64 = 100000

// ErrRangeTooLarge reports a range wider than the allowed size.
var ErrRangeTooLarge = errors.New("roll number range is too large")

// RangeSize returns how many roll numbers [start,end] holds. ok is false when
// the range is inverted or its size does not fit in an int64.
func RangeSize(start, end int64) (size int64, ok bool) {
	if start > end {
		return 0, false
	}
	span := uint64(end) - uint64(start)
	if span >= math.MaxInt64 {
		return 0, false
	}
	return int64(span + 1), true
}

// CheckRangeSize fails with ErrRangeTooLarge when [start,end] holds more than
// maxSize roll numbers. A maxSize of 0 or less only guards against overflow.
// An inverted range is empty and always passes.
func CheckRangeSize(start, end, maxSize int64) error {
	if start > end {
		return nil
	}
	size, ok := RangeSize(start, end)
	if !ok || size > int64(math.MaxInt) {
		return fmt.Errorf("%w: %d-%d cannot be enumerated", ErrRangeTooLarge, start, end)
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %d-%d spans %d roll numbers, at most %d allowed", ErrRangeTooLarge, start, end, size, maxSize)
	}
	return nil
}

// ParseRange parses both bounds and checks their ordering and size against
// DefaultMaxRangeSize.
func ParseRange(start, end string) (int64, int64, error) {
	return ParseRangeWithin(start, end, DefaultMaxRangeSize)
}

// ParseRangeWithin is ParseRange with an explicit size limit.
func ParseRangeWithin(start, end string, maxSize int64) (int64, int64, error) {
	lo, err := ParseBound(start)
	if err != nil {
		return 0, 0, err
	}
	hi, err := ParseBound(end)
	if err != nil {
		return 0, 0, err
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("roll number start %d is greater than end %d", lo, hi)
	}
	if err := CheckRangeSize(lo, hi, maxSize); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// Overlaps reports whether the inclusive ranges [a,b] and [c,d] intersect.
func Overlaps(a, b, c, d int64) bool {
	return !(b < c || d < a)
}

// CheckOverlap returns the first department, in the given order, whose range
// intersects [start,end]. It returns nil when the range is free.
func CheckOverlap(start, end int64, existing []models.Department) *models.Department {
	return CheckOverlapExcluding(start, end, existing, 0)
}

// CheckOverlapExcluding behaves like CheckOverlap but ignores the department
// with excludeID. An excludeID of 0 ignores nothing.
func CheckOverlapExcluding(start, end int64, existing []models.Department, excludeID int64) *models.Department {
	for i := range existing {
		dept := existing[i]
		if excludeID != 0 && dept.ID == excludeID {
			continue
		}
		if Overlaps(start, end, dept.RollNumberStart, dept.RollNumberEnd) {
			return &dept
		}
	}
	return nil
}

// SkipSet holds roll numbers excluded from allocation.
type SkipSet map[string]struct{}

// NewSkipSet builds a set from raw entries, trimming whitespace and dropping blanks.
func NewSkipSet(values []string) SkipSet {
	set := make(SkipSet, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		set[trimmed] = struct{}{}
	}
	return set
}

// Contains reports whether roll is skipped.
func (s SkipSet) Contains(roll string) bool {
	_, ok := s[roll]
	return ok
}

// countWithin returns how many distinct skip entries fall inside [start,end].
// Only entries in canonical decimal form can match an enumerated roll number.
func (s SkipSet) countWithin(start, end int64) int64 {
	var n int64
	for entry := range s {
		value, err := strconv.ParseInt(entry, 10, 64)
		if err != nil || strconv.FormatInt(value, 10) != entry {
			continue
		}
		if value >= start && value <= end {
			n++
		}
	}
	return n
}

// Queue is a FIFO of roll numbers belonging to one department group.
type Queue interface {
	DepartmentID() int64
	Len() int
	Pop() (string, bool)
	Drain() []string
}

// rangeQueue walks [next,end] lazily, skipping excluded values.
type rangeQueue struct {
	deptID    int64
	next      int64
	end       int64
	remaining int
	skip      SkipSet
}

// NewRangeQueue returns a queue over the inclusive range without materialising
// it. An empty range yields an empty queue; a range whose size overflows is an error.
func NewRangeQueue(deptID, start, end int64, skip SkipSet) (Queue, error) {
	q := &rangeQueue{deptID: deptID, next: start, end: end, skip: skip}
	if start > end {
		return q, nil
	}
	if err := CheckRangeSize(start, end, 0); err != nil {
		return nil, fmt.Errorf("department %d: %w", deptID, err)
	}
	size, _ := RangeSize(start, end)
	q.remaining = int(size - skip.countWithin(start, end))
	return q, nil
}

func (q *rangeQueue) DepartmentID() int64 { return q.deptID }

func (q *rangeQueue) Len() int { return q.remaining }

func (q *rangeQueue) Pop() (string, bool) {
	// remaining counts the unskipped values left in [next,end], so the walk
	// stops at end without stepping past it.
	for q.remaining > 0 {
		roll := strconv.FormatInt(q.next, 10)
		if q.next < q.end {
			q.next++
		}
		if q.skip.Contains(roll) {
			continue
		}
		q.remaining--
		return roll, true
	}
	return "", false
}

func (q *rangeQueue) Drain() []string {
	out := make([]string, 0, q.remaining)
	for {
		roll, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, roll)
	}
}

// listQueue serves an explicit list, used for manual entries.
type listQueue struct {
	deptID int64
	items  []string
}

// NewListQueue returns a queue over the trimmed, non-empty values that are not in skip.
func NewListQueue(deptID int64, values []string, skip SkipSet) Queue {
	items := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" && !skip.Contains(trimmed) {
			items = append(items, trimmed)
		}
	}
	return &listQueue{deptID: deptID, items: items}
}

func (q *listQueue) DepartmentID() int64 { return q.deptID }

func (q *listQueue) Len() int { return len(q.items) }

func (q *listQueue) Pop() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	roll := q.items[0]
	q.items = q.items[1:]
	return roll, true
}

func (q *listQueue) Drain() []string {
	out := q.items
	q.items = nil
	if out == nil {
		return []string{}
	}
	return out
}

// departmentQueues builds one queue per department in the given order.
func departmentQueues(departments []models.Department, skip SkipSet) ([]Queue, error) {
	queues := make([]Queue, 0, len(departments))
	for _, dept := range departments {
		q, err := NewRangeQueue(dept.ID, dept.RollNumberStart, dept.RollNumberEnd, skip)
		if err != nil {
			return nil, err
		}
		queues = append(queues, q)
	}
	return queues, nil
}
