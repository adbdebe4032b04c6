package seating

// ColumnDepartment selects which department group fills flattened column col
// when n groups take part. ok is false when the column stays empty.
//
// One group fills even columns only, leaving a gap between neighbours. Two
// groups alternate by parity. Three or more cycle by column index.
func ColumnDepartment(col, n int) (index int, ok bool) {
	switch {
	case n <= 0 || col < 0:
		return 0, false
	case n == 1:
		if col%2 != 0 {
			return 0, false
		}
		return 0, true
	case n == 2:
		return col % 2, true
	default:
		return col % n, true
	}
}
