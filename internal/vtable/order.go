package vtable

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Direction is a sort direction.
type Direction int

const (
	SortNone Direction = iota
	SortAscending
	SortDescending
)

// String returns the direction name used in persisted view state.
func (d Direction) String() string {
	switch d {
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return "none"
	}
}

// ParseDirection is the inverse of Direction.String. Unknown names map to
// SortNone.
func ParseDirection(s string) Direction {
	switch strings.ToLower(s) {
	case "asc", "ascending":
		return SortAscending
	case "desc", "descending":
		return SortDescending
	default:
		return SortNone
	}
}

// Next cycles none → ascending → descending → none.
func (d Direction) Next() Direction {
	switch d {
	case SortNone:
		return SortAscending
	case SortAscending:
		return SortDescending
	default:
		return SortNone
	}
}

// Sort selects the column and direction rows are ordered by.
type Sort struct {
	Column    int
	Direction Direction
}

// Active reports whether the sort reorders rows.
func (s Sort) Active() bool {
	return s.Direction != SortNone && s.Column >= 0
}

// ColumnFilter keeps rows whose value in Column contains Value.
type ColumnFilter struct {
	Column int
	Value  string
}

// cell returns row[col], treating missing positions as nil.
func cell(row []Value, col int) Value {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}

// ComputeOrder returns the indices of rows that survive search and filter,
// stably sorted by sort. Filtering always happens before sorting.
func ComputeOrder(rows [][]Value, searchTerm string, filter *ColumnFilter, sort Sort) []int {
	fold := cases.Fold()
	term := fold.String(searchTerm)

	var filterValue string
	if filter != nil {
		filterValue = fold.String(filter.Value)
	}

	matches := func(v Value, needle string) bool {
		if v == nil {
			return false
		}
		return strings.Contains(fold.String(Stringify(v)), needle)
	}

	order := make([]int, 0, len(rows))
	for i, row := range rows {
		if term != "" {
			found := false
			for _, v := range row {
				if matches(v, term) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}

		if filter != nil && filterValue != "" {
			if !matches(cell(row, filter.Column), filterValue) {
				continue
			}
		}
		order = append(order, i)
	}

	if sort.Active() {
		cmp := NewComparator()
		sign := 1
		if sort.Direction == SortDescending {
			sign = -1
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return sign * cmp.Compare(cell(rows[a], sort.Column), cell(rows[b], sort.Column))
		})
	}

	return order
}
