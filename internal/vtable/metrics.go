package vtable

import "strconv"

// Metrics holds per-row heights for an order and their prefix sums.
// Prefix has len(Heights)+1 entries, Prefix[0] is 0 and Prefix[i+1] is
// the offset just below row i.
type Metrics struct {
	Heights []int
	Prefix  []int
	Total   int
}

// RowKey is the rowHeights key for a global row number.
func RowKey(globalRow int) string {
	return strconv.Itoa(globalRow)
}

// overrideHeight returns the usable override for globalRow, if any.
func overrideHeight(rowHeights map[string]int, globalRow, minRowHeight int) (int, bool) {
	if rowHeights == nil {
		return 0, false
	}
	h, ok := rowHeights[RowKey(globalRow)]
	if !ok || h < minRowHeight {
		return 0, false
	}
	return h, true
}

// ComputeMetrics builds heights and prefix sums for order. Overrides below
// minRowHeight are ignored in favor of baseRowHeight.
func ComputeMetrics(order []int, rowHeights map[string]int, baseRowHeight, minRowHeight, startIndex int) Metrics {
	if minRowHeight < 1 {
		minRowHeight = 1
	}
	if baseRowHeight < minRowHeight {
		baseRowHeight = minRowHeight
	}

	m := Metrics{
		Heights: make([]int, len(order)),
		Prefix:  make([]int, len(order)+1),
	}
	for i, src := range order {
		h := baseRowHeight
		if o, ok := overrideHeight(rowHeights, startIndex+src, minRowHeight); ok {
			h = o
		}
		m.Heights[i] = h
		m.Prefix[i+1] = m.Prefix[i] + h
	}
	m.Total = m.Prefix[len(order)]
	return m
}

// Len is the number of rows measured.
func (m Metrics) Len() int {
	return len(m.Heights)
}

// RowAtOffset returns the position of the row covering offset.
func (m Metrics) RowAtOffset(offset int) int {
	return FirstRowAtOrAfterOffset(m.Prefix, offset)
}

// OffsetOf returns the top offset of the row at position pos, clamped to
// the content.
func (m Metrics) OffsetOf(pos int) int {
	if len(m.Prefix) == 0 || pos <= 0 {
		return 0
	}
	if pos >= len(m.Prefix) {
		return m.Total
	}
	return m.Prefix[pos]
}
