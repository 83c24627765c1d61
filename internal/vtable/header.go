package vtable

import (
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Column width bounds in terminal cells.
const (
	DefaultMinColumnWidth = 4
	DefaultMaxColumnWidth = 50
)

// Header is the shared column definition for a table: widths and pinned
// membership. It outlives individual frames (and pages of the same
// table), so materialized rows read widths and pins from here instead of
// carrying their own copy.
type Header struct {
	Columns []string

	MinWidth int
	MaxWidth int

	widths  []int
	resized []bool
	pinned  map[int]bool
}

// NewHeader creates a header sized to the column titles.
func NewHeader(columns []string) *Header {
	h := &Header{
		Columns:  slices.Clone(columns),
		MinWidth: DefaultMinColumnWidth,
		MaxWidth: DefaultMaxColumnWidth,
		widths:   make([]int, len(columns)),
		resized:  make([]bool, len(columns)),
		pinned:   make(map[int]bool),
	}
	for i, col := range columns {
		h.widths[i] = h.clamp(runewidth.StringWidth(col))
	}
	return h
}

// SameColumns reports whether the header describes exactly columns, so it
// can be carried over to another page of the same table.
func (h *Header) SameColumns(columns []string) bool {
	return slices.Equal(h.Columns, columns)
}

func (h *Header) clamp(w int) int {
	if w < h.MinWidth {
		return h.MinWidth
	}
	if h.MaxWidth > 0 && w > h.MaxWidth {
		return h.MaxWidth
	}
	return w
}

// Fit widens columns the user has not resized to fit the given rows.
func (h *Header) Fit(rows [][]Value) {
	for i, col := range h.Columns {
		if h.resized[i] {
			continue
		}
		w := runewidth.StringWidth(col)
		for _, row := range rows {
			if cw := runewidth.StringWidth(firstLine(DisplayText(cell(row, i)))); cw > w {
				w = cw
			}
		}
		h.widths[i] = h.clamp(w)
	}
}

// Width returns the current width of col.
func (h *Header) Width(col int) int {
	if col < 0 || col >= len(h.widths) {
		return h.MinWidth
	}
	return h.widths[col]
}

// Resize sets the width of col and returns the clamped result.
func (h *Header) Resize(col, width int) int {
	if col < 0 || col >= len(h.widths) {
		return 0
	}
	h.widths[col] = h.clamp(width)
	h.resized[col] = true
	return h.widths[col]
}

// Resized reports whether the user set col's width explicitly.
func (h *Header) Resized(col int) bool {
	return col >= 0 && col < len(h.resized) && h.resized[col]
}

// Pinned reports whether col is pinned.
func (h *Header) Pinned(col int) bool {
	return h.pinned[col]
}

// SetPinned pins or unpins col.
func (h *Header) SetPinned(col int, pinned bool) {
	if col < 0 || col >= len(h.Columns) {
		return
	}
	if pinned {
		h.pinned[col] = true
	} else {
		delete(h.pinned, col)
	}
}

// TogglePin flips col and returns the new membership.
func (h *Header) TogglePin(col int) bool {
	h.SetPinned(col, !h.pinned[col])
	return h.pinned[col]
}

// PinnedColumns returns pinned column indices in ascending order.
func (h *Header) PinnedColumns() []int {
	cols := make([]int, 0, len(h.pinned))
	for c := range h.pinned {
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols
}

// DisplayOrder returns column indices with pinned columns first.
func (h *Header) DisplayOrder() []int {
	order := h.PinnedColumns()
	for i := range h.Columns {
		if !h.pinned[i] {
			order = append(order, i)
		}
	}
	return order
}

// Index returns the position of the named column, or -1.
func (h *Header) Index(name string) int {
	return slices.Index(h.Columns, name)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
