package vtable

import "maps"

// ViewState is the user-controlled presentation of a table that the host
// may persist per logical table and hand back on the next load.
type ViewState struct {
	SortColumn    string         `json:"sort_column,omitempty" yaml:"sort_column,omitempty"`
	SortDirection string         `json:"sort_direction,omitempty" yaml:"sort_direction,omitempty"`
	PinnedColumns []string       `json:"pinned_columns,omitempty" yaml:"pinned_columns,omitempty"`
	ColumnWidths  map[string]int `json:"column_widths,omitempty" yaml:"column_widths,omitempty"`
	RowHeights    map[string]int `json:"row_heights,omitempty" yaml:"row_heights,omitempty"`
	SearchTerm    string         `json:"search_term,omitempty" yaml:"search_term,omitempty"`
}

// ChangeKind names what part of the view state changed.
type ChangeKind int

const (
	ChangeSort ChangeKind = iota
	ChangePin
	ChangeColumnResize
	ChangeRowResize
	ChangeSearch
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSort:
		return "sort"
	case ChangePin:
		return "pin"
	case ChangeColumnResize:
		return "column-resize"
	case ChangeRowResize:
		return "row-resize"
	case ChangeSearch:
		return "search"
	default:
		return "unknown"
	}
}

// ViewStateChange is emitted after every persisted-state mutation.
type ViewStateChange struct {
	Kind  ChangeKind
	State ViewState
}

// Listener receives table notifications. Calls happen synchronously on
// the goroutine mutating the table.
type Listener interface {
	VisibleCountChanged(visible, total int)
	ViewStateChanged(change ViewStateChange)
}

type nopListener struct{}

func (nopListener) VisibleCountChanged(int, int)     {}
func (nopListener) ViewStateChanged(ViewStateChange) {}

// ViewState snapshots the table's persistable presentation.
func (t *Table) ViewState() ViewState {
	vs := ViewState{
		SearchTerm: t.searchTerm,
		RowHeights: maps.Clone(t.rowHeights),
	}
	if t.sort.Active() && t.sort.Column < len(t.header.Columns) {
		vs.SortColumn = t.header.Columns[t.sort.Column]
		vs.SortDirection = t.sort.Direction.String()
	}
	for _, c := range t.header.PinnedColumns() {
		vs.PinnedColumns = append(vs.PinnedColumns, t.header.Columns[c])
	}
	for i, name := range t.header.Columns {
		if t.header.Resized(i) {
			if vs.ColumnWidths == nil {
				vs.ColumnWidths = make(map[string]int)
			}
			vs.ColumnWidths[name] = t.header.Width(i)
		}
	}
	return vs
}

// applyViewState restores a persisted state. Entries naming unknown
// columns or carrying unusable heights are dropped.
func (t *Table) applyViewState(vs ViewState) {
	t.searchTerm = vs.SearchTerm

	if col := t.header.Index(vs.SortColumn); col >= 0 {
		t.sort = Sort{Column: col, Direction: ParseDirection(vs.SortDirection)}
	}
	for _, name := range vs.PinnedColumns {
		if col := t.header.Index(name); col >= 0 {
			t.header.SetPinned(col, true)
		}
	}
	for name, w := range vs.ColumnWidths {
		if col := t.header.Index(name); col >= 0 && w > 0 {
			t.header.Resize(col, w)
		}
	}
	for key, h := range vs.RowHeights {
		if h >= t.minRowHeight {
			t.rowHeights[key] = h
		}
	}
}
