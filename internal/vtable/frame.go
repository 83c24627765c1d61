package vtable

// ElementKind identifies an entry of a Frame.
type ElementKind int

const (
	ElementSpacer ElementKind = iota
	ElementRow
	ElementPlaceholder
)

// PlaceholderText is shown when every row is filtered out.
const PlaceholderText = "No matching rows"

// Cell is one materialized value.
type Cell struct {
	Column int
	Value  Value
	Pinned bool
}

// Element is a spacer, a materialized row or the empty placeholder.
type Element struct {
	Kind   ElementKind
	Height int

	// Row elements only.
	GlobalRow int
	Source    int
	Position  int
	Cells     []Cell

	// Placeholder elements only.
	Text string
}

// Frame is the output of one materialization.
type Frame struct {
	Elements []Element
	Window   Window
	Total    int

	// Offset is the scroll offset the frame was last synchronized with.
	Offset int

	top    int
	bottom int
}

// Materialize builds the elements for window: a top spacer covering the
// skipped rows above, the rows of order[window.Start:window.End], and a
// bottom spacer covering the rest. Zero-height spacers are omitted.
func Materialize(page *Page, order []int, w Window, m Metrics) Frame {
	if len(order) == 0 || len(m.Prefix) != len(order)+1 {
		return Frame{Elements: []Element{{Kind: ElementPlaceholder, Height: 1, Text: PlaceholderText}}}
	}

	w.Start = min(max(w.Start, 0), len(order))
	w.End = min(max(w.End, w.Start), len(order))

	f := Frame{
		Window:   w,
		Total:    m.Total,
		Elements: make([]Element, 0, w.Len()+2),
	}
	if f.top = m.Prefix[w.Start]; f.top > 0 {
		f.Elements = append(f.Elements, Element{Kind: ElementSpacer, Height: f.top})
	}
	for pos := w.Start; pos < w.End; pos++ {
		src := order[pos]
		row := page.Row(src)
		cells := make([]Cell, len(page.Columns))
		for c := range cells {
			cells[c] = Cell{Column: c, Value: cell(row, c)}
		}
		f.Elements = append(f.Elements, Element{
			Kind:      ElementRow,
			Height:    m.Heights[pos],
			GlobalRow: page.GlobalRow(src),
			Source:    src,
			Position:  pos,
			Cells:     cells,
		})
	}
	if f.bottom = m.Total - m.Prefix[w.End]; f.bottom > 0 {
		f.Elements = append(f.Elements, Element{Kind: ElementSpacer, Height: f.bottom})
	}
	return f
}

// Empty reports whether the frame shows the placeholder.
func (f *Frame) Empty() bool {
	return len(f.Elements) == 1 && f.Elements[0].Kind == ElementPlaceholder
}

// Rows returns pointers to the row elements in display order.
func (f *Frame) Rows() []*Element {
	rows := make([]*Element, 0, len(f.Elements))
	for i := range f.Elements {
		if f.Elements[i].Kind == ElementRow {
			rows = append(rows, &f.Elements[i])
		}
	}
	return rows
}

// Row finds the materialized row carrying globalRow.
func (f *Frame) Row(globalRow int) (*Element, bool) {
	for i := range f.Elements {
		e := &f.Elements[i]
		if e.Kind == ElementRow && e.GlobalRow == globalRow {
			return e, true
		}
	}
	return nil, false
}

// TopSpacer returns the height of the leading spacer, 0 if none.
func (f *Frame) TopSpacer() int {
	return f.top
}

// BottomSpacer returns the height of the trailing spacer, 0 if none.
func (f *Frame) BottomSpacer() int {
	return f.bottom
}

// Covers reports whether the materialized rows span every line of the
// viewport [offset, offset+size).
func (f *Frame) Covers(offset, size int) bool {
	if f.Empty() {
		return true
	}
	end := min(offset+size, f.Total)
	return offset >= f.top && end <= f.Total-f.bottom
}
