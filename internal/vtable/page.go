package vtable

// Page is one batch of rows delivered by a data source.
type Page struct {
	Rows    [][]Value
	Columns []string

	// StartIndex is the global row number of Rows[0].
	StartIndex int
}

// Len returns the number of rows in the page.
func (p *Page) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Rows)
}

// Row returns the source row at index i, or nil when out of range.
func (p *Page) Row(i int) []Value {
	if p == nil || i < 0 || i >= len(p.Rows) {
		return nil
	}
	return p.Rows[i]
}

// GlobalRow converts a page-local index into a global row number.
func (p *Page) GlobalRow(i int) int {
	if p == nil {
		return i
	}
	return p.StartIndex + i
}

// Local converts a global row number into a page-local index.
func (p *Page) Local(globalRow int) (int, bool) {
	if p == nil {
		return 0, false
	}
	i := globalRow - p.StartIndex
	if i < 0 || i >= len(p.Rows) {
		return 0, false
	}
	return i, true
}

// sanitize returns a page safe to index: nil pages become empty pages and
// a negative start index is clamped.
func sanitize(p *Page) *Page {
	if p == nil {
		return &Page{}
	}
	out := *p
	if out.StartIndex < 0 {
		out.StartIndex = 0
	}
	return &out
}
