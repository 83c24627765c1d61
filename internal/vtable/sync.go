package vtable

// Synchronize re-applies per-table visual state to a freshly materialized
// frame. Pinned membership comes from the header; widths stay on the
// header and are read at paint time; explicit row height overrides are
// copied onto their row so the painted size matches the metrics exactly.
func Synchronize(f *Frame, h *Header, rowHeights map[string]int, minRowHeight int) {
	if minRowHeight < 1 {
		minRowHeight = 1
	}
	for _, row := range f.Rows() {
		if h != nil {
			for i := range row.Cells {
				row.Cells[i].Pinned = h.Pinned(row.Cells[i].Column)
			}
		}
		if o, ok := overrideHeight(rowHeights, row.GlobalRow, minRowHeight); ok {
			row.Height = o
		}
	}
}
