package vtable

import "sort"

// Window is the half-open range [Start, End) of order positions to
// materialize.
type Window struct {
	Start int
	End   int
}

// Len is the number of rows in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Contains reports whether order position pos is inside the window.
func (w Window) Contains(pos int) bool {
	return pos >= w.Start && pos < w.End
}

// FirstRowAtOrAfterOffset returns the largest k with prefix[k] <= offset,
// clamped to [0, n-1] where n = len(prefix)-1.
func FirstRowAtOrAfterOffset(prefix []int, offset int) int {
	n := len(prefix) - 1
	if n <= 0 {
		return 0
	}
	k := sort.Search(len(prefix), func(i int) bool {
		return prefix[i] > offset
	}) - 1
	if k < 0 {
		return 0
	}
	if k > n-1 {
		return n - 1
	}
	return k
}

// WindowParams are the inputs to ComputeWindow.
type WindowParams struct {
	ScrollOffset int
	ViewportSize int
	Prefix       []int
	Overscan     int

	// EstimatedRowHeight is the base estimate used to guarantee a minimum
	// row count when the metrics are stale.
	EstimatedRowHeight int

	// MaxRows caps the widened window. It never cuts into the rows the
	// prefix sums say are visible. Zero or less disables the cap.
	MaxRows int
}

// MinWindowRows is the fewest rows a window over viewportSize may hold.
func MinWindowRows(viewportSize, estimatedRowHeight, overscan int) int {
	if estimatedRowHeight < 1 {
		estimatedRowHeight = 1
	}
	if overscan < 0 {
		overscan = 0
	}
	return (viewportSize+estimatedRowHeight-1)/estimatedRowHeight + 2*overscan + 1
}

// ComputeWindow picks the rows to materialize for a scroll position.
func ComputeWindow(p WindowParams) Window {
	n := len(p.Prefix) - 1
	if n <= 0 || p.ViewportSize <= 0 {
		return Window{}
	}
	overscan := max(p.Overscan, 0)
	offset := max(p.ScrollOffset, 0)

	first := FirstRowAtOrAfterOffset(p.Prefix, offset)
	last := FirstRowAtOrAfterOffset(p.Prefix, offset+p.ViewportSize)

	exactStart := max(0, first-overscan)
	exactEnd := min(n, last+1+overscan)
	start, end := exactStart, exactEnd

	minRows := MinWindowRows(p.ViewportSize, p.EstimatedRowHeight, overscan)
	if end-start < minRows {
		end = min(n, start+minRows)
		if end-start < minRows {
			start = max(0, end-minRows)
		}
	}

	if p.MaxRows > 0 {
		limit := max(p.MaxRows, exactEnd-exactStart)
		if end-start > limit {
			start = exactStart
			end = min(n, max(exactEnd, start+limit))
		}
	}

	return Window{Start: start, End: end}
}
