package vtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformPrefix(n, h int) []int {
	return ComputeMetrics(seq(n), nil, h, 1, 0).Prefix
}

func TestFirstRowAtOrAfterOffset(t *testing.T) {
	prefix := []int{0, 2, 4, 6, 8}

	assert.Equal(t, 0, FirstRowAtOrAfterOffset(prefix, -3))
	assert.Equal(t, 0, FirstRowAtOrAfterOffset(prefix, 0))
	assert.Equal(t, 0, FirstRowAtOrAfterOffset(prefix, 1))
	assert.Equal(t, 1, FirstRowAtOrAfterOffset(prefix, 2))
	assert.Equal(t, 2, FirstRowAtOrAfterOffset(prefix, 5))
	assert.Equal(t, 3, FirstRowAtOrAfterOffset(prefix, 8))
	assert.Equal(t, 3, FirstRowAtOrAfterOffset(prefix, 1000))

	assert.Equal(t, 0, FirstRowAtOrAfterOffset([]int{0}, 10))
	assert.Equal(t, 0, FirstRowAtOrAfterOffset(nil, 10))
}

func TestComputeWindow_Overscan(t *testing.T) {
	w := ComputeWindow(WindowParams{
		ScrollOffset:       100,
		ViewportSize:       20,
		Prefix:             uniformPrefix(1000, 1),
		Overscan:           5,
		EstimatedRowHeight: 1,
	})

	assert.Equal(t, 95, w.Start)
	assert.Equal(t, 126, w.End)
}

func TestComputeWindow_ClampsAtEdges(t *testing.T) {
	prefix := uniformPrefix(50, 1)

	top := ComputeWindow(WindowParams{ScrollOffset: 0, ViewportSize: 10, Prefix: prefix, Overscan: 3, EstimatedRowHeight: 1})
	assert.Equal(t, 0, top.Start)

	bottom := ComputeWindow(WindowParams{ScrollOffset: 45, ViewportSize: 10, Prefix: prefix, Overscan: 3, EstimatedRowHeight: 1})
	assert.Equal(t, 50, bottom.End)
	assert.GreaterOrEqual(t, bottom.Len(), MinWindowRows(10, 1, 3))
}

func TestComputeWindow_EmptyOrUnlaidOut(t *testing.T) {
	assert.Equal(t, Window{}, ComputeWindow(WindowParams{ViewportSize: 10, Prefix: []int{0}}))
	assert.Equal(t, Window{}, ComputeWindow(WindowParams{ViewportSize: 0, Prefix: uniformPrefix(10, 1)}))
	assert.Equal(t, Window{}, ComputeWindow(WindowParams{ViewportSize: -4, Prefix: uniformPrefix(10, 1)}))
}

func TestComputeWindow_WidensWhenEstimateIsStale(t *testing.T) {
	// Metrics were built with a stale estimate of 4 lines per row, but the
	// refreshed estimate says rows are 1 line tall.
	prefix := uniformPrefix(500, 4)
	w := ComputeWindow(WindowParams{
		ScrollOffset:       400,
		ViewportSize:       30,
		Prefix:             prefix,
		Overscan:           2,
		EstimatedRowHeight: 1,
	})

	assert.GreaterOrEqual(t, w.Len(), MinWindowRows(30, 1, 2))
	assert.Equal(t, 98, w.Start)
}

func TestComputeWindow_CoversViewport(t *testing.T) {
	overrides := map[string]int{}
	for i := 0; i < 300; i += 7 {
		overrides[RowKey(i)] = 1 + i%5
	}
	m := ComputeMetrics(seq(300), overrides, 2, 1, 0)

	for _, viewport := range []int{1, 7, 24, 80} {
		for offset := 0; offset < m.Total; offset += 13 {
			w := ComputeWindow(WindowParams{
				ScrollOffset:       offset,
				ViewportSize:       viewport,
				Prefix:             m.Prefix,
				Overscan:           2,
				EstimatedRowHeight: 2,
				MaxRows:            DefaultMaxWindowRows,
			})
			// The rendered rows must span from at or above the offset to at
			// or below the viewport bottom (or the end of content).
			assert.LessOrEqual(t, m.Prefix[w.Start], offset)
			assert.GreaterOrEqual(t, m.Prefix[w.End], min(offset+viewport, m.Total),
				"offset=%d viewport=%d window=%v", offset, viewport, w)
		}
	}
}

func TestComputeWindow_CapTrimsWidening(t *testing.T) {
	prefix := uniformPrefix(1000, 1)
	w := ComputeWindow(WindowParams{
		ScrollOffset:       0,
		ViewportSize:       100,
		Prefix:             prefix,
		Overscan:           0,
		EstimatedRowHeight: 1,
		MaxRows:            10,
	})

	// The cap never cuts into rows the prefix sums say are visible.
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 101, w.End)

	uncapped := ComputeWindow(WindowParams{
		ScrollOffset:       0,
		ViewportSize:       10,
		Prefix:             uniformPrefix(1000, 4),
		EstimatedRowHeight: 1,
		MaxRows:            0,
	})
	capped := ComputeWindow(WindowParams{
		ScrollOffset:       0,
		ViewportSize:       10,
		Prefix:             uniformPrefix(1000, 4),
		EstimatedRowHeight: 1,
		MaxRows:            5,
	})
	assert.Equal(t, 11, uncapped.Len())
	assert.Equal(t, 5, capped.Len())
}
