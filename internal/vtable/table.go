package vtable

import (
	"io"
	"log/slog"
	"slices"

	"github.com/google/uuid"
)

// Phase is the table's render state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseIdle
	PhaseRendering
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRendering:
		return "rendering"
	default:
		return "uninitialized"
	}
}

// Options configure a Table. Zero values fall back to defaults.
type Options struct {
	Kind       TableKind
	Override   Override
	Thresholds Thresholds

	Overscan      int
	BaseRowHeight int
	MinRowHeight  int
	MaxWindowRows int

	// Header is reused when it describes the same columns, so widths and
	// pins survive moving to another page of the same table.
	Header *Header

	// Restore is applied once, before the first order is computed.
	Restore *ViewState

	Listener Listener
	Logger   *slog.Logger
}

// Default tuning values.
const (
	DefaultOverscan      = 8
	DefaultBaseRowHeight = 1
	DefaultMinRowHeight  = 1
	DefaultMaxWindowRows = 400
)

// Table is the per-table virtualization state. It is owned by exactly one
// view, never shared, and discarded when a new page arrives.
type Table struct {
	id     string
	page   *Page
	header *Header
	kind   TableKind

	virtualized   bool
	overscan      int
	minRowHeight  int
	maxWindowRows int

	searchTerm string
	filter     *ColumnFilter
	sort       Sort
	rowHeights map[string]int

	order     []int
	positions []int
	metrics   Metrics

	baseRowHeight int
	measured      bool

	orderDirty   bool
	metricsDirty bool
	forced       bool

	scrollOffset int
	viewportSize int

	lastStart int
	lastEnd   int
	frame     Frame

	phase    Phase
	pending  bool
	deferred bool
	renders  int
	visible  int

	listener Listener
	logger   *slog.Logger
}

// New creates the state for one page. The virtualization decision is made
// here and is final for the table's lifetime.
func New(page *Page, opts Options) *Table {
	page = sanitize(page)

	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.Overscan < 0 {
		opts.Overscan = 0
	} else if opts.Overscan == 0 {
		opts.Overscan = DefaultOverscan
	}
	if opts.MinRowHeight < 1 {
		opts.MinRowHeight = DefaultMinRowHeight
	}
	if opts.BaseRowHeight < opts.MinRowHeight {
		opts.BaseRowHeight = max(DefaultBaseRowHeight, opts.MinRowHeight)
	}
	if opts.MaxWindowRows == 0 {
		opts.MaxWindowRows = DefaultMaxWindowRows
	}
	if opts.Listener == nil {
		opts.Listener = nopListener{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	header := opts.Header
	if header == nil || !header.SameColumns(page.Columns) {
		header = NewHeader(page.Columns)
	}
	header.Fit(page.Rows)

	t := &Table{
		id:            uuid.NewString(),
		page:          page,
		header:        header,
		kind:          opts.Kind,
		overscan:      opts.Overscan,
		minRowHeight:  opts.MinRowHeight,
		maxWindowRows: opts.MaxWindowRows,
		baseRowHeight: opts.BaseRowHeight,
		rowHeights:    make(map[string]int),
		sort:          Sort{Column: -1},
		orderDirty:    true,
		metricsDirty:  true,
		forced:        true,
		lastStart:     -1,
		lastEnd:       -1,
		visible:       -1,
		listener:      opts.Listener,
	}
	t.virtualized = ShouldVirtualize(page.Len(), len(page.Columns), opts.Kind, opts.Override, opts.Thresholds)
	t.logger = opts.Logger.With("table", t.id)

	if opts.Restore != nil {
		t.applyViewState(*opts.Restore)
	}
	t.refresh()

	t.logger.Debug("table created",
		"rows", page.Len(),
		"columns", len(page.Columns),
		"kind", opts.Kind.String(),
		"virtualized", t.virtualized)
	return t
}

// ID returns the table instance id.
func (t *Table) ID() string { return t.id }

// Page returns the page the table was built from.
func (t *Table) Page() *Page { return t.page }

// Header returns the shared column definitions.
func (t *Table) Header() *Header { return t.header }

// Kind returns the table kind.
func (t *Table) Kind() TableKind { return t.kind }

// Virtualized reports the gate decision.
func (t *Table) Virtualized() bool { return t.virtualized }

// Phase returns the render state.
func (t *Table) Phase() Phase { return t.phase }

// SearchTerm returns the live search text.
func (t *Table) SearchTerm() string { return t.searchTerm }

// Filter returns the column filter, or nil.
func (t *Table) Filter() *ColumnFilter { return t.filter }

// Sort returns the current sort.
func (t *Table) Sort() Sort { return t.sort }

// BaseRowHeight returns the current row height estimate.
func (t *Table) BaseRowHeight() int { return t.baseRowHeight }

// MinRowHeight returns the floor below which overrides are ignored.
func (t *Table) MinRowHeight() int { return t.minRowHeight }

// RenderCount returns how many times rows were materialized.
func (t *Table) RenderCount() int { return t.renders }

// ScrollOffset returns the current scroll offset in lines.
func (t *Table) ScrollOffset() int { return t.scrollOffset }

// ViewportSize returns the last viewport size in lines.
func (t *Table) ViewportSize() int { return t.viewportSize }

// Frame returns the last materialized frame.
func (t *Table) Frame() *Frame { return &t.frame }

// Order returns a copy of the visible source-row sequence.
func (t *Table) Order() []int {
	t.refresh()
	return slices.Clone(t.order)
}

// Metrics returns the cached metrics for the current order.
func (t *Table) Metrics() Metrics {
	t.refresh()
	return t.metrics
}

// VisibleCount is the number of rows surviving search and filter.
func (t *Table) VisibleCount() int {
	t.refresh()
	return len(t.order)
}

// TotalCount is the number of rows in the page.
func (t *Table) TotalCount() int { return t.page.Len() }

// RowHeight returns the explicit override for globalRow, if any.
func (t *Table) RowHeight(globalRow int) (int, bool) {
	return overrideHeight(t.rowHeights, globalRow, t.minRowHeight)
}

// SetSearchTerm changes the live search.
func (t *Table) SetSearchTerm(term string) {
	if term == t.searchTerm {
		return
	}
	t.searchTerm = term
	t.invalidateOrder()
	t.notify(ChangeSearch)
}

// SetColumnFilter replaces the column filter. Nil clears it.
func (t *Table) SetColumnFilter(f *ColumnFilter) {
	if f != nil {
		c := *f
		f = &c
	}
	if (f == nil && t.filter == nil) || (f != nil && t.filter != nil && *f == *t.filter) {
		return
	}
	t.filter = f
	t.invalidateOrder()
}

// SetSort sorts by s.
func (t *Table) SetSort(s Sort) {
	if s.Direction == SortNone {
		s = Sort{Column: -1}
	}
	if s == t.sort {
		return
	}
	t.sort = s
	t.invalidateOrder()
	t.notify(ChangeSort)
}

// CycleSort advances col through none, ascending and descending. Sorting
// a different column starts at ascending.
func (t *Table) CycleSort(col int) Sort {
	if col < 0 || col >= len(t.header.Columns) {
		return t.sort
	}
	next := Sort{Column: col, Direction: SortAscending}
	if t.sort.Column == col {
		next.Direction = t.sort.Direction.Next()
	}
	t.SetSort(next)
	return t.sort
}

// SetRowHeight sets an explicit height for globalRow. Heights below the
// minimum remove the override.
func (t *Table) SetRowHeight(globalRow, height int) {
	key := RowKey(globalRow)
	old, had := t.rowHeights[key]
	if height < t.minRowHeight {
		if !had {
			return
		}
		delete(t.rowHeights, key)
	} else {
		if had && old == height {
			return
		}
		t.rowHeights[key] = height
	}
	t.metricsDirty = true
	t.forced = true
	t.notify(ChangeRowResize)
}

// ResizeRow grows or shrinks globalRow by delta lines from its current
// height.
func (t *Table) ResizeRow(globalRow, delta int) int {
	h, ok := t.RowHeight(globalRow)
	if !ok {
		h = t.baseRowHeight
	}
	h = max(h+delta, t.minRowHeight)
	if h == t.baseRowHeight {
		t.SetRowHeight(globalRow, 0)
	} else {
		t.SetRowHeight(globalRow, h)
	}
	return h
}

// ResizeColumn changes a column width on the shared header. Materialized
// rows pick the width up at paint time, so no re-materialization happens.
func (t *Table) ResizeColumn(col, width int) int {
	if col < 0 || col >= len(t.header.Columns) {
		return 0
	}
	if t.header.Resized(col) && t.header.Width(col) == width {
		return width
	}
	w := t.header.Resize(col, width)
	t.notify(ChangeColumnResize)
	return w
}

// TogglePin pins or unpins col and re-synchronizes the current frame.
func (t *Table) TogglePin(col int) bool {
	if col < 0 || col >= len(t.header.Columns) {
		return false
	}
	pinned := t.header.TogglePin(col)
	Synchronize(&t.frame, t.header, t.rowHeights, t.minRowHeight)
	t.notify(ChangePin)
	return pinned
}

// SetViewport records the scroll surface geometry.
func (t *Table) SetViewport(scrollOffset, viewportSize int) {
	t.viewportSize = viewportSize
	t.scrollOffset = max(scrollOffset, 0)
}

// ScrollBy moves the scroll offset by delta lines, clamped to content.
func (t *Table) ScrollBy(delta int) {
	t.refresh()
	t.scrollOffset = t.clampOffset(t.scrollOffset + delta)
}

// ScrollToPosition scrolls the minimum amount that makes the row at order
// position pos fully visible. It reports whether the offset changed.
func (t *Table) ScrollToPosition(pos int) bool {
	t.refresh()
	if pos < 0 || pos >= len(t.order) {
		return false
	}
	top := t.metrics.Prefix[pos]
	bottom := t.metrics.Prefix[pos+1]
	offset := t.scrollOffset
	switch {
	case top < offset:
		offset = top
	case t.viewportSize > 0 && bottom > offset+t.viewportSize:
		offset = bottom - t.viewportSize
	}
	offset = t.clampOffset(offset)
	if offset == t.scrollOffset {
		return false
	}
	t.scrollOffset = offset
	return true
}

func (t *Table) clampOffset(offset int) int {
	limit := t.metrics.Total - t.viewportSize
	if offset > limit {
		offset = limit
	}
	return max(offset, 0)
}

// PositionOf returns the order position of globalRow, or false when the
// row is filtered out or not on this page.
func (t *Table) PositionOf(globalRow int) (int, bool) {
	t.refresh()
	src, ok := t.page.Local(globalRow)
	if !ok || t.positions[src] < 0 {
		return 0, false
	}
	return t.positions[src], true
}

// GlobalAt returns the global row number at order position pos.
func (t *Table) GlobalAt(pos int) (int, bool) {
	t.refresh()
	if pos < 0 || pos >= len(t.order) {
		return 0, false
	}
	return t.page.GlobalRow(t.order[pos]), true
}

// RowByGlobal resolves a global row number back to its page row. Row
// actions (copy, preview, navigation) go through here.
func (t *Table) RowByGlobal(globalRow int) ([]Value, bool) {
	src, ok := t.page.Local(globalRow)
	if !ok {
		return nil, false
	}
	return t.page.Rows[src], true
}

// VisibleRows returns the rows in their current visible order.
func (t *Table) VisibleRows() [][]Value {
	t.refresh()
	rows := make([][]Value, len(t.order))
	for i, src := range t.order {
		rows[i] = t.page.Rows[src]
	}
	return rows
}

// RequestFrame marks a render as wanted. It returns true only when the
// caller must schedule a frame; further requests before that frame runs
// collapse into it.
func (t *Table) RequestFrame() bool {
	if t.pending {
		return false
	}
	t.pending = true
	if t.phase == PhaseRendering {
		t.deferred = true
		return false
	}
	return true
}

// FramePending reports whether a scheduled frame has not run yet.
func (t *Table) FramePending() bool { return t.pending }

// RunFrame executes a scheduled frame. It returns whether rows were
// materialized and whether another frame must be scheduled because a
// request arrived mid-render.
func (t *Table) RunFrame() (rendered, again bool) {
	t.pending = false
	rendered = t.Render(false)
	if t.deferred {
		t.deferred = false
		t.pending = true
		again = true
	}
	return rendered, again
}

// Render runs the pipeline: order, metrics, window, materialize,
// synchronize. Unless force is set or state changed, an unchanged window
// does no work. It returns whether rows were materialized.
func (t *Table) Render(force bool) bool {
	if t.phase == PhaseRendering {
		t.deferred = true
		t.pending = true
		return false
	}
	t.phase = PhaseRendering
	defer func() { t.phase = PhaseIdle }()

	t.refresh()
	t.scrollOffset = t.clampOffset(t.scrollOffset)

	var w Window
	if t.virtualized {
		if t.viewportSize <= 0 {
			return false
		}
		w = ComputeWindow(WindowParams{
			ScrollOffset:       t.scrollOffset,
			ViewportSize:       t.viewportSize,
			Prefix:             t.metrics.Prefix,
			Overscan:           t.overscan,
			EstimatedRowHeight: t.baseRowHeight,
			MaxRows:            t.maxWindowRows,
		})
	} else {
		w = Window{Start: 0, End: len(t.order)}
	}

	if !force && !t.forced && w.Start == t.lastStart && w.End == t.lastEnd {
		t.frame.Offset = t.scrollOffset
		return false
	}

	t.frame = Materialize(t.page, t.order, w, t.metrics)
	Synchronize(&t.frame, t.header, t.rowHeights, t.minRowHeight)
	t.frame.Offset = t.scrollOffset
	t.lastStart, t.lastEnd = w.Start, w.End
	t.forced = false
	t.renders++

	t.logger.Debug("rows materialized",
		"start", w.Start,
		"end", w.End,
		"visible", len(t.order),
		"offset", t.scrollOffset)
	return true
}

// ObserveRowHeights refines the base row height from the painted heights
// of rows without an override. Only the first observation counts. It
// reports whether the estimate changed, in which case the caller should
// request a frame.
func (t *Table) ObserveRowHeights(heights []int) bool {
	if t.measured || len(heights) == 0 {
		return false
	}
	t.measured = true

	sum := 0
	for _, h := range heights {
		sum += h
	}
	avg := max((sum+len(heights)/2)/len(heights), t.minRowHeight)
	if avg == t.baseRowHeight {
		return false
	}
	t.logger.Debug("row height estimate refined", "from", t.baseRowHeight, "to", avg)
	t.baseRowHeight = avg
	t.metricsDirty = true
	t.forced = true
	return true
}

// Measured reports whether the base row height has been refined.
func (t *Table) Measured() bool { return t.measured }

func (t *Table) invalidateOrder() {
	t.orderDirty = true
	t.metricsDirty = true
	t.forced = true
	t.lastStart, t.lastEnd = -1, -1
}

// refresh recomputes order and metrics when stale.
func (t *Table) refresh() {
	if t.orderDirty {
		t.order = ComputeOrder(t.page.Rows, t.searchTerm, t.filter, t.sort)
		t.positions = make([]int, t.page.Len())
		for i := range t.positions {
			t.positions[i] = -1
		}
		for pos, src := range t.order {
			t.positions[src] = pos
		}
		t.orderDirty = false
		t.metricsDirty = true
		if len(t.order) != t.visible {
			t.visible = len(t.order)
			t.listener.VisibleCountChanged(t.visible, t.page.Len())
		}
	}
	if t.metricsDirty {
		t.metrics = ComputeMetrics(t.order, t.rowHeights, t.baseRowHeight, t.minRowHeight, t.page.StartIndex)
		t.metricsDirty = false
		t.forced = true
	}
}

func (t *Table) notify(kind ChangeKind) {
	t.listener.ViewStateChanged(ViewStateChange{Kind: kind, State: t.ViewState()})
}
