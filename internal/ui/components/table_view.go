package components

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazydb/internal/export"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// chromeLines is the header, separator and status line.
const chromeLines = 3

const (
	defaultFrameInterval = 16 * time.Millisecond
	defaultMaxRowLines   = 8
	columnStep           = 2
	wheelStep            = 3
)

// FrameMsg runs the pending frame of the table with TableID.
type FrameMsg struct {
	TableID string
}

// ViewStateMsg carries a persisted-state change out of a table view.
type ViewStateMsg struct {
	Key    string
	Change vtable.ViewStateChange
}

// CopiedMsg reports a clipboard copy.
type CopiedMsg struct {
	What string
	Err  error
}

// ExportedMsg reports an export of the visible rows.
type ExportedMsg struct {
	Path string
	Rows int
	Err  error
}

// PreviewMsg asks the host to show a cell in full.
type PreviewMsg struct {
	Title   string
	Content string
}

// TableViewOptions configures a TableView.
type TableViewOptions struct {
	// Key identifies the logical table for view state persistence.
	Key   string
	Title string

	Table         vtable.Options
	FrameInterval time.Duration
	MaxRowLines   int
	ExportDir     string
	ExportFormat  export.Format
}

// TableView paints a vtable.Table and turns key presses into table
// operations. Rendering is frame-based: input marks the table dirty and at
// most one FrameMsg is in flight per table.
type TableView struct {
	Theme    theme.Theme
	Keys     TableKeyMap
	Width    int
	Height   int
	PageInfo string

	key   string
	title string
	table *vtable.Table

	frameInterval time.Duration
	maxRowLines   int
	exportDir     string
	exportFormat  export.Format

	cursor       int
	colCursor    int
	colOffset    int
	filterColumn int

	visible int
	total   int
	changes []vtable.ViewStateChange

	search *SearchInput
	status string
}

// NewTableView creates a view owning a fresh table for page.
func NewTableView(th theme.Theme, page *vtable.Page, opts TableViewOptions) *TableView {
	tv := &TableView{
		Theme:         th,
		Keys:          DefaultTableKeys(),
		key:           opts.Key,
		title:         opts.Title,
		frameInterval: opts.FrameInterval,
		maxRowLines:   opts.MaxRowLines,
		exportDir:     opts.ExportDir,
		exportFormat:  opts.ExportFormat,
		search:        NewSearchInput(th),
	}
	if tv.frameInterval <= 0 {
		tv.frameInterval = defaultFrameInterval
	}
	if tv.maxRowLines <= 0 {
		tv.maxRowLines = defaultMaxRowLines
	}
	if tv.exportFormat == "" {
		tv.exportFormat = export.FormatCSV
	}

	tableOpts := opts.Table
	tableOpts.Listener = tv
	tv.table = vtable.New(page, tableOpts)
	tv.changes = nil
	return tv
}

// Table returns the underlying table state.
func (tv *TableView) Table() *vtable.Table { return tv.table }

// Key returns the logical table identity.
func (tv *TableView) Key() string { return tv.key }

// Title returns the display title.
func (tv *TableView) Title() string { return tv.title }

// Cursor returns the order position of the selected row.
func (tv *TableView) Cursor() int { return tv.cursor }

// CurrentColumn returns the selected column index, or -1.
func (tv *TableView) CurrentColumn() int {
	order := tv.table.Header().DisplayOrder()
	if len(order) == 0 {
		return -1
	}
	tv.colCursor = min(max(tv.colCursor, 0), len(order)-1)
	return order[tv.colCursor]
}

// Searching reports whether the search input has focus.
func (tv *TableView) Searching() bool { return tv.search.Visible }

// VisibleCountChanged implements vtable.Listener.
func (tv *TableView) VisibleCountChanged(visible, total int) {
	tv.visible, tv.total = visible, total
	tv.cursor = min(tv.cursor, max(visible-1, 0))
}

// ViewStateChanged implements vtable.Listener.
func (tv *TableView) ViewStateChanged(change vtable.ViewStateChange) {
	tv.changes = append(tv.changes, change)
}

// Init schedules the first frame.
func (tv *TableView) Init() tea.Cmd {
	return tv.requestFrame()
}

// SetSize sets the outer size of the view.
func (tv *TableView) SetSize(width, height int) tea.Cmd {
	tv.Width, tv.Height = width, height
	tv.search.Width = width
	tv.ensureColumnVisible()
	return tv.relayout()
}

func (tv *TableView) bodyHeight() int {
	h := tv.Height - chromeLines
	if tv.search.Visible {
		h--
	}
	return max(h, 0)
}

func (tv *TableView) relayout() tea.Cmd {
	tv.table.SetViewport(tv.table.ScrollOffset(), tv.bodyHeight())
	tv.table.ScrollToPosition(tv.cursor)
	return tv.requestFrame()
}

func (tv *TableView) requestFrame() tea.Cmd {
	if !tv.table.RequestFrame() {
		return nil
	}
	return tv.tick()
}

func (tv *TableView) tick() tea.Cmd {
	id := tv.table.ID()
	return tea.Tick(tv.frameInterval, func(time.Time) tea.Msg {
		return FrameMsg{TableID: id}
	})
}

// runFrame renders the pending frame and, after the first rows are on
// screen, refines the row height estimate from what was painted.
func (tv *TableView) runFrame() tea.Cmd {
	rendered, again := tv.table.RunFrame()
	if rendered && !tv.table.Measured() && tv.table.ObserveRowHeights(tv.naturalHeights()) {
		tv.table.ScrollToPosition(tv.cursor)
		if tv.table.RequestFrame() {
			again = true
		}
	}
	if again {
		return tv.tick()
	}
	return nil
}

// naturalHeights returns the line count each materialized row without an
// explicit height would need.
func (tv *TableView) naturalHeights() []int {
	f := tv.table.Frame()
	var heights []int
	for _, r := range f.Rows() {
		if _, ok := tv.table.RowHeight(r.GlobalRow); ok {
			continue
		}
		h := 1
		for _, c := range r.Cells {
			h = max(h, strings.Count(vtable.DisplayText(c.Value), "\n")+1)
		}
		heights = append(heights, min(h, tv.maxRowLines))
	}
	return heights
}

func (tv *TableView) drainChanges() tea.Cmd {
	if len(tv.changes) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(tv.changes))
	for _, c := range tv.changes {
		key := tv.key
		cmds = append(cmds, func() tea.Msg {
			return ViewStateMsg{Key: key, Change: c}
		})
	}
	tv.changes = nil
	return tea.Batch(cmds...)
}

// Update handles messages
func (tv *TableView) Update(msg tea.Msg) (*TableView, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case FrameMsg:
		if msg.TableID == tv.table.ID() {
			cmds = append(cmds, tv.runFrame())
		}

	case SearchInputMsg:
		tv.search.Close()
		cmds = append(cmds, tv.relayout())

	case CloseSearchMsg:
		tv.applySearch(msg.Mode, tv.search.Previous())
		tv.search.Close()
		cmds = append(cmds, tv.relayout())

	case CopiedMsg:
		if msg.Err != nil {
			tv.status = "Copy failed: " + msg.Err.Error()
		} else {
			tv.status = "Copied " + msg.What
		}

	case ExportedMsg:
		if msg.Err != nil {
			tv.status = "Export failed: " + msg.Err.Error()
		} else {
			tv.status = fmt.Sprintf("Exported %d rows to %s", msg.Rows, msg.Path)
		}

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			tv.table.ScrollBy(-wheelStep)
			cmds = append(cmds, tv.requestFrame())
		case tea.MouseButtonWheelDown:
			tv.table.ScrollBy(wheelStep)
			cmds = append(cmds, tv.requestFrame())
		}

	case tea.KeyMsg:
		if tv.search.Visible {
			var cmd tea.Cmd
			tv.search, cmd = tv.search.Update(msg)
			tv.applySearch(tv.search.Mode, tv.search.Value())
			cmds = append(cmds, cmd, tv.requestFrame())
		} else {
			tv.status = ""
			cmds = append(cmds, tv.handleKey(msg))
		}

	default:
		if tv.search.Visible {
			var cmd tea.Cmd
			tv.search, cmd = tv.search.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tv.drainChanges())
	return tv, tea.Batch(cmds...)
}

func (tv *TableView) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := tv.Keys
	switch {
	case key.Matches(msg, k.Up):
		return tv.moveCursorTo(tv.cursor - 1)
	case key.Matches(msg, k.Down):
		return tv.moveCursorTo(tv.cursor + 1)
	case key.Matches(msg, k.PageUp):
		return tv.moveCursorTo(tv.cursor - tv.pageRows())
	case key.Matches(msg, k.PageDown):
		return tv.moveCursorTo(tv.cursor + tv.pageRows())
	case key.Matches(msg, k.Home):
		return tv.moveCursorTo(0)
	case key.Matches(msg, k.End):
		return tv.moveCursorTo(tv.visible - 1)
	case key.Matches(msg, k.Left):
		tv.moveColumn(-1)
	case key.Matches(msg, k.Right):
		tv.moveColumn(1)
	case key.Matches(msg, k.Search):
		return tv.openSearch(SearchModeRows)
	case key.Matches(msg, k.Filter):
		return tv.openSearch(SearchModeColumn)
	case key.Matches(msg, k.Clear):
		tv.preserveCursor(func() {
			tv.table.SetSearchTerm("")
			tv.table.SetColumnFilter(nil)
		})
		return tv.requestFrame()
	case key.Matches(msg, k.Sort):
		col := tv.CurrentColumn()
		tv.preserveCursor(func() { tv.table.CycleSort(col) })
		return tv.requestFrame()
	case key.Matches(msg, k.Pin):
		col := tv.CurrentColumn()
		tv.table.TogglePin(col)
		tv.followColumn(col)
	case key.Matches(msg, k.Widen):
		col := tv.CurrentColumn()
		tv.table.ResizeColumn(col, tv.table.Header().Width(col)+columnStep)
		tv.ensureColumnVisible()
	case key.Matches(msg, k.Narrow):
		col := tv.CurrentColumn()
		tv.table.ResizeColumn(col, tv.table.Header().Width(col)-columnStep)
		tv.ensureColumnVisible()
	case key.Matches(msg, k.Taller):
		return tv.resizeRow(1)
	case key.Matches(msg, k.Shorter):
		return tv.resizeRow(-1)
	case key.Matches(msg, k.YankCell):
		return tv.copyCell()
	case key.Matches(msg, k.YankRow):
		return tv.copyRow()
	case key.Matches(msg, k.Preview):
		return tv.preview()
	case key.Matches(msg, k.Export):
		return tv.exportRows()
	case key.Matches(msg, k.NextFormat):
		tv.exportFormat = nextFormat(tv.exportFormat)
		tv.status = "Export format: " + strings.ToUpper(string(tv.exportFormat))
	}
	return nil
}

func nextFormat(f export.Format) export.Format {
	for i, candidate := range export.Formats {
		if candidate == f {
			return export.Formats[(i+1)%len(export.Formats)]
		}
	}
	return export.Formats[0]
}

func (tv *TableView) pageRows() int {
	return max(tv.bodyHeight()/max(tv.table.BaseRowHeight(), 1), 1)
}

func (tv *TableView) moveCursorTo(pos int) tea.Cmd {
	if tv.visible == 0 {
		return nil
	}
	tv.cursor = min(max(pos, 0), tv.visible-1)
	tv.table.ScrollToPosition(tv.cursor)
	return tv.requestFrame()
}

// preserveCursor keeps the selected row selected across a reorder when it
// is still visible afterwards.
func (tv *TableView) preserveCursor(fn func()) {
	global, ok := tv.table.GlobalAt(tv.cursor)
	fn()
	if ok {
		if pos, found := tv.table.PositionOf(global); found {
			tv.cursor = pos
		}
	}
	tv.cursor = min(tv.cursor, max(tv.table.VisibleCount()-1, 0))
	tv.table.ScrollToPosition(tv.cursor)
}

func (tv *TableView) applySearch(mode SearchMode, value string) {
	tv.preserveCursor(func() {
		if mode == SearchModeRows {
			tv.table.SetSearchTerm(value)
			return
		}
		if value == "" {
			tv.table.SetColumnFilter(nil)
			return
		}
		tv.table.SetColumnFilter(&vtable.ColumnFilter{Column: tv.filterColumn, Value: value})
	})
}

func (tv *TableView) openSearch(mode SearchMode) tea.Cmd {
	current := tv.table.SearchTerm()
	column := ""
	if mode == SearchModeColumn {
		col := tv.CurrentColumn()
		if col < 0 {
			return nil
		}
		tv.filterColumn = col
		column = tv.table.Header().Columns[col]
		current = ""
		if f := tv.table.Filter(); f != nil && f.Column == col {
			current = f.Value
		}
	}
	return tea.Batch(tv.search.Open(mode, column, current), tv.relayout())
}

func (tv *TableView) resizeRow(delta int) tea.Cmd {
	global, ok := tv.table.GlobalAt(tv.cursor)
	if !ok {
		return nil
	}
	h := tv.table.ResizeRow(global, delta)
	tv.table.ScrollToPosition(tv.cursor)
	tv.status = fmt.Sprintf("Row height %d", h)
	return tv.requestFrame()
}

func (tv *TableView) moveColumn(delta int) {
	n := len(tv.table.Header().Columns)
	if n == 0 {
		return
	}
	tv.colCursor = min(max(tv.colCursor+delta, 0), n-1)
	tv.ensureColumnVisible()
}

// followColumn keeps col selected after the display order changed.
func (tv *TableView) followColumn(col int) {
	for i, c := range tv.table.Header().DisplayOrder() {
		if c == col {
			tv.colCursor = i
			break
		}
	}
	tv.ensureColumnVisible()
}

// colSlot is one painted column.
type colSlot struct {
	col    int
	width  int
	pinned bool
}

// visibleColumns lays out pinned columns first, then unpinned columns
// starting at the horizontal offset, as many as fit.
func (tv *TableView) visibleColumns() []colSlot {
	h := tv.table.Header()
	pinned := h.PinnedColumns()
	order := h.DisplayOrder()

	avail := tv.Width - 2
	var slots []colSlot
	used := 0
	add := func(col int, isPinned bool) bool {
		w := h.Width(col)
		sep := 0
		if len(slots) > 0 {
			sep = 3
		}
		if used+sep+w > avail {
			// The first column of each block is truncated rather than dropped.
			first := len(slots) == 0 || (!isPinned && !hasUnpinned(slots))
			if !first || avail-used-sep < 1 {
				return false
			}
			w = avail - used - sep
		}
		slots = append(slots, colSlot{col: col, width: w, pinned: isPinned})
		used += sep + w
		return true
	}

	for _, col := range pinned {
		if !add(col, true) {
			break
		}
	}
	for i := len(pinned) + tv.colOffset; i < len(order); i++ {
		if !add(order[i], false) {
			break
		}
	}
	return slots
}

func hasUnpinned(slots []colSlot) bool {
	for _, s := range slots {
		if !s.pinned {
			return true
		}
	}
	return false
}

func (tv *TableView) ensureColumnVisible() {
	pinnedCount := len(tv.table.Header().PinnedColumns())
	total := len(tv.table.Header().Columns)
	tv.colOffset = min(max(tv.colOffset, 0), max(total-pinnedCount-1, 0))

	if tv.colCursor < pinnedCount || tv.Width <= 0 {
		return
	}
	if rel := tv.colCursor - pinnedCount; rel < tv.colOffset {
		tv.colOffset = rel
		return
	}
	order := tv.table.Header().DisplayOrder()
	target := order[tv.colCursor]
	for tv.colOffset < tv.colCursor-pinnedCount {
		shown := false
		for _, s := range tv.visibleColumns() {
			if s.col == target && s.width == tv.table.Header().Width(target) {
				shown = true
				break
			}
		}
		if shown {
			return
		}
		tv.colOffset++
	}
}

func cellAt(row []vtable.Value, col int) vtable.Value {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}

func (tv *TableView) currentCell() (vtable.Value, string, bool) {
	global, ok := tv.table.GlobalAt(tv.cursor)
	if !ok {
		return nil, "", false
	}
	row, ok := tv.table.RowByGlobal(global)
	col := tv.CurrentColumn()
	if !ok || col < 0 {
		return nil, "", false
	}
	return cellAt(row, col), tv.table.Header().Columns[col], true
}

func (tv *TableView) copyCell() tea.Cmd {
	v, _, ok := tv.currentCell()
	if !ok {
		return nil
	}
	text := vtable.Stringify(v)
	return func() tea.Msg {
		return CopiedMsg{What: "cell", Err: writeClipboard(text)}
	}
}

func (tv *TableView) copyRow() tea.Cmd {
	global, ok := tv.table.GlobalAt(tv.cursor)
	if !ok {
		return nil
	}
	row, _ := tv.table.RowByGlobal(global)
	parts := make([]string, len(tv.table.Header().Columns))
	for i := range parts {
		parts[i] = vtable.Stringify(cellAt(row, i))
	}
	text := strings.Join(parts, "\t")
	return func() tea.Msg {
		return CopiedMsg{What: "row", Err: writeClipboard(text)}
	}
}

func (tv *TableView) preview() tea.Cmd {
	v, column, ok := tv.currentCell()
	if !ok {
		return nil
	}
	content := vtable.DisplayText(v)
	return func() tea.Msg {
		return PreviewMsg{Title: column, Content: content}
	}
}

func (tv *TableView) exportRows() tea.Cmd {
	rows := tv.table.VisibleRows()
	columns := tv.table.Header().Columns
	name := tv.title
	if name == "" {
		name = "result"
	}
	path := filepath.Join(tv.exportDir, export.DefaultFileName(name, tv.exportFormat, time.Now()))
	return func() tea.Msg {
		err := export.ToFile(path, columns, rows)
		return ExportedMsg{Path: path, Rows: len(rows), Err: err}
	}
}

// StatusLine returns the plain status text.
func (tv *TableView) StatusLine() string {
	parts := []string{fmt.Sprintf("Showing %d of %d rows", tv.visible, tv.total)}

	h := tv.table.Header()
	if s := tv.table.Sort(); s.Active() && s.Column < len(h.Columns) {
		parts = append(parts, "sort "+h.Columns[s.Column]+" "+s.Direction.String())
	}
	if f := tv.table.Filter(); f != nil && f.Column >= 0 && f.Column < len(h.Columns) {
		parts = append(parts, fmt.Sprintf("filter %s~%q", h.Columns[f.Column], f.Value))
	}
	if term := tv.table.SearchTerm(); term != "" {
		parts = append(parts, fmt.Sprintf("search %q", term))
	}
	if tv.PageInfo != "" {
		parts = append(parts, tv.PageInfo)
	}
	if tv.status != "" {
		parts = append(parts, tv.status)
	}
	return strings.Join(parts, " │ ")
}

// View renders the table
func (tv *TableView) View() string {
	if tv.Width <= 0 || tv.Height <= 0 {
		return ""
	}

	slots := tv.visibleColumns()
	lines := make([]string, 0, tv.Height)
	lines = append(lines, tv.renderHeader(slots), tv.renderSeparator(slots))
	lines = append(lines, tv.renderBody(slots)...)
	if tv.search.Visible {
		lines = append(lines, tv.search.View())
	}
	lines = append(lines, tv.renderStatus())

	return lipgloss.NewStyle().MaxWidth(tv.Width).Render(strings.Join(lines, "\n"))
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func joiner(prev, next colSlot, plain, boundary string) string {
	if prev.pinned && !next.pinned {
		return boundary
	}
	return plain
}

func (tv *TableView) renderHeader(slots []colSlot) string {
	h := tv.table.Header()
	s := tv.table.Sort()

	base := lipgloss.NewStyle().Bold(true).Foreground(tv.Theme.TableHeader)
	pinned := base.Foreground(tv.Theme.PinnedColumn)
	indicator := lipgloss.NewStyle().Bold(true).Foreground(tv.Theme.SortIndicator)

	var b strings.Builder
	b.WriteString(" ")
	for i, slot := range slots {
		if i > 0 {
			b.WriteString(joiner(slots[i-1], slot, " │ ", " ┃ "))
		}
		title := h.Columns[slot.col]
		suffix := ""
		if s.Active() && s.Column == slot.col {
			suffix = " ▲"
			if s.Direction == vtable.SortDescending {
				suffix = " ▼"
			}
		}
		titleWidth := slot.width - runewidth.StringWidth(suffix)
		if titleWidth <= 0 {
			b.WriteString(base.Render(fit(title, slot.width)))
			continue
		}
		style := base
		if slot.pinned {
			style = pinned
		}
		b.WriteString(style.Render(fit(title, titleWidth)))
		if suffix != "" {
			b.WriteString(indicator.Render(suffix))
		}
	}
	return b.String()
}

func (tv *TableView) renderSeparator(slots []colSlot) string {
	var b strings.Builder
	b.WriteString("─")
	for i, slot := range slots {
		if i > 0 {
			b.WriteString(joiner(slots[i-1], slot, "─┼─", "─╂─"))
		}
		b.WriteString(strings.Repeat("─", slot.width))
	}
	b.WriteString("─")
	return lipgloss.NewStyle().Foreground(tv.Theme.Border).Render(b.String())
}

// renderBody paints the lines of the frame that fall inside the viewport.
// Spacers only advance the line counter, so the frame lines up with the
// scroll offset whether or not the table is virtualized. Until a jump's
// frame arrives the previous frame is painted at the offset it was built
// for.
func (tv *TableView) renderBody(slots []colSlot) []string {
	vp := tv.bodyHeight()
	lines := make([]string, 0, vp)
	f := tv.table.Frame()

	if f.Empty() {
		msg := lipgloss.NewStyle().Foreground(tv.Theme.Metadata).Italic(true).
			Render(vtable.PlaceholderText)
		lines = append(lines, lipgloss.PlaceHorizontal(tv.Width, lipgloss.Center, msg))
	} else {
		top := tv.table.ScrollOffset()
		if !f.Covers(top, vp) {
			top = f.Offset
		}
		bottom := top + vp
		y := 0
		for i := range f.Elements {
			e := &f.Elements[i]
			if y >= bottom {
				break
			}
			if e.Kind == vtable.ElementRow {
				for l := 0; l < e.Height; l++ {
					if y+l >= top && y+l < bottom {
						lines = append(lines, tv.renderRowLine(e, l, slots))
					}
				}
			}
			y += e.Height
		}
	}

	for len(lines) < vp {
		lines = append(lines, "")
	}
	return lines[:vp]
}

func (tv *TableView) renderRowLine(e *vtable.Element, line int, slots []colSlot) string {
	selected := e.Position == tv.cursor
	currentCol := tv.CurrentColumn()

	rowStyle := lipgloss.NewStyle().Foreground(tv.Theme.Foreground)
	switch {
	case selected:
		rowStyle = rowStyle.Background(tv.Theme.TableRowSelected).Bold(true)
	case e.Position%2 == 1:
		rowStyle = rowStyle.Background(tv.Theme.TableRowOdd)
	}
	sepStyle := rowStyle.Foreground(tv.Theme.Border)

	var b strings.Builder
	b.WriteString(rowStyle.Render(" "))
	for i, slot := range slots {
		if i > 0 {
			b.WriteString(sepStyle.Render(joiner(slots[i-1], slot, " │ ", " ┃ ")))
		}

		var c vtable.Cell
		if slot.col < len(e.Cells) {
			c = e.Cells[slot.col]
		}
		text := ""
		if cellLines := strings.Split(vtable.DisplayText(c.Value), "\n"); line < len(cellLines) {
			text = cellLines[line]
		}

		style := tv.cellStyle(rowStyle, c)
		if selected && slot.col == currentCol {
			style = style.Background(tv.Theme.TableCellCursor)
		}
		b.WriteString(style.Render(fit(text, slot.width)))
	}
	return b.String()
}

// cellStyle styles one materialized cell on top of its row style.
func (tv *TableView) cellStyle(row lipgloss.Style, c vtable.Cell) lipgloss.Style {
	style := row
	if c.Pinned {
		style = style.Foreground(tv.Theme.PinnedColumn)
	}
	switch c.Value.(type) {
	case nil:
		style = style.Foreground(tv.Theme.Null).Italic(true)
	case []byte:
		style = style.Foreground(tv.Theme.Blob)
	}
	return style
}

func (tv *TableView) renderStatus() string {
	text := " " + tv.StatusLine()
	if tv.table.Virtualized() {
		text += " │ virtual"
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Render(runewidth.Truncate(text, tv.Width, "…"))
}
