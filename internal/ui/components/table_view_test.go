package components

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazydb/internal/export"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

func testPage(n int) *vtable.Page {
	rows := make([][]vtable.Value, n)
	for i := range rows {
		rows[i] = []vtable.Value{int64(i), fmt.Sprintf("row-%d", i), nil}
	}
	return &vtable.Page{Columns: []string{"id", "name", "note"}, Rows: rows}
}

func newTestView(t *testing.T, page *vtable.Page, opts TableViewOptions) *TableView {
	t.Helper()
	if opts.FrameInterval == 0 {
		opts.FrameInterval = time.Millisecond
	}
	tv := NewTableView(theme.DefaultTheme(), page, opts)
	tv.SetSize(80, 23)
	settle(tv)
	return tv
}

// settle delivers frames until none is pending.
func settle(tv *TableView) {
	for i := 0; i < 10 && tv.Table().FramePending(); i++ {
		tv.Update(FrameMsg{TableID: tv.Table().ID()})
	}
}

func press(tv *TableView, keys string) tea.Cmd {
	_, cmd := tv.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return cmd
}

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func plainView(tv *TableView) string {
	return ansi.Strip(tv.View())
}

func TestTableView_VirtualizedPaintsWindowOnly(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})

	require.True(t, tv.Table().Virtualized())
	view := plainView(tv)
	assert.Contains(t, view, "row-0")
	assert.Contains(t, view, "row-19")
	assert.NotContains(t, view, "row-20 ")
	assert.Contains(t, view, "Showing 1000 of 1000 rows")
	assert.LessOrEqual(t, len(tv.Table().Frame().Rows()), vtable.DefaultMaxWindowRows)
}

func TestTableView_ViewFitsSize(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})

	lines := strings.Split(tv.View(), "\n")
	assert.Len(t, lines, 23)
	for _, line := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(line), 80)
	}
}

func bodyRowLines(tv *TableView) int {
	n := 0
	for _, line := range strings.Split(plainView(tv), "\n") {
		if strings.Contains(line, "row-") {
			n++
		}
	}
	return n
}

func TestTableView_JumpPaintsPreviousFrameUntilTick(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})

	press(tv, "G")
	require.True(t, tv.Table().FramePending())
	assert.Equal(t, 20, bodyRowLines(tv), "no blank body between the jump and its frame")
	assert.Contains(t, plainView(tv), "row-0")

	settle(tv)
	assert.Equal(t, 20, bodyRowLines(tv))
	assert.Contains(t, plainView(tv), "row-999")
	assert.NotContains(t, plainView(tv), "row-0 ")
}

func TestTableView_StaleFrameIgnored(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})
	before := tv.Table().RenderCount()

	tv.Table().ScrollBy(100)
	tv.Update(FrameMsg{TableID: "some-other-table"})
	assert.Equal(t, before, tv.Table().RenderCount())
}

func TestTableView_SetSizeSchedulesSingleFrame(t *testing.T) {
	tv := NewTableView(theme.DefaultTheme(), testPage(1000), TableViewOptions{})

	assert.NotNil(t, tv.SetSize(80, 23))
	assert.Nil(t, tv.SetSize(100, 30), "a second request collapses into the pending frame")
	settle(tv)
	assert.Equal(t, 1, tv.Table().RenderCount())
}

func TestTableView_CursorNavigation(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})

	press(tv, "G")
	settle(tv)
	assert.Equal(t, 999, tv.Cursor())
	assert.Contains(t, plainView(tv), "row-999")

	press(tv, "g")
	settle(tv)
	assert.Equal(t, 0, tv.Cursor())

	press(tv, "j")
	press(tv, "j")
	assert.Equal(t, 2, tv.Cursor())

	press(tv, "k")
	press(tv, "k")
	press(tv, "k")
	assert.Equal(t, 0, tv.Cursor())
}

func TestTableView_MouseWheelScrolls(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})

	tv.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown})
	settle(tv)
	assert.Equal(t, 3, tv.Table().ScrollOffset())
	assert.Contains(t, plainView(tv), "row-3")
}

func TestTableView_LiveSearchAndCancel(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})

	press(tv, "/")
	require.True(t, tv.Searching())
	press(tv, "row-99")
	settle(tv)

	assert.Equal(t, "row-99", tv.Table().SearchTerm())
	assert.Equal(t, 11, tv.Table().VisibleCount())
	assert.Contains(t, plainView(tv), "Showing 11 of 1000 rows")

	tv.Update(tea.KeyMsg{Type: tea.KeyEsc})
	tv.Update(CloseSearchMsg{Mode: SearchModeRows})
	settle(tv)

	assert.False(t, tv.Searching())
	assert.Equal(t, "", tv.Table().SearchTerm())
	assert.Equal(t, 1000, tv.Table().VisibleCount())
}

func TestTableView_ColumnFilterKeepsSelection(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})

	press(tv, "G")
	press(tv, "l")
	press(tv, "f")
	press(tv, "999")
	tv.Update(SearchInputMsg{Query: "999", Mode: SearchModeColumn})
	settle(tv)

	require.NotNil(t, tv.Table().Filter())
	assert.Equal(t, 1, tv.Table().Filter().Column)
	assert.Equal(t, 1, tv.Table().VisibleCount())
	assert.Equal(t, 0, tv.Cursor())

	global, ok := tv.Table().GlobalAt(tv.Cursor())
	require.True(t, ok)
	assert.Equal(t, 999, global)
}

func TestTableView_NoMatchesShowsPlaceholder(t *testing.T) {
	tv := newTestView(t, testPage(50), TableViewOptions{})

	press(tv, "/")
	press(tv, "zzz")
	settle(tv)

	assert.Contains(t, plainView(tv), vtable.PlaceholderText)
	assert.Contains(t, plainView(tv), "Showing 0 of 50 rows")
}

func TestTableView_SortEmitsViewState(t *testing.T) {
	tv := newTestView(t, testPage(10), TableViewOptions{Key: "demo/items"})

	press(tv, "l")
	msgs := collect(press(tv, "s"))

	var changes []ViewStateMsg
	for _, m := range msgs {
		if vs, ok := m.(ViewStateMsg); ok {
			changes = append(changes, vs)
		}
	}
	require.Len(t, changes, 1)
	assert.Equal(t, "demo/items", changes[0].Key)
	assert.Equal(t, vtable.ChangeSort, changes[0].Change.Kind)
	assert.Equal(t, "name", changes[0].Change.State.SortColumn)
	assert.Equal(t, "asc", changes[0].Change.State.SortDirection)

	settle(tv)
	assert.Contains(t, plainView(tv), "name ▲")
}

func TestTableView_PinMovesColumnFirst(t *testing.T) {
	tv := newTestView(t, testPage(10), TableViewOptions{})

	press(tv, "l")
	press(tv, "p")
	settle(tv)

	assert.Equal(t, []int{1}, tv.Table().Header().PinnedColumns())
	assert.Equal(t, 1, tv.CurrentColumn())

	header := strings.Split(plainView(tv), "\n")[0]
	assert.Less(t, strings.Index(header, "name"), strings.Index(header, "id"))
}

func TestTableView_PinnedCellsStyledInNewFrames(t *testing.T) {
	tv := newTestView(t, testPage(1000), TableViewOptions{})
	press(tv, "l")
	press(tv, "p")
	settle(tv)
	assert.True(t, tv.Table().Frame().Rows()[0].Cells[1].Pinned, "the current frame is resynchronized")

	press(tv, "G")
	settle(tv)

	rows := tv.Table().Frame().Rows()
	require.NotEmpty(t, rows)
	last := rows[len(rows)-1]
	require.Equal(t, 999, last.GlobalRow)
	require.True(t, last.Cells[1].Pinned)
	require.False(t, last.Cells[0].Pinned)

	th := theme.DefaultTheme()
	base := lipgloss.NewStyle()
	assert.Equal(t, th.PinnedColumn, tv.cellStyle(base, last.Cells[1]).GetForeground())
	assert.NotEqual(t, th.PinnedColumn, tv.cellStyle(base, last.Cells[0]).GetForeground())
}

func TestTableView_MultilineRowsRefineHeight(t *testing.T) {
	page := &vtable.Page{
		Columns: []string{"body"},
		Rows: [][]vtable.Value{
			{"first\nsecond"},
			{"third\nfourth"},
		},
	}
	tv := newTestView(t, page, TableViewOptions{})

	assert.True(t, tv.Table().Measured())
	assert.Equal(t, 2, tv.Table().BaseRowHeight())

	view := plainView(tv)
	assert.Contains(t, view, "second")
	assert.Contains(t, view, "fourth")
}

func TestTableView_RowResize(t *testing.T) {
	tv := newTestView(t, testPage(10), TableViewOptions{})

	press(tv, "j")
	press(tv, ">")
	settle(tv)

	h, ok := tv.Table().RowHeight(1)
	require.True(t, ok)
	assert.Equal(t, 2, h)
	assert.Contains(t, tv.StatusLine(), "Row height 2")
}

func TestTableView_CopyCellAndRow(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	tv := newTestView(t, testPage(10), TableViewOptions{})
	press(tv, "j")
	press(tv, "l")

	msgs := collect(press(tv, "y"))
	require.Contains(t, msgs, CopiedMsg{What: "cell"})
	assert.Equal(t, "row-1", copied)

	collect(press(tv, "Y"))
	assert.Equal(t, "1\trow-1\t", copied)

	tv.Update(CopiedMsg{What: "row"})
	assert.Contains(t, tv.StatusLine(), "Copied row")
}

func TestTableView_PreviewShowsNull(t *testing.T) {
	tv := newTestView(t, testPage(10), TableViewOptions{})
	press(tv, "l")
	press(tv, "l")

	_, cmd := tv.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, collect(cmd), PreviewMsg{Title: "note", Content: vtable.NullText})
}

func TestTableView_ExportVisibleRows(t *testing.T) {
	dir := t.TempDir()
	tv := newTestView(t, testPage(100), TableViewOptions{
		Title:        "items",
		ExportDir:    dir,
		ExportFormat: export.FormatJSON,
	})

	press(tv, "/")
	press(tv, "row-1")
	tv.Update(SearchInputMsg{Query: "row-1", Mode: SearchModeRows})

	var exported ExportedMsg
	for _, m := range collect(press(tv, "e")) {
		if e, ok := m.(ExportedMsg); ok {
			exported = e
		}
	}
	require.NoError(t, exported.Err)
	assert.Equal(t, 11, exported.Rows)
	assert.True(t, strings.HasSuffix(exported.Path, ".json"))

	data, err := os.ReadFile(exported.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"row-19"`)
	assert.NotContains(t, string(data), `"row-2"`)
}

func TestTableView_NextFormatCycles(t *testing.T) {
	tv := newTestView(t, testPage(5), TableViewOptions{})

	press(tv, "E")
	assert.Contains(t, tv.StatusLine(), "JSON")
	press(tv, "E")
	assert.Contains(t, tv.StatusLine(), "YAML")
	press(tv, "E")
	assert.Contains(t, tv.StatusLine(), "CSV")
}
