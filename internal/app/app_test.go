package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazydb/internal/config"
	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/models"
	"github.com/rebeliceyang/lazydb/internal/ui/components"
	"github.com/rebeliceyang/lazydb/internal/viewstate"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

type fakeSource struct {
	total int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) ListTables(context.Context) ([]db.TableRef, error) {
	return []db.TableRef{
		{Schema: "public", Name: "orders"},
		{Schema: "public", Name: "users"},
	}, nil
}

func (f *fakeSource) Columns(_ context.Context, ref db.TableRef) ([]db.ColumnInfo, error) {
	if ref.Name == "missing" {
		return nil, db.ErrTableNotFound
	}
	return []db.ColumnInfo{
		{Name: "id", DataType: "integer", PrimaryKey: true},
		{Name: "name", DataType: "text", Nullable: true},
	}, nil
}

func (f *fakeSource) Page(_ context.Context, ref db.TableRef, offset, limit int) (*db.Page, error) {
	if ref.Name == "missing" {
		return nil, fmt.Errorf("load %s: %w", ref, db.ErrTableNotFound)
	}
	end := min(offset+limit, f.total)
	rows := make([][]vtable.Value, 0, max(end-offset, 0))
	for i := offset; i < end; i++ {
		rows = append(rows, []vtable.Value{int64(i), fmt.Sprintf("name-%d", i)})
	}
	return &db.Page{
		Page: vtable.Page{
			Columns:    []string{"id", "name"},
			Rows:       rows,
			StartIndex: offset,
		},
		TotalRows: int64(f.total),
	}, nil
}

func (f *fakeSource) Query(ctx context.Context, sql string) (*db.Page, error) {
	return f.Page(ctx, db.TableRef{Name: "query"}, 0, 5)
}

func (f *fakeSource) Close() error { return nil }

func newTestApp(t *testing.T, store *viewstate.Store) *App {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Data.PageSize = 50

	a := New(Options{Config: cfg, Source: &fakeSource{total: 120}, Store: store})
	t.Cleanup(a.Close)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func newTestStore(t *testing.T) *viewstate.Store {
	t.Helper()
	store, err := viewstate.NewStore(filepath.Join(t.TempDir(), "viewstate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// deliver runs cmd and feeds its message back into the app.
func deliver(t *testing.T, a *App, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	a.Update(msg)
	return msg
}

func openTable(t *testing.T, a *App, ref db.TableRef) {
	t.Helper()
	_, cmd := a.Update(components.OpenTableMsg{Ref: ref})
	msg := deliver(t, a, cmd)
	require.IsType(t, PageLoadedMsg{}, msg)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestApp_LoadTables(t *testing.T) {
	a := newTestApp(t, nil)

	deliver(t, a, a.loadTables())

	assert.False(t, a.state.Loading)
	assert.Len(t, a.navigator.Tables(), 2)
	assert.Contains(t, ansi.Strip(a.View()), "public.users")
}

func TestApp_OpenTable(t *testing.T) {
	a := newTestApp(t, nil)
	openTable(t, a, db.TableRef{Schema: "public", Name: "users"})

	require.Equal(t, 1, a.tabs.TabCount())
	assert.Equal(t, models.RightPanel, a.state.FocusedPanel)

	view := a.tabs.ActiveView()
	require.NotNil(t, view)
	assert.Equal(t, 50, view.Table().TotalCount())
	assert.Equal(t, "rows 1-50 of 120", view.PageInfo)
}

func TestApp_PagingReusesHeader(t *testing.T) {
	a := newTestApp(t, nil)
	openTable(t, a, db.TableRef{Schema: "public", Name: "users"})
	header := a.tabs.ActiveView().Table().Header()

	_, cmd := a.Update(runeKey("]"))
	deliver(t, a, cmd)

	require.Equal(t, 1, a.tabs.TabCount(), "paging replaces the tab")
	tab := a.tabs.Active()
	assert.Equal(t, int64(50), tab.Offset)
	assert.Same(t, header, tab.View.Table().Header())

	_, cmd = a.Update(runeKey("]"))
	deliver(t, a, cmd)
	assert.Equal(t, "rows 101-120 of 120", a.tabs.ActiveView().PageInfo)

	_, cmd = a.Update(runeKey("]"))
	assert.Nil(t, cmd, "no page past the end")

	_, cmd = a.Update(runeKey("["))
	deliver(t, a, cmd)
	assert.Equal(t, int64(50), a.tabs.Active().Offset)
}

func TestApp_ViewStatePersistsAndRestores(t *testing.T) {
	store := newTestStore(t)
	ref := db.TableRef{Schema: "public", Name: "users"}
	key := viewstate.Key("fake", ref.String())

	a := newTestApp(t, store)
	openTable(t, a, ref)
	a.Update(components.ViewStateMsg{
		Key: key,
		Change: vtable.ViewStateChange{
			Kind:  vtable.ChangeSearch,
			State: vtable.ViewState{SearchTerm: "name-1"},
		},
	})

	got, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "name-1", got.SearchTerm)

	b := newTestApp(t, store)
	openTable(t, b, ref)
	assert.Equal(t, "name-1", b.tabs.ActiveView().Table().SearchTerm())
}

func TestApp_RecentTableSelected(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(viewstate.Key("fake", "public.users"), vtable.ViewState{SearchTerm: "x"}))

	a := newTestApp(t, store)
	deliver(t, a, a.loadTables())

	ref, ok := a.navigator.Selected()
	require.True(t, ok)
	assert.Equal(t, "public.users", ref.String())
}

func TestApp_MissingTableShowsError(t *testing.T) {
	a := newTestApp(t, nil)

	_, cmd := a.Update(components.OpenTableMsg{Ref: db.TableRef{Name: "missing"}})
	deliver(t, a, cmd)

	require.True(t, a.showError)
	assert.Contains(t, ansi.Strip(a.View()), "Table Not Found")
	assert.Equal(t, 0, a.tabs.TabCount())

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.showError)
}

func TestApp_SchemaTabNeverVirtualizes(t *testing.T) {
	a := newTestApp(t, nil)
	// Low enough that a two-row data table would virtualize.
	a.config.Table.MinRows = 1

	_, cmd := a.Update(components.OpenTableMsg{Ref: db.TableRef{Schema: "public", Name: "users"}, Schema: true})
	deliver(t, a, cmd)

	tab := a.tabs.Active()
	require.NotNil(t, tab)
	assert.Equal(t, vtable.TableKindSchema, tab.Kind)
	assert.False(t, tab.View.Table().Virtualized())
	assert.Equal(t, 2, tab.View.Table().TotalCount())
}

func TestApp_HelpToggle(t *testing.T) {
	a := newTestApp(t, nil)

	a.Update(runeKey("?"))
	assert.Equal(t, models.HelpMode, a.state.ViewMode)
	assert.Contains(t, ansi.Strip(a.View()), "Keyboard Shortcuts")

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, models.NormalMode, a.state.ViewMode)
}

func TestParseOverride(t *testing.T) {
	assert.Equal(t, vtable.OverrideOn, parseOverride("ON"))
	assert.Equal(t, vtable.OverrideOff, parseOverride("never"))
	assert.Equal(t, vtable.OverrideAuto, parseOverride(""))
}
