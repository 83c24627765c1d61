package components

import (
	"fmt"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

func dataTab(name string, rows int) *ResultTab {
	return &ResultTab{
		Kind:  vtable.TableKindData,
		Table: db.TableRef{Schema: "public", Name: name},
		View:  NewTableView(theme.DefaultTheme(), testPage(rows), TableViewOptions{}),
	}
}

func TestQueryTitle(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"-- active users\nSELECT * FROM users", "active users"},
		{"/* monthly */ SELECT 1", "monthly"},
		{"SELECT * FROM public.orders o", "public.orders"},
		{"SELECT * FROM users u JOIN orders o ON o.user_id = u.id", "users(+)"},
		{"SELECT 1 + 1 AS two, now() AS ts", "SELECT 1 + 1 AS t..."},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryTitle(tt.sql))
		})
	}
}

func TestResultTabs_OpenNewestFirst(t *testing.T) {
	rt := NewResultTabs(theme.DefaultTheme())
	rt.Open(dataTab("users", 5))
	rt.Open(dataTab("orders", 5))

	require.Equal(t, 2, rt.TabCount())
	assert.Equal(t, "public.orders", rt.Active().Title)
	assert.Equal(t, "public.orders", rt.Tabs()[0].Title)

	rt.NextTab()
	assert.Equal(t, "public.users", rt.Active().Title)
	rt.NextTab()
	assert.Equal(t, "public.orders", rt.Active().Title)
	rt.PrevTab()
	assert.Equal(t, "public.users", rt.Active().Title)
}

func TestResultTabs_SameTableReplacesInPlace(t *testing.T) {
	rt := NewResultTabs(theme.DefaultTheme())
	rt.Open(dataTab("users", 5))
	rt.Open(dataTab("orders", 5))
	rt.NextTab()

	next := dataTab("users", 7)
	next.Offset = 5
	rt.Open(next)

	require.Equal(t, 2, rt.TabCount())
	assert.Same(t, next, rt.Active())
	assert.Equal(t, 1, rt.activeIdx)
	assert.Equal(t, 7, rt.Active().Rows())

	schema := dataTab("users", 3)
	schema.Kind = vtable.TableKindSchema
	rt.Open(schema)
	assert.Equal(t, 3, rt.TabCount(), "schema tabs are distinct from data tabs")
	assert.Equal(t, "public.users (schema)", rt.Active().Title)
}

func TestResultTabs_QueryTabsNeverMerge(t *testing.T) {
	rt := NewResultTabs(theme.DefaultTheme())
	for i := 0; i < 2; i++ {
		rt.Open(&ResultTab{
			Kind: vtable.TableKindQuery,
			SQL:  "SELECT * FROM users",
			View: NewTableView(theme.DefaultTheme(), testPage(1), TableViewOptions{}),
		})
	}
	assert.Equal(t, 2, rt.TabCount())
	assert.Equal(t, "users", rt.Active().Title)
}

func TestResultTabs_CapAndClose(t *testing.T) {
	rt := NewResultTabs(theme.DefaultTheme())
	for i := 0; i < MaxResultTabs+3; i++ {
		rt.Open(dataTab(fmt.Sprintf("t%d", i), 1))
	}
	assert.Equal(t, MaxResultTabs, rt.TabCount())
	assert.Equal(t, fmt.Sprintf("public.t%d", MaxResultTabs+2), rt.Active().Title)

	rt.PrevTab()
	rt.CloseActive()
	assert.Equal(t, MaxResultTabs-1, rt.TabCount())
	assert.NotNil(t, rt.Active())

	for rt.HasTabs() {
		rt.CloseActive()
	}
	assert.Nil(t, rt.Active())
	assert.Nil(t, rt.ActiveView())
}

func TestResultTabs_ByTableID(t *testing.T) {
	rt := NewResultTabs(theme.DefaultTheme())
	users := dataTab("users", 1)
	rt.Open(users)
	rt.Open(dataTab("orders", 1))

	assert.Same(t, users, rt.ByTableID(users.View.Table().ID()))
	assert.Nil(t, rt.ByTableID("missing"))
}

func TestResultTabs_RenderTabBar(t *testing.T) {
	rt := NewResultTabs(theme.DefaultTheme())
	assert.Empty(t, rt.RenderTabBar(80))

	rt.Open(dataTab("users", 1200))
	bar := ansi.Strip(rt.RenderTabBar(400))
	assert.Contains(t, bar, "[1] public.users (1,200 rows)")
}
