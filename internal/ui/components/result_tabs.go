package components

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
	"github.com/rebeliceyang/lazydb/internal/vtable"
)

const MaxResultTabs = 10

// Pre-compiled regex patterns for performance
var (
	dashCommentRe  = regexp.MustCompile(`^\s*--\s*(.+)$`)
	blockCommentRe = regexp.MustCompile(`^\s*/\*\s*(.+?)\s*\*/`)
	fromRe         = regexp.MustCompile(`(?i)\bFROM\s+([a-zA-Z_][a-zA-Z0-9_.]*)(?:\s+(?:AS\s+)?[a-zA-Z_][a-zA-Z0-9_]*)?`)
)

// ResultTab is one open table page, schema listing or query result.
type ResultTab struct {
	ID    int
	Title string
	Kind  vtable.TableKind

	// Table is set for data and schema tabs, SQL for query tabs.
	Table db.TableRef
	SQL   string

	Offset    int64
	TotalRows int64
	Duration  time.Duration
	CreatedAt time.Time

	View *TableView
}

// identity is what makes two tabs the same tab. Query tabs are never
// merged.
func (t *ResultTab) identity() string {
	if t.Kind == vtable.TableKindQuery {
		return fmt.Sprintf("query#%d", t.ID)
	}
	return t.Kind.String() + ":" + t.Table.String()
}

// Rows returns the number of rows on the tab's page.
func (t *ResultTab) Rows() int {
	if t.View == nil {
		return 0
	}
	return t.View.Table().TotalCount()
}

// ResultTabs manages the open result tabs.
type ResultTabs struct {
	tabs      []*ResultTab
	activeIdx int
	nextID    int
	Theme     theme.Theme
}

// NewResultTabs creates a new result tabs manager
func NewResultTabs(th theme.Theme) *ResultTabs {
	return &ResultTabs{
		tabs:   []*ResultTab{},
		nextID: 1,
		Theme:  th,
	}
}

// Open adds tab as the active tab. A data or schema tab for a table that
// is already open replaces it in place, which is how paging works. New
// tabs appear on the left and the oldest is dropped past MaxResultTabs.
func (rt *ResultTabs) Open(tab *ResultTab) {
	tab.ID = rt.nextID
	rt.nextID++
	if tab.CreatedAt.IsZero() {
		tab.CreatedAt = time.Now()
	}
	if tab.Title == "" {
		tab.Title = rt.titleFor(tab)
	}

	id := tab.identity()
	for i, existing := range rt.tabs {
		if existing.identity() == id {
			rt.tabs[i] = tab
			rt.activeIdx = i
			return
		}
	}

	rt.tabs = append([]*ResultTab{tab}, rt.tabs...)
	if len(rt.tabs) > MaxResultTabs {
		rt.tabs = rt.tabs[:MaxResultTabs]
	}
	rt.activeIdx = 0
}

func (rt *ResultTabs) titleFor(tab *ResultTab) string {
	switch tab.Kind {
	case vtable.TableKindSchema:
		return tab.Table.String() + " (schema)"
	case vtable.TableKindQuery:
		return QueryTitle(tab.SQL)
	default:
		return tab.Table.String()
	}
}

// QueryTitle derives a short tab title from a SQL statement: a leading
// comment wins, then the main table name, then the truncated statement.
func QueryTitle(sql string) string {
	if title := extractCommentTitle(sql); title != "" {
		return title
	}
	if tableName := extractTableName(sql); tableName != "" {
		return tableName
	}

	cleaned := strings.TrimSpace(sql)
	cleaned = strings.ReplaceAll(cleaned, "\n", " ")
	return runewidth.Truncate(cleaned, 20, "...")
}

// extractCommentTitle extracts title from SQL comment (-- title or /* title */)
func extractCommentTitle(sql string) string {
	lines := strings.Split(sql, "\n")
	if matches := dashCommentRe.FindStringSubmatch(lines[0]); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	if matches := blockCommentRe.FindStringSubmatch(sql); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

func extractTableName(sql string) string {
	matches := fromRe.FindStringSubmatch(sql)
	if len(matches) < 2 {
		return ""
	}
	if strings.Contains(strings.ToUpper(sql), "JOIN") {
		return matches[1] + "(+)"
	}
	return matches[1]
}

// Active returns the currently active tab
func (rt *ResultTabs) Active() *ResultTab {
	if len(rt.tabs) == 0 || rt.activeIdx < 0 || rt.activeIdx >= len(rt.tabs) {
		return nil
	}
	return rt.tabs[rt.activeIdx]
}

// ActiveView returns the TableView of the active tab
func (rt *ResultTabs) ActiveView() *TableView {
	tab := rt.Active()
	if tab == nil {
		return nil
	}
	return tab.View
}

// ByTableID finds the tab whose view owns the table with id. Frames are
// routed through here so background tabs finish their pending frame.
func (rt *ResultTabs) ByTableID(id string) *ResultTab {
	for _, tab := range rt.tabs {
		if tab.View != nil && tab.View.Table().ID() == id {
			return tab
		}
	}
	return nil
}

// Tabs returns the open tabs, newest first.
func (rt *ResultTabs) Tabs() []*ResultTab {
	return rt.tabs
}

// NextTab switches to the next tab
func (rt *ResultTabs) NextTab() {
	if len(rt.tabs) > 0 {
		rt.activeIdx = (rt.activeIdx + 1) % len(rt.tabs)
	}
}

// PrevTab switches to the previous tab
func (rt *ResultTabs) PrevTab() {
	if len(rt.tabs) > 0 {
		rt.activeIdx = (rt.activeIdx - 1 + len(rt.tabs)) % len(rt.tabs)
	}
}

// CloseActive removes the active tab.
func (rt *ResultTabs) CloseActive() {
	if rt.Active() == nil {
		return
	}
	rt.tabs = append(rt.tabs[:rt.activeIdx], rt.tabs[rt.activeIdx+1:]...)
	if rt.activeIdx >= len(rt.tabs) {
		rt.activeIdx = max(len(rt.tabs)-1, 0)
	}
}

// TabCount returns the number of tabs
func (rt *ResultTabs) TabCount() int {
	return len(rt.tabs)
}

// HasTabs returns whether there are any tabs
func (rt *ResultTabs) HasTabs() bool {
	return len(rt.tabs) > 0
}

// SetSize resizes every tab's view.
func (rt *ResultTabs) SetSize(width, height int) tea.Cmd {
	var cmds []tea.Cmd
	for _, tab := range rt.tabs {
		if tab.View != nil {
			cmds = append(cmds, tab.View.SetSize(width, height))
		}
	}
	return tea.Batch(cmds...)
}

func rowLabel(n int) string {
	if n == 1 {
		return "1 row"
	}
	return humanize.Comma(int64(n)) + " rows"
}

// RenderTabBar renders the tab bar
func (rt *ResultTabs) RenderTabBar(width int) string {
	if len(rt.tabs) == 0 {
		return ""
	}

	maxLabelLen := max(width/MaxResultTabs, 15)

	var tabViews []string
	for i, tab := range rt.tabs {
		label := fmt.Sprintf("[%d] %s (%s)", i+1, tab.Title, rowLabel(tab.Rows()))
		if runewidth.StringWidth(label) > maxLabelLen {
			label = runewidth.Truncate(fmt.Sprintf("[%d] %s", i+1, tab.Title), maxLabelLen, "...")
		}

		style := lipgloss.NewStyle().
			Foreground(rt.Theme.Foreground).
			Background(rt.Theme.Selection).
			Padding(0, 1)
		if i == rt.activeIdx {
			style = lipgloss.NewStyle().
				Foreground(rt.Theme.Background).
				Background(rt.Theme.Info).
				Bold(true).
				Padding(0, 1)
		}

		tabViews = append(tabViews, style.Render(label))
	}

	return lipgloss.NewStyle().MaxWidth(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabViews...))
}
