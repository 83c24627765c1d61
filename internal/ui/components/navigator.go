package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazydb/internal/db"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
)

// OpenTableMsg asks the host to load a table, or its schema.
type OpenTableMsg struct {
	Ref    db.TableRef
	Schema bool
}

// Navigator is the table list on the left side of the screen.
type Navigator struct {
	Theme   theme.Theme
	Title   string
	Width   int
	Height  int
	Focused bool

	tables  []db.TableRef
	matches []TableMatch
	cursor  int
	offset  int

	filter    textinput.Model
	filtering bool
}

// NewNavigator creates an empty navigator.
func NewNavigator(th theme.Theme) *Navigator {
	ti := textinput.New()
	ti.Placeholder = "t: s: !"
	ti.Prompt = "/"
	ti.CharLimit = 128

	return &Navigator{
		Theme:  th,
		Title:  "Tables",
		filter: ti,
	}
}

// SetTables replaces the list, keeping the selected table when it still
// exists.
func (n *Navigator) SetTables(tables []db.TableRef) {
	selected, had := n.Selected()
	n.tables = slices.Clone(tables)
	n.refilter()
	if !had {
		return
	}
	for i, m := range n.matches {
		if m.Ref == selected {
			n.cursor = i
			break
		}
	}
	n.clampCursor()
}

// Select moves the cursor to ref. It reports whether ref is listed.
func (n *Navigator) Select(ref db.TableRef) bool {
	for i, m := range n.matches {
		if m.Ref == ref {
			n.cursor = i
			n.clampCursor()
			return true
		}
	}
	return false
}

// Tables returns every table, filtered or not.
func (n *Navigator) Tables() []db.TableRef { return n.tables }

// Matches returns the tables passing the current filter.
func (n *Navigator) Matches() []TableMatch { return n.matches }

// Filtering reports whether the filter input has focus.
func (n *Navigator) Filtering() bool { return n.filtering }

// Selected returns the table under the cursor.
func (n *Navigator) Selected() (db.TableRef, bool) {
	if n.cursor < 0 || n.cursor >= len(n.matches) {
		return db.TableRef{}, false
	}
	return n.matches[n.cursor].Ref, true
}

func (n *Navigator) refilter() {
	n.matches = FilterTables(n.tables, ParseSearchQuery(n.filter.Value()))
	n.clampCursor()
}

func (n *Navigator) listHeight() int {
	// border, title and filter line
	h := n.Height - 3
	if n.filtering || n.filter.Value() != "" {
		h--
	}
	return max(h, 1)
}

func (n *Navigator) clampCursor() {
	n.cursor = min(max(n.cursor, 0), max(len(n.matches)-1, 0))
	if n.cursor < n.offset {
		n.offset = n.cursor
	}
	if h := n.listHeight(); n.cursor >= n.offset+h {
		n.offset = n.cursor - h + 1
	}
}

// Update handles keys while the navigator has focus.
func (n *Navigator) Update(msg tea.KeyMsg) tea.Cmd {
	if n.filtering {
		switch msg.String() {
		case "esc":
			n.filtering = false
			n.filter.Blur()
			n.filter.SetValue("")
			n.refilter()
			return nil
		case "enter":
			n.filtering = false
			n.filter.Blur()
			return nil
		}
		var cmd tea.Cmd
		n.filter, cmd = n.filter.Update(msg)
		n.cursor = 0
		n.refilter()
		return cmd
	}

	switch msg.String() {
	case "up", "k":
		n.cursor--
	case "down", "j":
		n.cursor++
	case "g", "home":
		n.cursor = 0
	case "G", "end":
		n.cursor = len(n.matches) - 1
	case "/":
		n.filtering = true
		return n.filter.Focus()
	case "esc":
		n.filter.SetValue("")
		n.refilter()
	case "enter", "S":
		ref, ok := n.Selected()
		if !ok {
			return nil
		}
		schema := msg.String() == "S"
		return func() tea.Msg {
			return OpenTableMsg{Ref: ref, Schema: schema}
		}
	}
	n.clampCursor()
	return nil
}

// View renders the navigator
func (n *Navigator) View() string {
	inner := max(n.Width-4, 1)

	var lines []string
	if n.filtering || n.filter.Value() != "" {
		n.filter.Width = max(inner-2, 1)
		lines = append(lines, n.filter.View())
	}

	if len(n.matches) == 0 {
		msg := "No tables"
		if len(n.tables) > 0 {
			msg = "No matches"
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(n.Theme.Metadata).Italic(true).Render(msg))
	}

	end := min(n.offset+n.listHeight(), len(n.matches))
	for i := n.offset; i < end; i++ {
		lines = append(lines, n.renderItem(n.matches[i], i == n.cursor, inner))
	}

	title := n.Title
	if q := n.filter.Value(); q != "" {
		title += fmt.Sprintf(" (%d/%d)", len(n.matches), len(n.tables))
	}

	p := Panel{
		Title:   title,
		Content: strings.Join(lines, "\n"),
		Width:   n.Width,
		Height:  n.Height,
		Active:  n.Focused,
		Theme:   n.Theme,
	}
	return p.View()
}

func (n *Navigator) renderItem(m TableMatch, selected bool, width int) string {
	base := lipgloss.NewStyle().Foreground(n.Theme.Foreground)
	if selected {
		base = base.Background(n.Theme.Selection).Bold(true)
	}
	hit := base.Foreground(n.Theme.Match).Bold(true)

	name := runewidth.Truncate(m.Ref.String(), max(width-2, 1), "…")
	var b strings.Builder
	b.WriteString(base.Foreground(n.Theme.TableIcon).Render("▪ "))
	j := 0
	for i, r := range name {
		for j < len(m.Positions) && m.Positions[j] < i {
			j++
		}
		if j < len(m.Positions) && m.Positions[j] == i {
			b.WriteString(hit.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}
