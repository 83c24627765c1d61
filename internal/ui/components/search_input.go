package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
)

// SearchMode selects what the input drives.
type SearchMode int

const (
	// SearchModeRows matches the term against every cell of a row.
	SearchModeRows SearchMode = iota
	// SearchModeColumn filters on the current column only.
	SearchModeColumn
)

// SearchInputMsg is sent when the input is confirmed with enter.
type SearchInputMsg struct {
	Query string
	Mode  SearchMode
}

// CloseSearchMsg is sent when the input is dismissed with esc.
type CloseSearchMsg struct {
	Mode SearchMode
}

// SearchInput is the one-line live search and filter box.
type SearchInput struct {
	Input   textinput.Model
	Mode    SearchMode
	Column  string
	Theme   theme.Theme
	Width   int
	Visible bool

	// previous is restored when the input is dismissed.
	previous string
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input: ti,
		Theme: th,
	}
}

// Open shows the input in mode, seeded with the current value.
func (s *SearchInput) Open(mode SearchMode, column, current string) tea.Cmd {
	s.Mode = mode
	s.Column = column
	s.previous = current
	s.Visible = true
	if mode == SearchModeColumn {
		s.Input.Placeholder = "Filter " + column + "..."
	} else {
		s.Input.Placeholder = "Search..."
	}
	s.Input.SetValue(current)
	s.Input.CursorEnd()
	return s.Input.Focus()
}

// Close hides the input.
func (s *SearchInput) Close() {
	s.Visible = false
	s.Input.Blur()
}

// Value returns the current text.
func (s *SearchInput) Value() string {
	return s.Input.Value()
}

// Previous returns the value the input was opened with.
func (s *SearchInput) Previous() string {
	return s.previous
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			query, mode := s.Input.Value(), s.Mode
			return s, func() tea.Msg {
				return SearchInputMsg{Query: query, Mode: mode}
			}
		case "esc":
			mode := s.Mode
			return s, func() tea.Msg {
				return CloseSearchMsg{Mode: mode}
			}
		}
	}

	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// View renders the search input
func (s *SearchInput) View() string {
	if !s.Visible {
		return ""
	}

	label := "/"
	color := s.Theme.Success
	if s.Mode == SearchModeColumn {
		label = "filter " + s.Column + ":"
		color = s.Theme.Info
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true)

	s.Input.Width = max(s.Width-lipgloss.Width(label)-3, 10)

	return labelStyle.Render(label) + " " + s.Input.View()
}
