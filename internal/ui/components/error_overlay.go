package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazydb/internal/ui/theme"
)

// ErrorOverlay is a centered error dialog.
type ErrorOverlay struct {
	Title   string
	Message string
	Width   int
	Theme   theme.Theme
}

// NewErrorOverlay creates an error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Width: 60, Theme: th}
}

// SetError sets the title and message shown
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(e.Theme.Error).
		Render(e.Title)

	body := lipgloss.NewStyle().
		Foreground(e.Theme.Foreground).
		Width(e.Width - 4).
		Render(e.Message)

	hint := lipgloss.NewStyle().
		Foreground(e.Theme.Metadata).
		Italic(true).
		Render("Esc/Enter to dismiss")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))
}
