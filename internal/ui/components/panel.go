package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazydb/internal/ui/theme"
)

// Panel represents a bordered UI panel
type Panel struct {
	Title   string
	Content string
	Width   int
	Height  int
	Active  bool
	Theme   theme.Theme
	Style   lipgloss.Style
}

// View renders the panel. Width and Height are the outer size.
func (p *Panel) View() string {
	if p.Width <= 2 || p.Height <= 2 {
		return ""
	}

	border := p.Theme.Border
	if p.Active {
		border = p.Theme.BorderFocused
	}

	style := p.Style.
		Width(p.Width - 2).
		Height(p.Height - 2).
		MaxHeight(p.Height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)

	content := p.Content
	if p.Title != "" {
		titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		if p.Active {
			titleStyle = titleStyle.Foreground(p.Theme.BorderFocused)
		}
		content = titleStyle.Render(p.Title) + "\n" + content
	}

	return style.Render(content)
}
