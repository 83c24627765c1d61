package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazydb/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of shortcuts.
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"Tab", "Switch panel focus"},
		{"r, F5", "Reload tables and current page"},
		{"[ / ]", "Previous / next page"},
		{"Ctrl+← / Ctrl+→", "Previous / next tab"},
		{"x", "Close tab"},
	}
}

// GetNavigatorKeys returns table list key bindings
func GetNavigatorKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k ↓/j", "Move"},
		{"/", "Filter tables (t: s: !)"},
		{"Enter", "Open table"},
		{"S", "Open table schema"},
	}
}

// FromBindings converts bubbles key bindings to help entries.
func FromBindings(bindings []key.Binding) []KeyBinding {
	keys := make([]KeyBinding, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		keys = append(keys, KeyBinding{Key: h.Key, Description: h.Desc})
	}
	return keys
}

// Sections returns every help section, the table section built from
// tableKeys.
func Sections(tableKeys []key.Binding) []Section {
	return []Section{
		{Title: "Global", Keys: GetGlobalKeys()},
		{Title: "Tables", Keys: GetNavigatorKeys()},
		{Title: "Data", Keys: FromBindings(tableKeys)},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme, tableKeys []key.Binding) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazydb - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, s := range Sections(tableKeys) {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, kb := range s.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(th.Metadata).Italic(true).Render("Press ? or Esc to close"))

	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(height).
		Padding(0, 2).
		Render(b.String())
}
