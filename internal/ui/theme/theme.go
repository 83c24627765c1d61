package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	// Background colors
	Background lipgloss.Color
	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color
	Metadata      lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Table colors
	TableHeader      lipgloss.Color
	TableRowEven     lipgloss.Color
	TableRowOdd      lipgloss.Color
	TableRowSelected lipgloss.Color
	TableCellCursor  lipgloss.Color
	PinnedColumn     lipgloss.Color
	SortIndicator    lipgloss.Color
	Null             lipgloss.Color
	Blob             lipgloss.Color

	// JSON colors
	JSONKey     lipgloss.Color
	JSONString  lipgloss.Color
	JSONNumber  lipgloss.Color
	JSONBoolean lipgloss.Color
	JSONNull    lipgloss.Color

	// Navigator colors
	TableIcon  lipgloss.Color
	PrimaryKey lipgloss.Color
	Match      lipgloss.Color
}

// Names lists the available themes.
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name. Unknown names fall back to the default.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}
