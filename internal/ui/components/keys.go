package components

import "github.com/charmbracelet/bubbles/key"

// TableKeyMap holds the key bindings of a table view.
type TableKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Home       key.Binding
	End        key.Binding
	Search     key.Binding
	Filter     key.Binding
	Clear      key.Binding
	Sort       key.Binding
	Pin        key.Binding
	Widen      key.Binding
	Narrow     key.Binding
	Taller     key.Binding
	Shorter    key.Binding
	YankCell   key.Binding
	YankRow    key.Binding
	Preview    key.Binding
	Export     key.Binding
	NextFormat key.Binding
}

// DefaultTableKeys returns the default table bindings.
func DefaultTableKeys() TableKeyMap {
	return TableKeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Home:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
		End:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter column")),
		Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search and filter")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Pin:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin column")),
		Widen:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "widen column")),
		Narrow:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "narrow column")),
		Taller:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "taller row")),
		Shorter:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "shorter row")),
		YankCell:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
		YankRow:    key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy row")),
		Preview:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "preview cell")),
		Export:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export rows")),
		NextFormat: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "cycle export format")),
	}
}

// Bindings lists the bindings in help order.
func (k TableKeyMap) Bindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Home, k.End,
		k.Search, k.Filter, k.Clear, k.Sort, k.Pin, k.Widen, k.Narrow,
		k.Taller, k.Shorter, k.YankCell, k.YankRow, k.Preview, k.Export, k.NextFormat,
	}
}
