package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazydb/internal/jsonb"
	"github.com/rebeliceyang/lazydb/internal/ui/theme"
)

// PreviewPane displays the full content of one cell
type PreviewPane struct {
	Width     int
	MaxHeight int    // Maximum height (screen 1/3)
	Content   string // Raw content to display
	Title     string // Column name

	Visible bool

	// JSONFormat pretty-prints JSON objects and arrays.
	JSONFormat bool

	scrollY      int
	contentLines []string // Formatted content split into lines

	Theme theme.Theme
	style lipgloss.Style
}

// NewPreviewPane creates a new preview pane
func NewPreviewPane(th theme.Theme) *PreviewPane {
	return &PreviewPane{
		Width:      80,
		MaxHeight:  10,
		Theme:      th,
		JSONFormat: true,
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Border).
			Padding(0, 1),
	}
}

// Show opens the pane on content.
func (p *PreviewPane) Show(title, content string) {
	p.Content = content
	p.Title = title
	p.scrollY = 0
	p.contentLines = nil
	p.Visible = true
}

// Hide closes the pane.
func (p *PreviewPane) Hide() {
	p.Visible = false
	p.contentLines = nil
}

// formatContent formats the raw content for display
func (p *PreviewPane) formatContent() {
	if p.Content == "" {
		p.contentLines = []string{}
		return
	}

	contentWidth := max(p.Width-p.style.GetHorizontalFrameSize(), 10)

	formatted := p.Content
	if p.JSONFormat && jsonb.IsJSON(p.Content) {
		if pretty, err := jsonb.Format(p.Content); err == nil {
			formatted = pretty
		}
	}

	p.contentLines = wrapText(formatted, contentWidth)
}

// wrapText wraps text to fit within maxWidth
func wrapText(text string, maxWidth int) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, r := range line {
			rWidth := runewidth.RuneWidth(r)
			if currentWidth+rWidth > maxWidth {
				result = append(result, current.String())
				current.Reset()
				currentWidth = 0
			}
			current.WriteRune(r)
			currentWidth += rWidth
		}
		if current.Len() > 0 {
			result = append(result, current.String())
		}
	}
	return result
}

// Height returns the rendered height including borders
func (p *PreviewPane) Height() int {
	if !p.Visible {
		return 0
	}
	return p.MaxHeight
}

func (p *PreviewPane) visibleLines() int {
	// header and footer
	return max(p.MaxHeight-p.style.GetVerticalFrameSize()-2, 1)
}

// IsScrollable returns true if content exceeds visible area
func (p *PreviewPane) IsScrollable() bool {
	if p.contentLines == nil {
		p.formatContent()
	}
	return len(p.contentLines) > p.visibleLines()
}

// ScrollUp scrolls content up
func (p *PreviewPane) ScrollUp() {
	if p.scrollY > 0 {
		p.scrollY--
	}
}

// ScrollDown scrolls content down
func (p *PreviewPane) ScrollDown() {
	if p.contentLines == nil {
		p.formatContent()
	}
	maxScroll := max(len(p.contentLines)-p.visibleLines(), 0)
	if p.scrollY < maxScroll {
		p.scrollY++
	}
}

// Update handles keys while the pane has focus.
func (p *PreviewPane) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		p.ScrollUp()
	case "down", "j":
		p.ScrollDown()
	case "y":
		content := p.Content
		return func() tea.Msg {
			return CopiedMsg{What: "preview", Err: writeClipboard(content)}
		}
	case "esc", "enter", "q":
		p.Hide()
	}
	return nil
}

// View renders the preview pane
func (p *PreviewPane) View() string {
	if !p.Visible {
		return ""
	}

	if p.contentLines == nil {
		p.formatContent()
	}

	contentWidth := p.Width - p.style.GetHorizontalFrameSize()

	titleStyle := lipgloss.NewStyle().
		Foreground(p.Theme.Info).
		Bold(true)

	title := "Preview"
	if p.Title != "" {
		title = "Preview: " + p.Title
	}
	header := titleStyle.Render(runewidth.Truncate(title, max(contentWidth-4, 1), "..."))

	startLine := p.scrollY
	endLine := min(startLine+p.visibleLines(), len(p.contentLines))

	contentParts := []string{header}
	contentStyle := lipgloss.NewStyle().Foreground(p.Theme.Foreground)
	for i := startLine; i < endLine; i++ {
		contentParts = append(contentParts, contentStyle.Render(p.contentLines[i]))
	}

	helpParts := []string{}
	if jsonb.IsJSON(p.Content) {
		helpParts = append(helpParts, "json "+jsonb.Kind(p.Content))
	}
	if p.IsScrollable() {
		helpParts = append(helpParts, "↑↓: Scroll")
	}
	helpParts = append(helpParts, "y: Copy", "esc: Close")

	helpText := strings.Join(helpParts, " │ ")
	helpStyle := lipgloss.NewStyle().
		Foreground(p.Theme.Metadata).
		Italic(true)

	footerPadding := max(contentWidth-runewidth.StringWidth(helpText), 0)
	contentParts = append(contentParts, strings.Repeat(" ", footerPadding)+helpStyle.Render(helpText))

	innerHeight := max(p.MaxHeight-p.style.GetVerticalFrameSize(), 3)

	return p.style.
		Width(contentWidth).
		Height(innerHeight).
		MaxHeight(innerHeight + p.style.GetVerticalFrameSize()).
		Render(strings.Join(contentParts, "\n"))
}
