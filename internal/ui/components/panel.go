package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
)

// Panel is a bordered box with an optional title
type Panel struct {
	Title   string
	Content string
	Width   int
	Height  int
	Focused bool
	Theme   theme.Theme
}

// View renders the panel. Width and Height include the border.
func (p *Panel) View() string {
	if p.Width <= 2 || p.Height <= 2 {
		return ""
	}

	border := p.Theme.Border
	if p.Focused {
		border = p.Theme.BorderFocused
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(p.Width - 2).
		Height(p.Height - 2).
		MaxHeight(p.Height)

	content := p.Content
	if p.Title != "" {
		title := lipgloss.NewStyle().Bold(true).Foreground(p.Theme.Info).Padding(0, 1)
		content = title.Render(p.Title) + "\n" + content
	}
	return style.Render(content)
}
