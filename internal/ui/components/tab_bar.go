package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
)

const (
	maxTabTitleWidth = 24
	minTabTitleWidth = 6
	closeGlyph       = "×"
)

// TabItem is one tab as the bar draws it
type TabItem struct {
	ID        workspace.TabID
	Title     string
	Color     string
	Active    bool
	Closeable bool
	Shortcut  string
}

type tabZone struct {
	id         workspace.TabID
	start, end int
	closeAt    int
}

// TabBar renders the workspace tabs on one line and maps clicks back to tabs
type TabBar struct {
	Theme         theme.Theme
	ShowShortcuts bool
	zones         []tabZone
}

// NewTabBar creates a tab bar
func NewTabBar(th theme.Theme) *TabBar {
	return &TabBar{Theme: th, ShowShortcuts: true}
}

// Items builds the bar items from the registry in display order
func Items(reg *workspace.Registry) []TabItem {
	tabs := reg.Tabs()
	items := make([]TabItem, len(tabs))
	for i, t := range tabs {
		items[i] = TabItem{
			ID:        t.ID,
			Title:     t.Title,
			Color:     t.Color,
			Active:    reg.IsActive(t.ID),
			Closeable: t.Closeable,
			Shortcut:  workspace.ShortcutLabel(i),
		}
	}
	return items
}

// Render draws the bar. An unfocused window dims every tab.
func (b *TabBar) Render(items []TabItem, width int, focused bool) string {
	b.zones = b.zones[:0]
	if len(items) == 0 {
		return ""
	}

	titleWidth := maxTabTitleWidth
	if width > 0 {
		// Every tab carries padding, a shortcut and a close glyph.
		titleWidth = min(max(width/len(items)-12, minTabTitleWidth), maxTabTitleWidth)
	}

	var parts []string
	x := 0
	for _, item := range items {
		label := runewidth.Truncate(item.Title, titleWidth, "…")
		if b.ShowShortcuts && item.Shortcut != "" {
			label = item.Shortcut + " " + label
		}

		style := lipgloss.NewStyle().Padding(0, 1)
		if item.Active {
			style = style.Bold(true).
				Foreground(b.Theme.Background).
				Background(b.Theme.TabActive)
		} else {
			style = style.Foreground(b.Theme.TabInactive).Background(b.Theme.TabBar)
		}
		if item.Color != "" && !item.Active {
			style = style.Foreground(lipgloss.Color(item.Color))
		}
		if !focused {
			style = style.Faint(true)
		}

		text := label
		closeAt := -1
		if item.Closeable {
			text += " " + closeGlyph
		}
		rendered := style.Render(text)
		w := lipgloss.Width(rendered)
		if item.Closeable {
			// One marker cell before the label, one padding cell after the glyph.
			closeAt = x + w - 1
		}

		marker := " "
		if item.Color != "" {
			marker = lipgloss.NewStyle().Foreground(lipgloss.Color(item.Color)).Render("▌")
		}

		b.zones = append(b.zones, tabZone{id: item.ID, start: x, end: x + w + 1, closeAt: closeAt})
		parts = append(parts, marker+rendered)
		x += w + 1
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if width > 0 {
		bar = lipgloss.NewStyle().MaxWidth(width).Render(bar)
	}
	return bar
}

// HitTest maps a column of the last rendered bar to a tab. onClose is set when
// x falls on the tab's close glyph.
func (b *TabBar) HitTest(x int) (id workspace.TabID, onClose bool, ok bool) {
	for _, z := range b.zones {
		if x >= z.start && x < z.end {
			return z.id, z.closeAt >= 0 && x == z.closeAt, true
		}
	}
	return "", false, false
}
