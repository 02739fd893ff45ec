package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/pgtabs/internal/config"
	"github.com/rebeliceyang/pgtabs/internal/ui/components"
	"github.com/rebeliceyang/pgtabs/internal/ui/help"
)

// bodySize is the area below the tab bar and above the status line
func (a *App) bodySize() (int, int) {
	return a.width, max(a.height-2, 0)
}

// resize propagates the window size to every tab and dialog
func (a *App) resize() {
	w, h := a.bodySize()
	for _, tab := range a.ws.Tabs.Tabs() {
		switch c := tab.Content.(type) {
		case *components.ConnectionForm:
			c.Width, c.Height = w, h
		case *components.DBScreen:
			c.Width, c.Height = w, h
		}
	}
	a.switcher.Width = min(max(w/2, 40), 90)
	a.switcher.Height = max(h*2/3, 8)
	a.overlay.Width = w
}

func (a *App) windowTitle() string {
	if tab := a.ws.Tabs.ActiveTab(); tab != nil {
		return config.AppName + " - " + tab.Title
	}
	return config.AppName
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}
	w, h := a.bodySize()

	bar := a.tabBar.Render(components.Items(a.ws.Tabs), a.width, a.ws.Focused)

	var body string
	switch {
	case a.overlay.Visible:
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, a.overlay.View())
	case a.switcher.IsOpen():
		dialog := a.switcher.View()
		left := max(w-lipgloss.Width(dialog), 0) / 2
		// The body starts below the tab bar.
		a.switcher.SetOrigin(left, 1)
		body = lipgloss.NewStyle().PaddingLeft(left).Render(dialog)
	case a.ws.Loader.Visible():
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			a.loader.View(a.ws.Loader.Message(), a.ws.Loader.Cancellable()))
	default:
		body = a.contentView(w, h)
	}
	body = lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(body)

	return strings.Join([]string{bar, body, a.statusLine()}, "\n")
}

func (a *App) contentView(w, h int) string {
	tab := a.ws.Tabs.ActiveTab()
	if tab == nil {
		return ""
	}
	switch c := tab.Content.(type) {
	case *components.ConnectionForm:
		return c.View()
	case *components.DBScreen:
		return c.View()
	case *help.Screen:
		return c.Render(w, h, a.theme)
	}
	return ""
}

func (a *App) statusLine() string {
	style := lipgloss.NewStyle().Foreground(a.theme.Muted).Width(a.width).MaxHeight(1)
	if !a.ws.Focused {
		style = style.Faint(true)
	}
	text := a.status
	if text == "" {
		text = a.keys.Help.Help().Key + " help │ " +
			a.keys.QuickSwitcher.Help().Key + " go to table │ " +
			a.keys.CloseTab.Help().Key + " close tab │ " +
			a.keys.Quit.Help().Key + " quit"
	}
	return style.Render(text)
}
