package workspace

import (
	"fmt"

	"github.com/rebeliceyang/pgtabs/internal/models"
	"pkt.systems/pslog"
)

const (
	ConnectionTabTitle = "Connection"
	HelpTabTitle       = "Help"
	shortcutTabs       = 9
)

// Options configures a Workspace.
type Options struct {
	Logger pslog.Logger
	Colors *ColorStore
	Loader *Loader
	// NewLoginContent builds the content of a login tab.
	NewLoginContent func() any
}

// Workspace is the shell state shared by the controller: tabs, focus,
// the loader and pending connection opens.
type Workspace struct {
	Tabs     *Registry
	Loader   *Loader
	Connects *Connector
	Colors   *ColorStore
	Focused  bool

	newLogin func() any
	log      pslog.Logger
}

// New builds a workspace with an empty registry.
func New(opts Options) *Workspace {
	ws := &Workspace{
		Loader:   opts.Loader,
		Connects: NewConnector(),
		Colors:   opts.Colors,
		Focused:  true,
		newLogin: opts.NewLoginContent,
		log:      opts.Logger,
	}
	if ws.Loader == nil {
		ws.Loader = NewLoader(DefaultLoaderDelay)
	}
	if ws.Colors == nil {
		ws.Colors, _ = LoadColorStore("")
	}
	if ws.newLogin == nil {
		ws.newLogin = func() any { return nil }
	}
	ws.Tabs = NewRegistry(opts.Logger, ws.loginSpec)
	return ws
}

// SetLoginContent replaces the factory used for new login tabs.
func (ws *Workspace) SetLoginContent(fn func() any) {
	if fn != nil {
		ws.newLogin = fn
	}
}

func (ws *Workspace) loginSpec() TabSpec {
	return TabSpec{Title: ConnectionTabTitle, Kind: KindConnection, Content: ws.newLogin()}
}

// AddConnectionTab adds a login tab. Login tabs cannot be closed and carry no colour.
func (ws *Workspace) AddConnectionTab() *Tab {
	spec := ws.loginSpec()
	return ws.Tabs.AddTab(spec.Title, spec.Kind, spec.Content, spec.Closeable)
}

// AddDatabaseTab adds a session tab coloured by the connection it points at.
func (ws *Workspace) AddDatabaseTab(title string, cfg models.ConnectionConfig, content any) *Tab {
	tab := ws.Tabs.AddTab(title, KindDatabase, content, true)
	color, err := ws.Colors.ForKey(cfg.Key())
	if err != nil {
		ws.log.Warn("persist connection color failed", "key", cfg.Key(), "err", err)
	}
	tab.Color = color
	return tab
}

// AddHelpTab adds a help tab.
func (ws *Workspace) AddHelpTab(content any) *Tab {
	return ws.Tabs.AddTab(HelpTabTitle, KindHelp, content, true)
}

// OpenHelp activates the existing help tab or creates one.
func (ws *Workspace) OpenHelp(newContent func() any) (*Tab, error) {
	tab := ws.Tabs.FindKind(KindHelp)
	if tab == nil {
		tab = ws.AddHelpTab(newContent())
	}
	return tab, ws.Tabs.ActivateTab(tab.ID)
}

// ActivateLoginTab switches to the login tab, creating one if needed.
func (ws *Workspace) ActivateLoginTab() error {
	if active := ws.Tabs.ActiveTab(); active != nil && active.Kind == KindConnection {
		ws.log.Debug("login tab already active", "tab", active.ID)
		return nil
	}
	tab := ws.Tabs.FindKind(KindConnection)
	if tab == nil {
		tab = ws.AddConnectionTab()
	}
	return ws.Tabs.ActivateTab(tab.ID)
}

// CycleTab moves the selection by delta positions with wraparound.
// It is a no-op without an active tab.
func (ws *Workspace) CycleTab(delta int) error {
	idx := ws.Tabs.ActiveIndex()
	n := ws.Tabs.Len()
	if idx < 0 || n == 0 {
		return nil
	}
	next := ((idx+delta)%n + n) % n
	return ws.Tabs.ActivateIndex(next)
}

// ActivateShortcut activates display position n-1 for shortcut n (1..9).
// Positions without a tab are ignored.
func (ws *Workspace) ActivateShortcut(n int) error {
	if n < 1 || n > shortcutTabs || n > ws.Tabs.Len() {
		return nil
	}
	return ws.Tabs.ActivateIndex(n - 1)
}

// ShortcutLabel returns the key hint shown on the tab at position i.
func ShortcutLabel(i int) string {
	if i < 0 || i >= shortcutTabs {
		return ""
	}
	return fmt.Sprintf("alt+%d", i+1)
}
