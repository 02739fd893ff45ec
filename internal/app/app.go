// Package app is the workspace controller: a Bubble Tea model that routes
// keys, mouse and window events to the tab registry, the quick switcher and
// the session screens.
package app

import (
	"context"
	"errors"
	"io"
	"os/user"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgtabs/internal/config"
	"github.com/rebeliceyang/pgtabs/internal/db/connection"
	"github.com/rebeliceyang/pgtabs/internal/history"
	"github.com/rebeliceyang/pgtabs/internal/importer"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/ui/components"
	"github.com/rebeliceyang/pgtabs/internal/ui/help"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
	"pkt.systems/pslog"
)

// Opener opens and closes database sessions. connection.Manager satisfies it.
type Opener interface {
	Connect(ctx context.Context, cfg models.ConnectionConfig) (*connection.Connection, error)
	Disconnect(id string) error
	SetActive(id string) error
	// Ping checks the active connection and returns its id.
	Ping(ctx context.Context) (string, error)
}

// SavedConnections is the saved connection list shown on login tabs.
// connection_history.Manager satisfies it.
type SavedConnections interface {
	Add(cfg models.ConnectionConfig) error
	GetAll() []models.ConnectionHistoryEntry
	GetRecent(limit int) []models.ConnectionHistoryEntry
	Last() (models.ConnectionHistoryEntry, bool)
	Delete(id string) error
	ConfigWithPassword(entry models.ConnectionHistoryEntry) models.ConnectionConfig
}

// Recorder logs connection attempts and imports. history.Store satisfies it.
type Recorder interface {
	Add(ctx context.Context, entry history.Entry) error
	GetRecent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Deps are the collaborators of the controller
type Deps struct {
	Config *config.Config
	Logger pslog.Logger
	Conns  Opener
	Saved  SavedConnections
	// History is optional.
	History Recorder
	// Discover lists local instances for the login tab. Optional.
	Discover func(ctx context.Context) []models.DiscoveredInstance
	// LookupPassword fills in a missing password, from .pgpass for example. Optional.
	LookupPassword func(cfg models.ConnectionConfig) string
	// Clipboard overrides the system clipboard. Optional.
	Clipboard   func(string) error
	NewSource   func(conn *connection.Connection) components.DataSource
	NewExecutor func(conn *connection.Connection) importer.Executor
	// ManualDefaults prefills the manual connection form, from PG* variables for example.
	ManualDefaults *models.ConnectionConfig
	// InitialArg is the command line argument, normally a connection URL.
	InitialArg string
}

const (
	recentConnections  = 20
	defaultPingTimeout = 5 * time.Second
)

// App is the main application model
type App struct {
	ctx   context.Context
	ws    *workspace.Workspace
	cfg   *config.Config
	deps  Deps
	log   pslog.Logger
	theme theme.Theme
	keys  KeyMap

	width  int
	height int

	tabBar   *components.TabBar
	switcher *components.TableSwitcher
	overlay  *components.MessageOverlay
	loader   *components.LoaderOverlay

	discovered  []models.DiscoveredInstance
	discovering bool
	defaultUser string
	activity    []components.ActivityItem

	execs         map[workspace.TabID]importer.Executor
	pendingImport importRequest
	status        string

	titleDirty  bool
	pingDue     bool
	unsubscribe []func()
}

// New creates the controller for ws. The workspace gets a login tab if it
// has none.
func New(ctx context.Context, ws *workspace.Workspace, deps Deps) *App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	th := theme.GetTheme(cfg.UI.Theme)

	a := &App{
		ctx:         ctx,
		ws:          ws,
		cfg:         cfg,
		deps:        deps,
		log:         deps.Logger,
		theme:       th,
		keys:        NewKeyMap(cfg.Keys),
		tabBar:      components.NewTabBar(th),
		switcher:    components.NewTableSwitcher(th, cfg.General.DefaultSchema, cfg.General.Locale),
		overlay:     components.NewMessageOverlay(th),
		loader:      components.NewLoaderOverlay(th),
		discovering: deps.Discover != nil,
		execs:       make(map[workspace.TabID]importer.Executor),
		titleDirty:  true,
	}
	if a.log == nil {
		a.log = pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured})
	}
	if u, err := user.Current(); err == nil {
		a.defaultUser = u.Username
	}
	a.tabBar.ShowShortcuts = cfg.UI.ShowTabShortcuts
	a.switcher.CopyKey = a.keys.CopyTableName
	if deps.Clipboard != nil {
		a.switcher.SetClipboard(deps.Clipboard)
	}
	ws.Loader.SetDelay(cfg.LoaderDelay())
	ws.SetLoginContent(func() any { return a.newLoginForm() })

	a.unsubscribe = append(a.unsubscribe,
		ws.Tabs.Subscribe(a.followActiveConnection),
		ws.Tabs.Subscribe(func(workspace.TabID) { a.titleDirty = true }),
	)

	if ws.Tabs.Len() == 0 {
		ws.AddConnectionTab()
	}
	return a
}

// Close detaches the registry observers. Call it after the program exits.
func (a *App) Close() {
	for _, cancel := range a.unsubscribe {
		cancel()
	}
	a.unsubscribe = nil
}

// Workspace exposes the workspace the controller drives
func (a *App) Workspace() *workspace.Workspace {
	return a.ws
}

// followActiveConnection makes the connection manager's active connection
// track the active tab. Activating a database tab schedules a health check.
func (a *App) followActiveConnection(id workspace.TabID) {
	connID := ""
	if tab := a.ws.Tabs.Get(id); tab != nil {
		if screen, ok := tab.Content.(*components.DBScreen); ok {
			connID = screen.ConnID
		}
	}
	if err := a.deps.Conns.SetActive(connID); err != nil {
		a.log.Warn("set active connection failed", "tab", id, "connection", connID, "err", err)
		return
	}
	a.pingDue = connID != ""
}

func (a *App) newLoginForm() *components.ConnectionForm {
	f := components.NewConnectionForm(a.theme)
	f.DefaultUser = a.defaultUser
	f.SSLMode = a.cfg.Connection.SSLMode
	f.Prefill = a.deps.ManualDefaults
	f.Width, f.Height = a.bodySize()
	if a.deps.Saved != nil {
		f.SetSaved(a.deps.Saved.GetRecent(recentConnections))
	}
	if !a.discovering {
		f.SetDiscovered(a.discovered)
	}
	f.SetActivity(a.activity)
	return f
}

// refreshLoginForms pushes the saved and discovered lists into every login tab
func (a *App) refreshLoginForms() {
	for _, tab := range a.ws.Tabs.Tabs() {
		f, ok := tab.Content.(*components.ConnectionForm)
		if !ok {
			continue
		}
		if a.deps.Saved != nil {
			f.SetSaved(a.deps.Saved.GetRecent(recentConnections))
		}
		if !a.discovering {
			f.SetDiscovered(a.discovered)
		}
		f.SetActivity(a.activity)
	}
}

// activeScreen returns the database screen of the active tab
func (a *App) activeScreen() (*workspace.Tab, *components.DBScreen) {
	tab := a.ws.Tabs.ActiveTab()
	if tab == nil {
		return nil, nil
	}
	screen, _ := tab.Content.(*components.DBScreen)
	return tab, screen
}

// screenByConn finds the tab holding connection connID
func (a *App) screenByConn(connID string) (*workspace.Tab, *components.DBScreen) {
	for _, tab := range a.ws.Tabs.Tabs() {
		if screen, ok := tab.Content.(*components.DBScreen); ok && screen.ConnID == connID {
			return tab, screen
		}
	}
	return nil, nil
}

// modalOpen reports whether a dialog owns the input. The active tab must
// not change under it.
func (a *App) modalOpen() bool {
	return a.overlay.Visible || a.switcher.IsOpen()
}

func (a *App) screenFor(id workspace.TabID) *components.DBScreen {
	tab := a.ws.Tabs.Get(id)
	if tab == nil {
		return nil
	}
	screen, _ := tab.Content.(*components.DBScreen)
	return screen
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.discover(), a.loadActivity(), a.startupConnection()}
	return tea.Batch(cmds...)
}

func (a *App) discover() tea.Cmd {
	if a.deps.Discover == nil {
		return nil
	}
	ctx, discover := a.ctx, a.deps.Discover
	return func() tea.Msg {
		return discoveryMsg{instances: discover(ctx)}
	}
}

// startupConnection connects to the command line URL, or to the last saved
// connection when auto_connect_last is set.
func (a *App) startupConnection() tea.Cmd {
	if arg := a.deps.InitialArg; arg != "" {
		if !connection.IsConnectionURL(arg) {
			a.overlay.Show("Can't recognize argument "+arg,
				"Expected:\n  postgres://user@server/dbname \n  postgresql://user@server/dbname",
				components.SeverityWarning)
			return nil
		}
		cfg, err := connection.ParseURL(arg)
		if err != nil {
			a.overlay.Show("Can't recognize argument "+arg, err.Error(), components.SeverityWarning)
			return nil
		}
		return a.openConnection(a.withPassword(cfg), "")
	}

	if a.cfg.General.AutoConnectLast && a.deps.Saved != nil {
		if entry, ok := a.deps.Saved.Last(); ok {
			a.log.Info("auto connecting to last connection", "connection", entry.ToConnectionConfig().Key())
			return a.openConnection(a.withPassword(a.deps.Saved.ConfigWithPassword(entry)), entry.Name)
		}
	}
	return nil
}

func (a *App) withPassword(cfg models.ConnectionConfig) models.ConnectionConfig {
	if cfg.Password == "" && a.deps.LookupPassword != nil {
		cfg.Password = a.deps.LookupPassword(cfg)
	}
	return cfg
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	if a.titleDirty {
		a.titleDirty = false
		cmd = tea.Batch(cmd, tea.SetWindowTitle(a.windowTitle()))
	}
	if a.pingDue {
		a.pingDue = false
		cmd = tea.Batch(cmd, a.pingActive())
	}
	return a, cmd
}

// pingActive checks the connection of the tab that just became active
func (a *App) pingActive() tea.Cmd {
	ctx, conns, timeout := a.ctx, a.deps.Conns, a.cfg.ConnectTimeout()
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		id, err := conns.Ping(ctx)
		return pingResultMsg{connID: id, err: err}
	}
}

func (a *App) handlePingResult(msg pingResultMsg) tea.Cmd {
	if errors.Is(msg.err, connection.ErrNoActiveConnection) {
		return nil
	}
	tab, _ := a.screenByConn(msg.connID)
	if tab == nil {
		return nil
	}
	if msg.err != nil {
		a.log.Warn("connection check failed", "tab", tab.ID, "connection", msg.connID, "err", msg.err)
		if a.ws.Tabs.IsActive(tab.ID) {
			a.status = "Connection lost: " + connection.HumanErrorMessage(msg.err, connection.ErrorOptions{})
		}
		return nil
	}
	a.log.Debug("connection alive", "tab", tab.ID, "connection", msg.connID)
	return nil
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.resize()
		return nil

	case tea.FocusMsg:
		a.ws.Focused = true
		return nil

	case tea.BlurMsg:
		a.ws.Focused = false
		return nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case loaderRevealMsg:
		if a.ws.Loader.Reveal(msg.gen) {
			return a.loader.Spinner.Tick
		}
		return nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if a.ws.Loader.Visible() {
			var cmd tea.Cmd
			a.loader.Spinner, cmd = a.loader.Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.switcher.IsOpen() {
			var cmd tea.Cmd
			a.switcher, cmd = a.switcher.Update(msg)
			cmds = append(cmds, cmd)
		}
		return tea.Batch(cmds...)

	case discoveryMsg:
		a.discovered = msg.instances
		a.discovering = false
		a.refreshLoginForms()
		return nil

	case activityMsg:
		a.activity = activityItems(msg.entries)
		a.refreshLoginForms()
		return nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			a.log.Warn("config reload failed", "err", msg.Err)
			a.overlay.Show("Config error", msg.Err.Error(), components.SeverityWarning)
			return nil
		}
		a.applyConfig(msg.Config)
		return nil

	case components.ConnectRequestMsg:
		return a.handleConnectRequest(msg)

	case components.DeleteSavedMsg:
		if a.deps.Saved != nil {
			if err := a.deps.Saved.Delete(msg.ID); err != nil {
				a.log.Warn("delete saved connection failed", "id", msg.ID, "err", err)
			}
			a.refreshLoginForms()
		}
		return nil

	case connectResultMsg:
		return a.handleConnectResult(msg)

	case components.TablesLoadedMsg:
		if screen := a.screenFor(msg.TabID); screen != nil {
			_, cmd := screen.Update(msg)
			return cmd
		}
		return nil

	case components.TableDataMsg:
		if screen := a.screenFor(msg.TabID); screen != nil {
			_, cmd := screen.Update(msg)
			return cmd
		}
		return nil

	case components.TitleChangedMsg:
		if err := a.ws.Tabs.SetTitle(msg.TabID, msg.Title); err != nil {
			a.log.Debug("retitle skipped", "tab", msg.TabID, "err", err)
			return nil
		}
		if a.ws.Tabs.IsActive(msg.TabID) {
			a.titleDirty = true
		}
		return nil

	case components.TableSelectedMsg:
		if screen := a.screenFor(msg.TabID); screen != nil {
			return screen.OpenTable(msg.Schema, msg.Name)
		}
		a.log.Info("table selection dropped", "tab", msg.TabID, "reason", "tab closed")
		return nil

	case pingResultMsg:
		return a.handlePingResult(msg)

	case components.SwitcherFailedMsg:
		a.log.Warn("quick switcher load failed", "err", msg.Err)
		a.overlay.Show("Could not load tables", msg.Err.Error(), components.SeverityWarning)
		return nil

	case components.SwitcherCopiedMsg:
		if msg.Err != nil {
			a.overlay.Show("Clipboard error", msg.Err.Error(), components.SeverityWarning)
			return nil
		}
		a.status = "Copied " + msg.Text
		return nil

	case components.SwitcherClosedMsg, components.MessageDismissedMsg:
		return nil

	case components.ConfirmedMsg:
		if msg.Tag == confirmImport {
			return a.startImport()
		}
		return nil

	case importResultMsg:
		return a.handleImportResult(msg)
	}

	if a.switcher.IsOpen() {
		var cmd tea.Cmd
		a.switcher, cmd = a.switcher.Update(msg)
		return cmd
	}
	return a.updateContent(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.Quit) {
		return tea.Quit
	}
	a.status = ""

	if a.overlay.Visible {
		var cmd tea.Cmd
		a.overlay, cmd = a.overlay.Update(msg)
		return cmd
	}

	if msg.String() == "esc" && a.ws.Loader.Cancellable() {
		a.log.Info("loader cancelled", "operation", a.ws.Loader.Message())
		a.ws.Loader.Cancel()
		return nil
	}

	if a.switcher.IsOpen() {
		var cmd tea.Cmd
		a.switcher, cmd = a.switcher.Update(msg)
		return cmd
	}

	if msg.Paste {
		if cmd, ok := a.handlePaste(string(msg.Runes)); ok {
			return cmd
		}
		return a.updateContent(msg)
	}

	for i, b := range a.keys.Shortcuts {
		if key.Matches(msg, b) {
			return a.logErr("activate shortcut", a.ws.ActivateShortcut(i+1))
		}
	}

	switch {
	case key.Matches(msg, a.keys.NextTab):
		return a.logErr("next tab", a.ws.CycleTab(1))
	case key.Matches(msg, a.keys.PrevTab):
		return a.logErr("previous tab", a.ws.CycleTab(-1))
	case key.Matches(msg, a.keys.CloseTab):
		if _, err := a.ws.Tabs.CloseCurrentTab(); err != nil {
			a.log.Warn("close tab failed", "err", err)
		}
		a.resize()
		return nil
	case key.Matches(msg, a.keys.LoginTab):
		return a.logErr("activate login tab", a.ws.ActivateLoginTab())
	case key.Matches(msg, a.keys.Help):
		_, err := a.ws.OpenHelp(func() any { return &help.Screen{Sections: a.keys.HelpSections()} })
		return a.logErr("open help", err)
	case key.Matches(msg, a.keys.QuickSwitcher):
		return a.openSwitcher()
	case key.Matches(msg, a.keys.NewConnection):
		return a.reconnectActive()
	case key.Matches(msg, a.keys.NextTable):
		if _, screen := a.activeScreen(); screen != nil {
			return screen.NextTable()
		}
		return nil
	case key.Matches(msg, a.keys.PrevTable):
		if _, screen := a.activeScreen(); screen != nil {
			return screen.PrevTable()
		}
		return nil
	}

	return a.updateContent(msg)
}

func (a *App) logErr(op string, err error) tea.Cmd {
	if err != nil {
		a.log.Warn(op+" failed", "err", err)
	}
	return nil
}

// openSwitcher opens the quick switcher on database tabs. Other tabs ignore the key.
func (a *App) openSwitcher() tea.Cmd {
	tab, screen := a.activeScreen()
	if tab == nil || tab.Kind != workspace.KindDatabase {
		return nil
	}
	var provider components.DataSource
	if screen != nil {
		provider = screen.Source
	}
	cmd, err := a.switcher.Open(a.ctx, tab.ID, provider)
	if err != nil {
		a.log.Info("quick switcher not opened", "tab", tab.ID, "err", err)
		a.overlay.Show("Quick switcher", "Open a database connection first.", components.SeverityInfo)
		return nil
	}
	return cmd
}

// reconnectActive opens another connection with the active session's options
func (a *App) reconnectActive() tea.Cmd {
	_, screen := a.activeScreen()
	if screen == nil {
		return nil
	}
	cfg := screen.Config
	name := cfg.TabName
	if name == "" {
		name = cfg.Host
	}
	if name == "" {
		name = "DB"
	}
	return a.openConnection(cfg, name)
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !a.cfg.UI.MouseEnabled || a.overlay.Visible {
		return nil
	}
	if a.switcher.IsOpen() {
		var cmd tea.Cmd
		a.switcher, cmd = a.switcher.Update(msg)
		return cmd
	}
	if msg.Y == 0 && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		id, onClose, ok := a.tabBar.HitTest(msg.X)
		if !ok {
			return nil
		}
		if onClose {
			if err := a.ws.Tabs.CloseTab(id); err != nil {
				a.log.Warn("close tab failed", "tab", id, "err", err)
			}
			a.resize()
			return nil
		}
		return a.logErr("activate tab", a.ws.Tabs.ActivateTab(id))
	}
	return a.updateContent(msg)
}

// updateContent forwards msg to the active tab's screen
func (a *App) updateContent(msg tea.Msg) tea.Cmd {
	tab := a.ws.Tabs.ActiveTab()
	if tab == nil {
		return nil
	}
	var cmd tea.Cmd
	switch c := tab.Content.(type) {
	case *components.ConnectionForm:
		_, cmd = c.Update(msg)
	case *components.DBScreen:
		_, cmd = c.Update(msg)
	}
	return cmd
}

func (a *App) applyConfig(cfg *config.Config) {
	a.cfg = cfg
	a.theme = theme.GetTheme(cfg.UI.Theme)
	a.keys = NewKeyMap(cfg.Keys)
	a.ws.Loader.SetDelay(cfg.LoaderDelay())

	a.tabBar.Theme = a.theme
	a.tabBar.ShowShortcuts = cfg.UI.ShowTabShortcuts
	a.switcher.Theme = a.theme
	a.switcher.CopyKey = a.keys.CopyTableName
	a.overlay.Theme = a.theme
	a.loader.Theme = a.theme
	for _, tab := range a.ws.Tabs.Tabs() {
		switch c := tab.Content.(type) {
		case *components.ConnectionForm:
			c.Theme = a.theme
		case *components.DBScreen:
			c.Theme = a.theme
			c.Table().Theme = a.theme
		}
	}
	a.log.Info("config reloaded", "theme", a.theme.Name)
}

func (a *App) revealAfter(gen uint64, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg { return loaderRevealMsg{gen: gen} })
}
