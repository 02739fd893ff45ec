package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgtabs/internal/db/connection"
	"github.com/rebeliceyang/pgtabs/internal/db/metadata"
	"github.com/rebeliceyang/pgtabs/internal/history"
	"github.com/rebeliceyang/pgtabs/internal/importer"
	"github.com/rebeliceyang/pgtabs/internal/logx"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/ui/components"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
)

// DefaultSource reads catalog and rows through the connection's pool
func DefaultSource(conn *connection.Connection) components.DataSource {
	return metadata.NewCatalog(conn.Pool)
}

// DefaultExecutor runs imports through the connection's pool
func DefaultExecutor(conn *connection.Connection) importer.Executor {
	return conn.Pool
}

func (a *App) handleConnectRequest(msg components.ConnectRequestMsg) tea.Cmd {
	cfg := msg.Config
	if msg.SavedID != "" && a.deps.Saved != nil {
		for _, entry := range a.deps.Saved.GetAll() {
			if entry.ID == msg.SavedID {
				cfg = a.deps.Saved.ConfigWithPassword(entry)
				break
			}
		}
	}
	return a.openConnection(a.withPassword(cfg), msg.Name)
}

// openConnection starts a cancellable connection open. The result arrives
// as a connectResultMsg.
func (a *App) openConnection(cfg models.ConnectionConfig, name string) tea.Cmd {
	req := a.ws.Connects.Begin(cfg, name)
	connects := a.ws.Connects
	gen, delay := a.ws.Loader.Show("Connecting...", workspace.LoaderOptions{
		Delay:  a.cfg.ConnectLoaderDelay(),
		Cancel: func() { connects.Cancel(req.ID) },
	})
	logx.WithConnection(a.log, cfg).Debug("connecting", "request", req.ID)

	ctx, conns := a.ctx, a.deps.Conns
	dial := func() tea.Msg {
		start := time.Now()
		conn, err := conns.Connect(ctx, cfg)
		return connectResultMsg{id: req.ID, gen: gen, conn: conn, err: err, elapsed: time.Since(start)}
	}
	return tea.Batch(a.revealAfter(gen, delay), dial)
}

func (a *App) handleConnectResult(msg connectResultMsg) tea.Cmd {
	req, apply := a.ws.Connects.Complete(msg.id)
	if req == nil {
		return nil
	}
	log := logx.WithConnection(a.log, req.Config)
	if !apply {
		log.Info("connection result discarded", "request", req.ID, "reason", "cancelled")
		if msg.conn != nil {
			if err := a.deps.Conns.Disconnect(msg.conn.ID); err != nil {
				log.Warn("close cancelled connection failed", "err", err)
			}
		}
		return nil
	}
	a.ws.Loader.HideIf(msg.gen)

	record := a.record(history.Entry{
		Kind:     history.KindConnect,
		Target:   req.Config.Key(),
		Detail:   req.Config.TabTitle(req.Name),
		Duration: msg.elapsed,
		Success:  msg.err == nil,
	}, msg.err)

	if msg.err != nil {
		log.Warn("connection failed", "err", msg.err)
		a.overlay.Show("Connection error",
			connection.HumanErrorMessage(msg.err, connection.ErrorOptions{}),
			components.SeverityError)
		return record
	}

	conn := msg.conn
	screen := components.NewDBScreen(components.DBScreenOptions{
		Context:       a.ctx,
		ConnID:        conn.ID,
		Name:          req.Name,
		Config:        req.Config,
		Source:        a.newSource(conn),
		Theme:         a.theme,
		Limit:         a.cfg.General.DefaultLimit,
		DefaultSchema: a.cfg.General.DefaultSchema,
		Locale:        a.cfg.General.Locale,
	})
	tab := a.ws.AddDatabaseTab(screen.BaseTitle(), conn.Config, screen)
	screen.TabID = tab.ID
	a.execs[tab.ID] = a.newExecutor(conn)

	tabID, connID, conns := tab.ID, conn.ID, a.deps.Conns
	tabLog := logx.WithTab(log, string(tab.ID))
	screen.SetOnDestroy(func() {
		delete(a.execs, tabID)
		if err := conns.Disconnect(connID); err != nil {
			tabLog.Warn("disconnect failed", "connection", connID, "err", err)
		}
	})
	a.resize()

	if a.modalOpen() {
		tabLog.Info("new tab left in background", "reason", "dialog open")
		a.status = "Connected to " + tab.Title
	} else if err := a.ws.Tabs.ActivateTab(tab.ID); err != nil {
		tabLog.Warn("activate new tab failed", "err", err)
	}
	tabLog.Info("connected", "connection", connID, "elapsed", msg.elapsed)

	if a.deps.Saved != nil {
		saved := req.Config
		saved.Name = req.Name
		if err := a.deps.Saved.Add(saved); err != nil {
			tabLog.Warn("save connection failed", "err", err)
		}
		a.refreshLoginForms()
	}
	return tea.Batch(record, screen.Init())
}

func (a *App) newSource(conn *connection.Connection) components.DataSource {
	if a.deps.NewSource != nil {
		return a.deps.NewSource(conn)
	}
	return DefaultSource(conn)
}

func (a *App) newExecutor(conn *connection.Connection) importer.Executor {
	if a.deps.NewExecutor != nil {
		return a.deps.NewExecutor(conn)
	}
	return DefaultExecutor(conn)
}

// record writes entry to the activity log off the update loop and reads
// back the recent entries for the login tabs.
func (a *App) record(entry history.Entry, err error) tea.Cmd {
	if a.deps.History == nil {
		return nil
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	ctx, store, log := a.ctx, a.deps.History, a.log
	return func() tea.Msg {
		if err := store.Add(ctx, entry); err != nil {
			log.Warn("record history failed", "kind", entry.Kind, "err", err)
			return nil
		}
		return readActivity(ctx, store, log)
	}
}
