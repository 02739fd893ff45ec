package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgtabs/internal/db/connection"
	"github.com/rebeliceyang/pgtabs/internal/history"
	"github.com/rebeliceyang/pgtabs/internal/importer"
	"github.com/rebeliceyang/pgtabs/internal/ui/components"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
)

const confirmImport = "import"

// importRequest is a confirmed-pending import. The tab is fixed when the
// file is dropped.
type importRequest struct {
	tabID workspace.TabID
	path  string
}

// handlePaste treats a pasted path to a .sql file as a drop onto the active
// database tab. It reports false when the paste is ordinary text.
func (a *App) handlePaste(text string) (tea.Cmd, bool) {
	tab, screen := a.activeScreen()
	if screen == nil || !importer.IsImportable(text) {
		return nil, false
	}
	a.pendingImport = importRequest{tabID: tab.ID, path: importer.CleanDroppedPath(text)}
	a.overlay.Ask("Import SQL file",
		fmt.Sprintf("Run %s against %s?", filepath.Base(a.pendingImport.path), tab.Title),
		confirmImport)
	return nil, true
}

// startImport runs the pending import in the tab it was dropped on.
// Cancelling the loader cancels the running statement.
func (a *App) startImport() tea.Cmd {
	req := a.pendingImport
	a.pendingImport = importRequest{}
	if req.path == "" {
		return nil
	}
	path := req.path
	tab, screen := a.ws.Tabs.Get(req.tabID), a.screenFor(req.tabID)
	exec, ok := a.execs[req.tabID]
	if tab == nil || screen == nil || !ok {
		a.log.Info("import dropped", "tab", req.tabID, "file", path, "reason", "tab closed")
		a.overlay.Show("Import failed", "The session of this tab is closed.", components.SeverityWarning)
		return nil
	}

	ctx, cancel := context.WithCancel(a.ctx)
	gen, delay := a.ws.Loader.Show("Importing "+filepath.Base(path)+"...", workspace.LoaderOptions{Cancel: cancel})
	a.log.Info("import started", "tab", tab.ID, "file", path)

	tabID, target := tab.ID, screen.Config.Key()
	run := func() tea.Msg {
		defer cancel()
		result, err := importer.Run(ctx, exec, path)
		return importResultMsg{gen: gen, tabID: tabID, target: target, result: result, err: err}
	}
	return tea.Batch(a.revealAfter(gen, delay), run)
}

func (a *App) handleImportResult(msg importResultMsg) tea.Cmd {
	a.ws.Loader.HideIf(msg.gen)
	record := a.record(history.Entry{
		Kind:     history.KindImport,
		Target:   msg.target,
		Detail:   msg.result.File,
		Duration: msg.result.Duration,
		Success:  msg.err == nil,
	}, msg.err)

	switch {
	case errors.Is(msg.err, context.Canceled):
		a.log.Info("import cancelled", "tab", msg.tabID, "file", msg.result.File)
		a.status = "Import cancelled"
		return record
	case msg.err != nil:
		a.log.Warn("import failed", "tab", msg.tabID, "err", msg.err)
		a.overlay.Show("Import failed",
			connection.HumanErrorMessage(msg.err, connection.ErrorOptions{}),
			components.SeverityError)
		return record
	}

	a.log.Info("import finished", "tab", msg.tabID, "file", msg.result.File, "rows", msg.result.RowsAffected)
	a.overlay.Show("Import finished",
		fmt.Sprintf("%s ran in %s.", filepath.Base(msg.result.File), msg.result.Duration.Round(time.Millisecond)),
		components.SeverityInfo)

	// The import may have created relations.
	if screen := a.screenFor(msg.tabID); screen != nil {
		return tea.Batch(record, screen.Init())
	}
	return record
}
