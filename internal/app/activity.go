package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgtabs/internal/history"
	"github.com/rebeliceyang/pgtabs/internal/ui/components"
	"pkt.systems/pslog"
)

const recentActivity = 5

// loadActivity reads the newest activity log entries for the login tabs
func (a *App) loadActivity() tea.Cmd {
	if a.deps.History == nil {
		return nil
	}
	ctx, store, log := a.ctx, a.deps.History, a.log
	return func() tea.Msg {
		return readActivity(ctx, store, log)
	}
}

func readActivity(ctx context.Context, store Recorder, log pslog.Logger) tea.Msg {
	entries, err := store.GetRecent(ctx, recentActivity)
	if err != nil {
		log.Warn("read history failed", "err", err)
		return nil
	}
	return activityMsg{entries: entries}
}

func activityItems(entries []history.Entry) []components.ActivityItem {
	items := make([]components.ActivityItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, components.ActivityItem{OK: e.Success, Text: describeActivity(e)})
	}
	return items
}

func describeActivity(e history.Entry) string {
	var b strings.Builder
	b.WriteString(e.OccurredAt.Local().Format("15:04"))
	b.WriteString(" ")
	switch e.Kind {
	case history.KindImport:
		b.WriteString("import " + filepath.Base(e.Detail) + " on " + e.Target)
	default:
		b.WriteString("connect ")
		if e.Detail != "" && e.Detail != e.Target {
			b.WriteString(e.Detail + " (" + e.Target + ")")
		} else {
			b.WriteString(e.Target)
		}
	}
	switch {
	case e.Success:
		b.WriteString(" in " + e.Duration.Round(time.Millisecond).String())
	case e.ErrorMessage != "":
		msg, _, _ := strings.Cut(e.ErrorMessage, "\n")
		b.WriteString(": " + msg)
	}
	return b.String()
}
