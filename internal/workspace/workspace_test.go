package workspace

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rebeliceyang/pgtabs/internal/models"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	colors, err := LoadColorStore(filepath.Join(t.TempDir(), "colors.yaml"))
	if err != nil {
		t.Fatalf("load colors: %v", err)
	}
	return New(Options{Logger: testLogger(io.Discard), Colors: colors})
}

func TestActivateLoginTab(t *testing.T) {
	ws := newTestWorkspace(t)
	login := ws.AddConnectionTab()
	db := ws.AddDatabaseTab("prod", models.ConnectionConfig{Host: "db"}, nil)
	_ = ws.Tabs.ActivateTab(db.ID)

	if err := ws.ActivateLoginTab(); err != nil {
		t.Fatalf("activate login: %v", err)
	}
	if !ws.Tabs.IsActive(login.ID) {
		t.Errorf("expected login tab active")
	}

	// Already active: still fine, no new tab.
	if err := ws.ActivateLoginTab(); err != nil {
		t.Fatalf("activate login again: %v", err)
	}
	if ws.Tabs.Len() != 2 {
		t.Errorf("expected 2 tabs, got %d", ws.Tabs.Len())
	}
}

func TestActivateLoginTabRecreatesMissing(t *testing.T) {
	ws := newTestWorkspace(t)
	db := ws.AddDatabaseTab("prod", models.ConnectionConfig{}, nil)
	_ = ws.Tabs.ActivateTab(db.ID)

	if err := ws.ActivateLoginTab(); err != nil {
		t.Fatalf("activate login: %v", err)
	}
	active := ws.Tabs.ActiveTab()
	if active.Kind != KindConnection || active.Closeable {
		t.Errorf("expected non-closeable login tab, got %+v", active)
	}
}

func TestCycleTabWraps(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := ws.CycleTab(1); err != nil {
		t.Fatalf("cycle without tabs: %v", err)
	}
	if ws.Tabs.Len() != 0 || ws.Tabs.ActiveTab() != nil {
		t.Fatalf("expected cycle to be a no-op without an active tab")
	}

	c := ws.AddDatabaseTab("C", models.ConnectionConfig{}, nil)
	ws.AddDatabaseTab("B", models.ConnectionConfig{}, nil)
	a := ws.AddDatabaseTab("A", models.ConnectionConfig{}, nil)
	if !ws.Tabs.IsActive(c.ID) {
		t.Fatalf("expected the first tab added to be active")
	}
	_ = ws.CycleTab(1)
	if !ws.Tabs.IsActive(a.ID) {
		t.Errorf("expected next from last to wrap to first")
	}
	_ = ws.CycleTab(-1)
	if !ws.Tabs.IsActive(c.ID) {
		t.Errorf("expected previous from first to wrap to last")
	}
}

func TestActivateShortcut(t *testing.T) {
	ws := newTestWorkspace(t)
	second := ws.AddDatabaseTab("second", models.ConnectionConfig{}, nil)
	first := ws.AddDatabaseTab("first", models.ConnectionConfig{}, nil)
	_ = ws.Tabs.ActivateTab(first.ID)

	if err := ws.ActivateShortcut(2); err != nil {
		t.Fatalf("shortcut: %v", err)
	}
	if !ws.Tabs.IsActive(second.ID) {
		t.Errorf("expected position 1 to be active")
	}
	if err := ws.ActivateShortcut(5); err != nil {
		t.Fatalf("missing position should be ignored, got %v", err)
	}
	if !ws.Tabs.IsActive(second.ID) {
		t.Errorf("expected missing position to leave selection alone")
	}
}

func TestShortcutLabel(t *testing.T) {
	if got := ShortcutLabel(0); got != "alt+1" {
		t.Errorf("expected alt+1, got %q", got)
	}
	if got := ShortcutLabel(9); got != "" {
		t.Errorf("expected no label past nine tabs, got %q", got)
	}
}

func TestOpenHelpReusesTab(t *testing.T) {
	ws := newTestWorkspace(t)
	ws.AddConnectionTab()
	built := 0
	newContent := func() any { built++; return nil }

	first, err := ws.OpenHelp(newContent)
	if err != nil {
		t.Fatalf("open help: %v", err)
	}
	second, _ := ws.OpenHelp(newContent)

	if first.ID != second.ID || built != 1 {
		t.Errorf("expected one help tab, built %d", built)
	}
	if ws.Tabs.FindKind(KindHelp) == nil || !ws.Tabs.IsActive(first.ID) {
		t.Errorf("expected help tab open and active")
	}
}

func TestDatabaseTabsShareColorPerKey(t *testing.T) {
	ws := newTestWorkspace(t)
	a := ws.AddDatabaseTab("a", models.ConnectionConfig{Host: "db", Database: "app"}, nil)
	b := ws.AddDatabaseTab("b", models.ConnectionConfig{Host: "db", Port: 5432, Database: "app"}, nil)
	c := ws.AddDatabaseTab("c", models.ConnectionConfig{Host: "db", Database: "other"}, nil)

	if a.Color == "" || a.Color != b.Color {
		t.Errorf("expected same colour for same key, got %q and %q", a.Color, b.Color)
	}
	if c.Color == a.Color {
		t.Errorf("expected a different colour while the palette has unused entries")
	}
}

func TestColorStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colors.yaml")
	store, err := LoadColorStore(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	color, err := store.ForKey("localhost:5432/postgres")
	if err != nil {
		t.Fatalf("for key: %v", err)
	}

	reloaded, err := LoadColorStore(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := reloaded.Get("localhost:5432/postgres")
	if !ok || got != color {
		t.Errorf("expected %q after reload, got %q", color, got)
	}
}

func TestColorStoreFallsBackWhenPaletteExhausted(t *testing.T) {
	store, _ := LoadColorStore("")
	store.pick = func(int) int { return 0 }
	for i, c := range Palette {
		_ = store.Set(string(rune('a'+i)), c)
	}

	color, err := store.ForKey("extra")
	if err != nil {
		t.Fatalf("for key: %v", err)
	}
	if color != Palette[0] {
		t.Errorf("expected palette reuse, got %q", color)
	}
}

func TestLoaderDebounce(t *testing.T) {
	l := NewLoader(0)
	gen, delay := l.Show("Loading...", LoaderOptions{})
	if delay != DefaultLoaderDelay {
		t.Errorf("expected default delay, got %v", delay)
	}
	if l.Visible() {
		t.Fatal("expected loader hidden before the delay")
	}

	l.Hide()
	if l.Reveal(gen) {
		t.Errorf("expected stale reveal to be ignored after Hide")
	}

	gen, delay = l.Show("Connecting...", LoaderOptions{Delay: 500 * time.Millisecond})
	if delay != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", delay)
	}
	if !l.Reveal(gen) || !l.Visible() {
		t.Errorf("expected current reveal to show the loader")
	}
	if l.Message() != "Connecting..." {
		t.Errorf("expected message, got %q", l.Message())
	}
}

func TestLoaderSupersededReveal(t *testing.T) {
	l := NewLoader(DefaultLoaderDelay)
	old, _ := l.Show("one", LoaderOptions{})
	l.Show("two", LoaderOptions{})
	if l.Reveal(old) {
		t.Errorf("expected older generation to be ignored")
	}
}

func TestLoaderCancel(t *testing.T) {
	l := NewLoader(DefaultLoaderDelay)
	if l.Cancel() {
		t.Errorf("expected nothing to cancel")
	}

	cancelled := false
	l.Show("Connecting...", LoaderOptions{Cancel: func() { cancelled = true }})
	if !l.Cancellable() {
		t.Fatal("expected cancellable loader")
	}
	if !l.Cancel() || !cancelled {
		t.Errorf("expected cancel callback to run")
	}
	if l.Active() {
		t.Errorf("expected loader hidden after cancel")
	}
}

func TestConnectorCancelSuppressesCompletion(t *testing.T) {
	c := NewConnector()
	kept := c.Begin(models.ConnectionConfig{Host: "a"}, "a")
	dropped := c.Begin(models.ConnectionConfig{Host: "b"}, "b")

	if !c.Cancel(dropped.ID) {
		t.Fatal("expected pending request to cancel")
	}
	if c.Cancel(dropped.ID) {
		t.Errorf("expected second cancel to report false")
	}

	if req, apply := c.Complete(dropped.ID); req == nil || apply {
		t.Errorf("expected cancelled request to be discarded, got %v %v", req, apply)
	}
	if req, apply := c.Complete(kept.ID); req == nil || !apply {
		t.Errorf("expected kept request to apply, got %v %v", req, apply)
	}
	if _, apply := c.Complete(kept.ID); apply {
		t.Errorf("expected unknown request to be ignored")
	}
	if c.Pending() != 0 {
		t.Errorf("expected no pending requests, got %d", c.Pending())
	}
}

func TestLoaderHideIfKeepsNewerOperation(t *testing.T) {
	l := NewLoader(DefaultLoaderDelay)
	first, _ := l.Show("Connecting...", LoaderOptions{})
	second, _ := l.Show("Connecting...", LoaderOptions{})

	if l.HideIf(first) {
		t.Errorf("expected finished older operation to leave the loader alone")
	}
	if !l.Active() {
		t.Fatal("expected loader still armed")
	}
	if !l.HideIf(second) || l.Active() {
		t.Errorf("expected current operation to hide the loader")
	}
}
