package components

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/switcher"
	"github.com/rebeliceyang/pgtabs/internal/ui/theme"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
	"pkt.systems/pslog"
)

type fakeSource struct {
	catalog models.Catalog
	calls   []string
}

func (f *fakeSource) ListSchemasAndTables(context.Context) (models.Catalog, error) {
	return f.catalog, nil
}

func (f *fakeSource) TableData(_ context.Context, schema, table string, offset, limit int) (*models.TableData, error) {
	f.calls = append(f.calls, schema+"."+table)
	return &models.TableData{Columns: []string{"id"}, Rows: [][]string{{"1"}}, TotalRows: 1}, nil
}

func testCatalog() models.Catalog {
	return models.Catalog{
		"public": {{Name: "users", Type: "BASE TABLE"}, {Name: "orders", Type: "BASE TABLE"}},
		"sales":  {{Name: "orders", Type: "VIEW"}},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func openSwitcher(t *testing.T) *TableSwitcher {
	t.Helper()
	ts := NewTableSwitcher(theme.DefaultTheme(), "public", "en")
	if _, err := ts.Open(context.Background(), "tab-1", &fakeSource{catalog: testCatalog()}); err != nil {
		t.Fatalf("open: %v", err)
	}
	ts, _ = ts.Update(switcherCatalogMsg{session: ts.session, catalog: testCatalog()})
	if ts.Switcher.State() != switcher.StateReady {
		t.Fatalf("expected ready, got %s", ts.Switcher.State())
	}
	return ts
}

func TestTableSwitcherWithoutSession(t *testing.T) {
	ts := NewTableSwitcher(theme.DefaultTheme(), "public", "en")
	if _, err := ts.Open(context.Background(), "tab-1", nil); !errors.Is(err, switcher.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if ts.IsOpen() {
		t.Error("expected switcher to stay closed")
	}
}

func TestTableSwitcherTypeAndSelect(t *testing.T) {
	ts := openSwitcher(t)

	ts, _ = ts.Update(keyRunes("ord"))
	if got := ts.Switcher.Query(); got != "ord" {
		t.Fatalf("expected query ord, got %q", got)
	}
	ts, _ = ts.Update(tea.KeyMsg{Type: tea.KeyDown})
	ts, cmd := ts.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg, ok := run(cmd).(TableSelectedMsg)
	if !ok {
		t.Fatalf("expected TableSelectedMsg, got %T", run(cmd))
	}
	if msg.Schema != "sales" || msg.Name != "orders" {
		t.Errorf("expected sales.orders, got %s.%s", msg.Schema, msg.Name)
	}
	if msg.TabID != "tab-1" {
		t.Errorf("expected the opening tab on the selection, got %q", msg.TabID)
	}
	if ts.IsOpen() {
		t.Error("expected switcher to close after selection")
	}
}

func TestTableSwitcherStaleCatalogIgnored(t *testing.T) {
	ts := NewTableSwitcher(theme.DefaultTheme(), "public", "en")
	if _, err := ts.Open(context.Background(), "tab-1", &fakeSource{}); err != nil {
		t.Fatal(err)
	}
	stale := ts.session
	ts.Close()
	if _, err := ts.Open(context.Background(), "tab-1", &fakeSource{}); err != nil {
		t.Fatal(err)
	}

	ts, _ = ts.Update(switcherCatalogMsg{session: stale, catalog: testCatalog()})
	if ts.Switcher.State() != switcher.StateLoading {
		t.Errorf("expected stale catalog to be dropped, state %s", ts.Switcher.State())
	}
}

func TestTableSwitcherLoadFailure(t *testing.T) {
	ts := NewTableSwitcher(theme.DefaultTheme(), "public", "en")
	if _, err := ts.Open(context.Background(), "tab-1", &fakeSource{}); err != nil {
		t.Fatal(err)
	}
	ts, cmd := ts.Update(switcherCatalogMsg{session: ts.session, err: errors.New("boom")})
	msg, ok := run(cmd).(SwitcherFailedMsg)
	if !ok {
		t.Fatalf("expected SwitcherFailedMsg, got %T", run(cmd))
	}
	var loadErr *switcher.CatalogLoadError
	if !errors.As(msg.Err, &loadErr) {
		t.Errorf("expected CatalogLoadError, got %v", msg.Err)
	}
	if ts.IsOpen() {
		t.Error("expected switcher closed after failure")
	}
}

func TestTableSwitcherCopyAndEscape(t *testing.T) {
	ts := openSwitcher(t)
	var copied string
	ts.SetClipboard(func(s string) error {
		copied = s
		return nil
	})

	_, cmd := ts.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	msg, ok := run(cmd).(SwitcherCopiedMsg)
	if !ok || msg.Err != nil {
		t.Fatalf("expected successful copy, got %#v", run(cmd))
	}
	if copied != "public.orders" {
		t.Errorf("expected public.orders copied, got %q", copied)
	}

	_, cmd = ts.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := run(cmd).(SwitcherClosedMsg); !ok {
		t.Error("expected SwitcherClosedMsg on esc")
	}
	if ts.IsOpen() {
		t.Error("expected switcher closed")
	}
}

func TestTableSwitcherEmptyPlaceholder(t *testing.T) {
	ts := openSwitcher(t)
	ts, _ = ts.Update(keyRunes("zzz"))
	if !strings.Contains(ts.View(), switcher.EmptyPlaceholder) {
		t.Errorf("expected placeholder in view")
	}
	_, cmd := ts.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected enter on empty list to do nothing")
	}
}

func TestTableSwitcherMouse(t *testing.T) {
	ts := openSwitcher(t)
	ts.Width, ts.Height = 40, 20
	ts.SetOrigin(10, 1)
	_ = ts.View()

	firstRow := 1 + listTop
	ts, _ = ts.Update(tea.MouseMsg{X: 12, Y: firstRow + 1, Action: tea.MouseActionMotion})
	if got := ts.Switcher.SelectedIndex(); got != 1 {
		t.Fatalf("hover should highlight row 1, got %d", got)
	}

	ts, cmd := ts.Update(tea.MouseMsg{X: 2, Y: firstRow + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if cmd != nil || !ts.IsOpen() {
		t.Fatalf("a click left of the dialog should be ignored")
	}
	ts, _ = ts.Update(tea.MouseMsg{X: 12, Y: firstRow - 1, Action: tea.MouseActionMotion})
	if got := ts.Switcher.SelectedIndex(); got != 1 {
		t.Errorf("hovering the input line should keep the highlight, got %d", got)
	}

	want := ts.Switcher.Entries()[2]
	ts, cmd = ts.Update(tea.MouseMsg{X: 12, Y: firstRow + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	msg, ok := run(cmd).(TableSelectedMsg)
	if !ok {
		t.Fatalf("expected TableSelectedMsg on click, got %T", run(cmd))
	}
	if msg.Schema != want.Schema || msg.Name != want.Name || msg.TabID != "tab-1" {
		t.Errorf("expected %s.%s on tab-1, got %+v", want.Schema, want.Name, msg)
	}
	if ts.IsOpen() {
		t.Error("expected switcher closed after a click")
	}
}

func TestTabBarHitTest(t *testing.T) {
	bar := NewTabBar(theme.DefaultTheme())
	bar.ShowShortcuts = false
	items := []TabItem{
		{ID: "db", Title: "orders", Active: true, Closeable: true},
		{ID: "login", Title: "Connection"},
	}
	bar.Render(items, 0, true)

	// " " marker, " orders × " label
	if id, onClose, ok := bar.HitTest(2); !ok || id != "db" || onClose {
		t.Errorf("expected title hit on db, got %q %v %v", id, onClose, ok)
	}
	// marker, padding, "orders", space, then the glyph
	closeCol := 9
	if id, onClose, ok := bar.HitTest(closeCol); !ok || id != "db" || !onClose {
		t.Errorf("expected close hit on db at %d, got %q %v %v", closeCol, id, onClose, ok)
	}
	if id, onClose, ok := bar.HitTest(14); !ok || id != "login" || onClose {
		t.Errorf("expected login hit, got %q %v %v", id, onClose, ok)
	}
	if _, _, ok := bar.HitTest(200); ok {
		t.Error("expected miss past the last tab")
	}
}

func TestItemsFollowRegistryOrder(t *testing.T) {
	log := pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	reg := workspace.NewRegistry(log, func() workspace.TabSpec {
		return workspace.TabSpec{Title: "Connection", Kind: workspace.KindConnection}
	})
	a := reg.AddTab("A", workspace.KindDatabase, nil, true)
	reg.AddTab("B", workspace.KindDatabase, nil, true)
	if err := reg.ActivateTab(a.ID); err != nil {
		t.Fatal(err)
	}

	items := Items(reg)
	if len(items) != 2 || items[0].Title != "B" || items[1].Title != "A" {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].Active || !items[1].Active {
		t.Error("expected A active")
	}
	if items[0].Shortcut != "alt+1" || items[1].Shortcut != "alt+2" {
		t.Errorf("unexpected shortcuts %q %q", items[0].Shortcut, items[1].Shortcut)
	}
}

func TestConnectionFormManualValidation(t *testing.T) {
	f := NewConnectionForm(theme.DefaultTheme())
	f.StartManual(nil)
	f.Inputs[fieldPort].SetValue("abc")
	f.Inputs[fieldUser].SetValue("alice")

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || f.Err == "" {
		t.Fatalf("expected validation error, got err=%q", f.Err)
	}

	f.Inputs[fieldPort].SetValue("6543")
	f.Inputs[fieldName].SetValue("prod")
	f, cmd = f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	req, ok := run(cmd).(ConnectRequestMsg)
	if !ok {
		t.Fatalf("expected ConnectRequestMsg, got %T", run(cmd))
	}
	if req.Name != "prod" || req.Config.Port != 6543 || req.Config.Host != models.DefaultHost {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Config.Database != models.DefaultDatabase {
		t.Errorf("expected default database, got %q", req.Config.Database)
	}
}

func TestConnectionFormListSelection(t *testing.T) {
	f := NewConnectionForm(theme.DefaultTheme())
	f.DefaultUser = "bob"
	f.SetSaved([]models.ConnectionHistoryEntry{{ID: "s1", Name: "saved", Host: "db1", Port: 5432, Database: "app", User: "alice"}})
	f.SetDiscovered([]models.DiscoveredInstance{{Host: "localhost", Port: 5433, Source: models.SourcePortScan}})

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	req := run(cmd).(ConnectRequestMsg)
	if req.SavedID != "s1" || req.Config.Host != "db1" {
		t.Errorf("expected saved entry, got %+v", req)
	}

	f.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	req = run(cmd).(ConnectRequestMsg)
	if req.SavedID != "" || req.Config.Port != 5433 || req.Config.User != "bob" {
		t.Errorf("expected discovered instance, got %+v", req)
	}

	_, cmd = f.Update(keyRunes("d"))
	if cmd != nil {
		t.Error("expected forget to ignore discovered instances")
	}
}

func TestConnectionFormManualPrefill(t *testing.T) {
	f := NewConnectionForm(theme.DefaultTheme())
	f.Prefill = &models.ConnectionConfig{Host: "envhost", Database: "envdb", User: "envuser", Password: "pw"}

	f, _ = f.Update(keyRunes("m"))
	if !f.ManualMode {
		t.Fatal("expected manual mode")
	}
	if got := f.Inputs[fieldHost].Value(); got != "envhost" {
		t.Errorf("expected prefilled host, got %q", got)
	}

	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	req, ok := run(cmd).(ConnectRequestMsg)
	if !ok {
		t.Fatalf("expected ConnectRequestMsg, got %T", run(cmd))
	}
	if req.Config.Database != "envdb" || req.Config.Password != "pw" {
		t.Errorf("unexpected request %+v", req.Config)
	}
}

func newTestScreen(src *fakeSource) *DBScreen {
	s := NewDBScreen(DBScreenOptions{
		Name:          "prod",
		Config:        models.ConnectionConfig{Host: "db1"},
		Source:        src,
		Theme:         theme.DefaultTheme(),
		DefaultSchema: "public",
		Locale:        "en",
	})
	s.TabID = "tab-1"
	return s
}

func TestDBScreenNavigationWraps(t *testing.T) {
	src := &fakeSource{catalog: testCatalog()}
	s := newTestScreen(src)
	s, _ = s.Update(run(s.Init()))
	if len(s.Entries()) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(s.Entries()))
	}

	s.PrevTable()
	cur, _ := s.CurrentTable()
	if cur.DisplayName != "users" {
		t.Errorf("expected prev from nothing to open the last entry, got %s", cur.DisplayName)
	}
	s.NextTable()
	cur, _ = s.CurrentTable()
	if cur.DisplayName != "orders" {
		t.Errorf("expected wrap to first entry, got %s", cur.DisplayName)
	}
	if s.Title() != "prod: orders" {
		t.Errorf("unexpected title %q", s.Title())
	}
}

func TestDBScreenIgnoresStaleData(t *testing.T) {
	src := &fakeSource{catalog: testCatalog()}
	s := newTestScreen(src)
	s, _ = s.Update(run(s.Init()))
	s.OpenTable("public", "users")

	s, _ = s.Update(TableDataMsg{TabID: "tab-1", Schema: "public", Name: "orders", Data: &models.TableData{Columns: []string{"x"}}})
	if len(s.Table().Columns) != 0 {
		t.Error("expected data for another table to be ignored")
	}
	s, _ = s.Update(TableDataMsg{TabID: "other", Schema: "public", Name: "users", Data: &models.TableData{Columns: []string{"x"}}})
	if len(s.Table().Columns) != 0 {
		t.Error("expected data for another tab to be ignored")
	}
	s, _ = s.Update(TableDataMsg{TabID: "tab-1", Schema: "public", Name: "users", Data: &models.TableData{Columns: []string{"id"}, Rows: [][]string{{"1"}}, TotalRows: 1}})
	if len(s.Table().Rows) != 1 {
		t.Errorf("expected one row, got %d", len(s.Table().Rows))
	}
}

func TestDBScreenDestroyOnce(t *testing.T) {
	calls := 0
	s := NewDBScreen(DBScreenOptions{OnDestroy: func() { calls++ }})
	s.Destroy()
	s.Destroy()
	if calls != 1 {
		t.Errorf("expected one destroy callback, got %d", calls)
	}
}

func TestMessageOverlayConfirm(t *testing.T) {
	o := NewMessageOverlay(theme.DefaultTheme())
	o.Ask("Import", "Run dump.sql?", "import")

	o, cmd := o.Update(keyRunes("y"))
	msg, ok := run(cmd).(ConfirmedMsg)
	if !ok || msg.Tag != "import" {
		t.Fatalf("expected ConfirmedMsg{import}, got %#v", run(cmd))
	}
	if o.Visible {
		t.Error("expected overlay hidden")
	}

	o.Show("Connection error", "refused", SeverityError)
	o.Update(keyRunes("x"))
	if !o.Visible {
		t.Error("expected unrelated keys to keep the overlay")
	}
	o.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if o.Visible {
		t.Error("expected esc to dismiss")
	}
}
