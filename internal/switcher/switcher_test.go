package switcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rebeliceyang/pgtabs/internal/models"
)

type fakeProvider struct {
	catalog models.Catalog
	err     error
}

func (f fakeProvider) ListSchemasAndTables(context.Context) (models.Catalog, error) {
	return f.catalog, f.err
}

func ready(t *testing.T, catalog models.Catalog) *Switcher {
	t.Helper()
	s := New("public", "en")
	if err := s.Open(true); err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := Load(context.Background(), fakeProvider{catalog: catalog})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Loaded(got) {
		t.Fatal("expected catalog to be accepted")
	}
	return s
}

func names(entries []Entry) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.DisplayName
	}
	return strings.Join(out, ",")
}

func table(name string) models.CatalogTable {
	return models.CatalogTable{Name: name, Type: "BASE TABLE"}
}

func TestOpenWithoutSession(t *testing.T) {
	s := New("public", "en")
	if err := s.Open(false); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if s.State() != StateClosed {
		t.Errorf("expected closed, got %s", s.State())
	}
}

func TestLoadedFlattensAndSorts(t *testing.T) {
	s := ready(t, models.Catalog{
		"public": {table("users"), table("accounts")},
		"audit":  {table("log_users")},
	})

	if s.State() != StateReady {
		t.Fatalf("expected ready, got %s", s.State())
	}
	if got := names(s.Entries()); got != "accounts,audit.log_users,users" {
		t.Errorf("expected accounts,audit.log_users,users, got %s", got)
	}
	if s.SelectedIndex() != 0 {
		t.Errorf("expected index 0, got %d", s.SelectedIndex())
	}
}

func TestQueryPrefixTieBrokenByCollation(t *testing.T) {
	s := ready(t, models.Catalog{
		"public": {table("orders"), table("users")},
		"sales":  {table("orders")},
	})

	s.SetQuery("order")
	if got := names(s.Entries()); got != "orders,sales.orders" {
		t.Errorf("expected orders,sales.orders, got %s", got)
	}
}

func TestQueryRanksBareNamePrefixFirst(t *testing.T) {
	s := ready(t, models.Catalog{
		"public": {table("users")},
		"audit":  {table("log_users")},
	})

	s.SetQuery("users")
	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected both entries to match, got %s", names(entries))
	}
	if entries[0].Qualified() != "public.users" || entries[1].Qualified() != "audit.log_users" {
		t.Errorf("expected public.users before audit.log_users, got %s", names(entries))
	}
}

func TestQueryMatchesBareNameOfQualifiedEntry(t *testing.T) {
	s := ready(t, models.Catalog{
		"public":  {table("invoices")},
		"billing": {table("invoices"), table("payments")},
	})

	s.SetQuery("INV")
	if got := names(s.Entries()); got != "invoices,billing.invoices" {
		t.Errorf("expected invoices,billing.invoices, got %s", got)
	}
}

func TestEmptyQueryRestoresOriginalOrder(t *testing.T) {
	s := ready(t, models.Catalog{
		"public": {table("orders"), table("users"), table("order_items")},
		"sales":  {table("orders")},
	})
	original := names(s.Entries())

	s.SetQuery("sales")
	s.SelectNext()
	s.SetQuery("")

	if got := names(s.Entries()); got != original {
		t.Errorf("expected %s, got %s", original, got)
	}
	if s.SelectedIndex() != 0 {
		t.Errorf("expected index reset, got %d", s.SelectedIndex())
	}
}

func TestSelectNextWrapsAround(t *testing.T) {
	s := ready(t, models.Catalog{
		"public": {table("a"), table("b"), table("c"), table("d")},
	})
	s.SelectNext()
	start := s.SelectedIndex()

	for range s.Entries() {
		s.SelectNext()
	}
	if s.SelectedIndex() != start {
		t.Errorf("expected to return to %d, got %d", start, s.SelectedIndex())
	}

	s.SetQuery("")
	s.SelectPrevious()
	if s.SelectedIndex() != 3 {
		t.Errorf("expected previous from 0 to wrap to 3, got %d", s.SelectedIndex())
	}
}

func TestNavigationOnEmptyList(t *testing.T) {
	s := ready(t, models.Catalog{"public": {table("users")}})
	s.SetQuery("zzz")

	s.SelectNext()
	s.SelectPrevious()
	if s.SelectedIndex() != 0 {
		t.Errorf("expected index 0, got %d", s.SelectedIndex())
	}
	if _, ok := s.SelectCurrent(); ok {
		t.Errorf("expected no selection on empty list")
	}
	if s.State() != StateReady {
		t.Errorf("expected switcher to stay open, got %s", s.State())
	}
}

func TestSelectCurrentReportsAndCloses(t *testing.T) {
	s := ready(t, models.Catalog{
		"public": {table("users")},
		"sales":  {table("orders")},
	})
	s.SetQuery("ord")

	sel, ok := s.SelectCurrent()
	if !ok {
		t.Fatal("expected a selection")
	}
	if sel.Schema != "sales" || sel.Name != "orders" {
		t.Errorf("expected sales.orders, got %+v", sel)
	}
	if s.State() != StateClosed {
		t.Errorf("expected closed after selection, got %s", s.State())
	}
}

func TestSelectionIgnoredWhileLoading(t *testing.T) {
	s := New("public", "en")
	_ = s.Open(true)

	if _, ok := s.SelectCurrent(); ok {
		t.Errorf("expected no selection while loading")
	}
	s.Cancel()
	if s.State() != StateClosed {
		t.Errorf("expected cancel to close a loading switcher")
	}
	if s.Loaded(models.Catalog{"public": {table("users")}}) {
		t.Errorf("expected late catalog to be dropped after cancel")
	}
}

func TestLoadFailedCloses(t *testing.T) {
	s := New("public", "en")
	_ = s.Open(true)
	cause := errors.New("permission denied")

	_, loadErr := Load(context.Background(), fakeProvider{err: cause})
	err := s.LoadFailed(loadErr)

	var catalogErr *CatalogLoadError
	if !errors.As(err, &catalogErr) || !errors.Is(err, cause) {
		t.Fatalf("expected CatalogLoadError wrapping cause, got %v", err)
	}
	if s.State() != StateClosed || len(s.Entries()) != 0 {
		t.Errorf("expected closed with no entries")
	}
}

func TestCustomDefaultSchema(t *testing.T) {
	s := New("app", "en")
	_ = s.Open(true)
	s.Loaded(models.Catalog{
		"app":    {table("users")},
		"public": {table("users")},
	})
	if got := names(s.Entries()); got != "public.users,users" {
		t.Errorf("expected public.users,users, got %s", got)
	}
}

func TestEntryKindLabel(t *testing.T) {
	e := Entry{Kind: "MATERIALIZED VIEW"}
	if e.KindLabel() != "Mat. View" {
		t.Errorf("expected 'Mat. View', got %q", e.KindLabel())
	}
}
