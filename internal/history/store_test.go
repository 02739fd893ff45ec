package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddAndGetRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Kind: KindConnect, Target: "localhost:5432/postgres", Detail: "local", OccurredAt: base, Success: true, Duration: 40 * time.Millisecond},
		{Kind: KindConnect, Target: "db:5432/app", OccurredAt: base.Add(time.Minute), ErrorMessage: "Connection refused."},
		{Kind: KindImport, Target: "localhost:5432/postgres", Detail: "seed.sql", OccurredAt: base.Add(2 * time.Minute), Success: true},
	}
	for _, e := range entries {
		if err := store.Add(ctx, e); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	recent, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Kind != KindImport || recent[1].Success {
		t.Errorf("expected newest first, got %+v", recent)
	}
	if !recent[0].OccurredAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("expected timestamp round trip, got %v", recent[0].OccurredAt)
	}
}

func TestAddStampsTimeAndKeepsDuration(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	before := time.Now().Add(-time.Second)
	if err := store.Add(ctx, Entry{Kind: KindConnect, Target: "a", Success: true, Duration: 1500 * time.Millisecond}); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(got) != 1 || got[0].Duration != 1500*time.Millisecond {
		t.Fatalf("expected one entry of 1.5s, got %+v", got)
	}
	if got[0].OccurredAt.Before(before) {
		t.Errorf("expected a current timestamp, got %v", got[0].OccurredAt)
	}
}
