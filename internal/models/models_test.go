package models

import "testing"

func TestConnectionConfigKeyDefaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  ConnectionConfig
		want string
	}{
		{"empty", ConnectionConfig{}, "localhost:5432/postgres"},
		{"host only", ConnectionConfig{Host: "db.internal"}, "db.internal:5432/postgres"},
		{"full", ConnectionConfig{Host: "10.0.0.2", Port: 6432, Database: "sales"}, "10.0.0.2:6432/sales"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Key(); got != tt.want {
				t.Errorf("expected key %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConnectionConfigTabTitle(t *testing.T) {
	cfg := ConnectionConfig{Host: "db.internal"}
	if got := cfg.TabTitle(""); got != "db.internal" {
		t.Errorf("expected host fallback, got %q", got)
	}
	if got := cfg.TabTitle("prod"); got != "prod" {
		t.Errorf("expected explicit name, got %q", got)
	}

	cfg.TabName = "Reporting"
	if got := cfg.TabTitle("prod"); got != "Reporting" {
		t.Errorf("expected tab_name to win, got %q", got)
	}

	if got := (ConnectionConfig{}).TabTitle(""); got != "DB" {
		t.Errorf("expected DB fallback, got %q", got)
	}
}

func TestKindLabel(t *testing.T) {
	if got := KindLabel("BASE TABLE"); got != "Table" {
		t.Errorf("expected 'Table', got %q", got)
	}
	if got := KindLabel("MATERIALIZED VIEW"); got != "Mat. View" {
		t.Errorf("expected 'Mat. View', got %q", got)
	}
	if got := KindLabel("PARTITIONED"); got != "PARTITIONED" {
		t.Errorf("expected unknown type unchanged, got %q", got)
	}
}
