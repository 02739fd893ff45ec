package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "config.yaml")).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UI.LoaderDelayMs != 300 {
		t.Errorf("expected loader delay 300, got %d", cfg.UI.LoaderDelayMs)
	}
	if cfg.UI.ConnectLoaderDelayMs != 500 {
		t.Errorf("expected connect loader delay 500, got %d", cfg.UI.ConnectLoaderDelayMs)
	}
	if cfg.General.DefaultSchema != "public" {
		t.Errorf("expected default schema 'public', got %q", cfg.General.DefaultSchema)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("general:\n  locale: sv\nui:\n  theme: catppuccin-mocha\nkeys:\n  close_tab: [\"ctrl+q\"]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loader := NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.Locale != "sv" {
		t.Errorf("expected locale 'sv', got %q", cfg.General.Locale)
	}
	if cfg.UI.Theme != "catppuccin-mocha" {
		t.Errorf("expected theme override, got %q", cfg.UI.Theme)
	}
	if len(cfg.Keys.CloseTab) != 1 || cfg.Keys.CloseTab[0] != "ctrl+q" {
		t.Errorf("expected close_tab override, got %v", cfg.Keys.CloseTab)
	}
	if cfg.General.DefaultLimit != 100 {
		t.Errorf("expected default limit to survive partial file, got %d", cfg.General.DefaultLimit)
	}
	if loader.File() != path {
		t.Errorf("expected config file %q, got %q", path, loader.File())
	}
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestDurations(t *testing.T) {
	cfg := GetDefaults()
	if cfg.ConnectLoaderDelay().Milliseconds() != 500 {
		t.Errorf("expected 500ms, got %v", cfg.ConnectLoaderDelay())
	}
	if cfg.LoaderDelay().Milliseconds() != 300 {
		t.Errorf("expected 300ms, got %v", cfg.LoaderDelay())
	}
}
