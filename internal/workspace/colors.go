package workspace

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Palette holds the colours handed out to connections.
var Palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8",
	"#F7DC6F", "#BB8FCE", "#85C1E2", "#F8B739", "#52B788",
	"#FF9FF3", "#54A0FF", "#FF6348", "#1DD1A1", "#FFC312",
}

// ColorStore remembers which colour each connection key uses.
type ColorStore struct {
	path   string
	colors map[string]string
	pick   func(n int) int
}

type colorFile struct {
	Colors map[string]string `yaml:"colors"`
}

// LoadColorStore reads path. A missing file starts an empty store; an empty
// path keeps the store in memory only.
func LoadColorStore(path string) (*ColorStore, error) {
	s := &ColorStore{path: path, colors: make(map[string]string), pick: rand.IntN}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read colors: %w", err)
	}

	var f colorFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse colors: %w", err)
	}
	for k, v := range f.Colors {
		s.colors[k] = v
	}
	return s, nil
}

// Get returns the stored colour for key, if any.
func (s *ColorStore) Get(key string) (string, bool) {
	c, ok := s.colors[key]
	return c, ok
}

// ForKey returns the colour for key, assigning a random unused palette
// colour on first use. When every colour is taken any colour may repeat.
func (s *ColorStore) ForKey(key string) (string, error) {
	if c, ok := s.colors[key]; ok {
		return c, nil
	}

	used := make(map[string]bool, len(s.colors))
	for _, c := range s.colors {
		used[c] = true
	}
	free := make([]string, 0, len(Palette))
	for _, c := range Palette {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		free = Palette
	}

	color := free[s.pick(len(free))]
	return color, s.Set(key, color)
}

// Set stores a colour and persists the store.
func (s *ColorStore) Set(key, color string) error {
	s.colors[key] = color
	return s.save()
}

func (s *ColorStore) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create colors dir: %w", err)
	}
	data, err := yaml.Marshal(colorFile{Colors: s.colors})
	if err != nil {
		return fmt.Errorf("encode colors: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write colors: %w", err)
	}
	return nil
}
