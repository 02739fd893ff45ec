package connection_history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"gopkg.in/yaml.v3"
	"pkt.systems/pslog"
)

// FileName is the history file inside the config directory
const FileName = "connection_history.yaml"

// Manager manages saved connections
type Manager struct {
	path          string
	history       []models.ConnectionHistoryEntry
	passwordStore *PasswordStore
	log           pslog.Logger
	now           func() time.Time
}

// NewManager creates a new connection history manager
func NewManager(configDir string, log pslog.Logger) (*Manager, error) {
	m := &Manager{
		path:          filepath.Join(configDir, FileName),
		passwordStore: NewPasswordStore(),
		log:           log,
		now:           time.Now,
	}

	if err := m.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load connection history: %w", err)
	}

	return m, nil
}

// Load loads connection history from YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}

	var history []models.ConnectionHistoryEntry
	if err := yaml.Unmarshal(data, &history); err != nil {
		return fmt.Errorf("failed to parse connection history: %w", err)
	}
	m.history = history
	return nil
}

// Save saves connection history to YAML file
func (m *Manager) Save() error {
	data, err := yaml.Marshal(m.history)
	if err != nil {
		return fmt.Errorf("failed to marshal connection history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write connection history file: %w", err)
	}

	return nil
}

func sameTarget(entry models.ConnectionHistoryEntry, config models.ConnectionConfig) bool {
	return entry.Host == config.Host &&
		entry.Port == config.Port &&
		entry.Database == config.Database &&
		entry.User == config.User
}

// Add records a successful connection, creating or refreshing its entry.
// Keyring failures are logged and do not fail the call.
func (m *Manager) Add(config models.ConnectionConfig) error {
	config = config.WithDefaults()
	now := m.now()

	if err := m.passwordStore.Save(config.Host, config.Port, config.Database, config.User, config.Password); err != nil {
		m.log.Warn("save password failed", "host", config.Host, "err", err)
	}

	for i := range m.history {
		if sameTarget(m.history[i], config) {
			m.history[i].LastUsed = now
			m.history[i].UsageCount++
			m.history[i].SSLMode = config.SSLMode
			if config.Name != "" {
				m.history[i].Name = config.Name
			}
			if config.TabName != "" {
				m.history[i].TabName = config.TabName
			}
			return m.Save()
		}
	}

	name := config.Name
	if name == "" {
		name = config.String()
	}

	m.history = append(m.history, models.ConnectionHistoryEntry{
		ID:         uuid.NewString(),
		Name:       name,
		TabName:    config.TabName,
		Host:       config.Host,
		Port:       config.Port,
		Database:   config.Database,
		User:       config.User,
		SSLMode:    config.SSLMode,
		LastUsed:   now,
		UsageCount: 1,
		CreatedAt:  now,
	})

	return m.Save()
}

// GetAll returns all connection history entries
func (m *Manager) GetAll() []models.ConnectionHistoryEntry {
	return append([]models.ConnectionHistoryEntry(nil), m.history...)
}

// GetRecent returns the most recently used connections
func (m *Manager) GetRecent(limit int) []models.ConnectionHistoryEntry {
	sorted := m.GetAll()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastUsed.After(sorted[j].LastUsed)
	})

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Last returns the most recently used connection, used for auto-connect
func (m *Manager) Last() (models.ConnectionHistoryEntry, bool) {
	recent := m.GetRecent(1)
	if len(recent) == 0 {
		return models.ConnectionHistoryEntry{}, false
	}
	return recent[0], true
}

// Delete removes a connection from history by ID
func (m *Manager) Delete(id string) error {
	for i, entry := range m.history {
		if entry.ID == id {
			if err := m.passwordStore.Delete(entry.Host, entry.Port, entry.Database, entry.User); err != nil {
				m.log.Warn("delete password failed", "host", entry.Host, "err", err)
			}
			m.history = append(m.history[:i], m.history[i+1:]...)
			return m.Save()
		}
	}
	return fmt.Errorf("connection history entry with ID '%s' not found", id)
}

// ConfigWithPassword returns the entry's options with the keyring password filled in
func (m *Manager) ConfigWithPassword(entry models.ConnectionHistoryEntry) models.ConnectionConfig {
	config := entry.ToConnectionConfig()

	password, err := m.passwordStore.Get(entry.Host, entry.Port, entry.Database, entry.User)
	switch {
	case err == nil:
		config.Password = password
	case !errors.Is(err, ErrPasswordNotFound):
		m.log.Warn("read password failed", "host", entry.Host, "err", err)
	}

	return config
}
