package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/pgtabs/internal/models"
)

// ErrNoActiveConnection is returned when no session tab is focused.
var ErrNoActiveConnection = errors.New("no active connection")

var errPoolClosed = errors.New("connection pool closed")

// Dialer opens a pool. NewPool is the production dialer.
type Dialer func(ctx context.Context, config models.ConnectionConfig, opts PoolOptions) (*Pool, error)

// Manager manages the open database connections, one per session tab.
// Connect runs off the UI loop, so the manager is safe for concurrent use.
type Manager struct {
	connections map[string]*Connection
	active      string
	opts        PoolOptions
	dial        Dialer
	mu          sync.RWMutex
}

// Connection wraps a pool with metadata
type Connection struct {
	ID          string
	Config      models.ConnectionConfig
	Pool        *Pool
	Connected   bool
	ConnectedAt time.Time
	LastPing    time.Time
	Error       error
}

// NewManager creates a new connection manager
func NewManager(opts PoolOptions) *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
		opts:        opts,
		dial:        NewPool,
	}
}

// Connect dials config and registers the connection. The connection does not
// become active until SetActive is called for it.
func (m *Manager) Connect(ctx context.Context, config models.ConnectionConfig) (*Connection, error) {
	pool, err := m.dial(ctx, config, m.opts)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	conn := &Connection{
		ID:          generateConnectionID(config),
		Config:      pool.Config(),
		Pool:        pool,
		Connected:   true,
		ConnectedAt: now,
		LastPing:    now,
	}

	m.mu.Lock()
	m.connections[conn.ID] = conn
	m.mu.Unlock()

	return conn, nil
}

// Disconnect closes a connection
func (m *Manager) Disconnect(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn, ok := m.connections[id]
	if !ok {
		return fmt.Errorf("connection %s not found", id)
	}

	conn.Pool.Close()
	delete(m.connections, id)

	if m.active == id {
		m.active = ""
	}

	return nil
}

// CloseAll closes every connection
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, conn := range m.connections {
		conn.Pool.Close()
		delete(m.connections, id)
	}
	m.active = ""
}

// GetActive returns the active connection
func (m *Manager) GetActive() (*Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.active == "" {
		return nil, ErrNoActiveConnection
	}

	conn, ok := m.connections[m.active]
	if !ok {
		return nil, fmt.Errorf("active connection not found")
	}

	return conn, nil
}

// SetActive sets the active connection. An empty id clears it.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		m.active = ""
		return nil
	}
	if _, ok := m.connections[id]; !ok {
		return fmt.Errorf("connection %s not found", id)
	}

	m.active = id
	return nil
}

// Ping tests the active connection and returns its id. The id is empty only
// when there is no active connection.
func (m *Manager) Ping(ctx context.Context) (string, error) {
	conn, err := m.GetActive()
	if err != nil {
		return "", err
	}

	if conn.Pool == nil {
		return conn.ID, fmt.Errorf("connection pool not initialized")
	}

	if err := conn.Pool.Ping(ctx); err != nil {
		m.mu.Lock()
		conn.Error = err
		conn.Connected = false
		m.mu.Unlock()
		return conn.ID, err
	}

	m.mu.Lock()
	conn.LastPing = time.Now()
	conn.Connected = true
	conn.Error = nil
	m.mu.Unlock()

	return conn.ID, nil
}

// generateConnectionID creates a unique connection ID. Two tabs on the same
// database get distinct ids.
func generateConnectionID(config models.ConnectionConfig) string {
	return config.Key() + "#" + uuid.NewString()[:8]
}
