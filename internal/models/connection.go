package models

import (
	"fmt"
	"strconv"
	"time"
)

// Connection defaults applied when a field is left empty
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultDatabase = "postgres"
	DefaultSSLMode  = "prefer"
)

// ConnectionConfig represents a PostgreSQL connection configuration
type ConnectionConfig struct {
	Name     string `yaml:"name"`
	TabName  string `yaml:"tab_name,omitempty"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	SSLMode  string `yaml:"ssl_mode"`
}

// WithDefaults returns a copy with empty host, port, database and sslmode filled in
func (c ConnectionConfig) WithDefaults() ConnectionConfig {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.SSLMode == "" {
		c.SSLMode = DefaultSSLMode
	}
	return c
}

// Key identifies the server/database pair a connection points at.
// Tabs opened against the same key share a colour.
func (c ConnectionConfig) Key() string {
	d := c.WithDefaults()
	return d.Host + ":" + strconv.Itoa(d.Port) + "/" + d.Database
}

// TabTitle picks the label for a tab opened with this config.
// An explicit tab_name wins, then the supplied name, then the host.
func (c ConnectionConfig) TabTitle(name string) string {
	switch {
	case c.TabName != "":
		return c.TabName
	case name != "":
		return name
	case c.Host != "":
		return c.Host
	default:
		return "DB"
	}
}

// String renders the config without the password
func (c ConnectionConfig) String() string {
	d := c.WithDefaults()
	return fmt.Sprintf("%s@%s:%d/%s", d.User, d.Host, d.Port, d.Database)
}

// DiscoveredInstance represents a PostgreSQL instance found via auto-discovery
type DiscoveredInstance struct {
	Host         string
	Port         int
	Source       DiscoverySource
	Available    bool
	ResponseTime time.Duration
}

// DiscoverySource indicates how an instance was discovered
type DiscoverySource int

const (
	SourceEnvironment DiscoverySource = iota
	SourcePgPass
	SourcePortScan
)

func (s DiscoverySource) String() string {
	switch s {
	case SourceEnvironment:
		return "Environment"
	case SourcePgPass:
		return ".pgpass"
	case SourcePortScan:
		return "Port Scan"
	default:
		return "Unknown"
	}
}

// ConnectionHistoryEntry represents a saved connection.
// Passwords live in the OS keyring, never in this struct's YAML.
type ConnectionHistoryEntry struct {
	ID         string    `yaml:"id"`
	Name       string    `yaml:"name"`
	TabName    string    `yaml:"tab_name,omitempty"`
	Host       string    `yaml:"host"`
	Port       int       `yaml:"port"`
	Database   string    `yaml:"database"`
	User       string    `yaml:"user"`
	SSLMode    string    `yaml:"ssl_mode"`
	LastUsed   time.Time `yaml:"last_used"`
	UsageCount int       `yaml:"usage_count"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// ToConnectionConfig converts a history entry to a ConnectionConfig (without password)
func (e *ConnectionHistoryEntry) ToConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Name:     e.Name,
		TabName:  e.TabName,
		Host:     e.Host,
		Port:     e.Port,
		Database: e.Database,
		User:     e.User,
		SSLMode:  e.SSLMode,
	}
}
