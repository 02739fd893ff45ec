package discovery

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/jackc/pgpassfile"
	"github.com/rebeliceyang/pgtabs/internal/models"
)

// DefaultPgPassPath returns $PGPASSFILE or ~/.pgpass
func DefaultPgPassPath() string {
	if p := os.Getenv("PGPASSFILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}

// PgPassInstances lists the concrete hosts named in a passfile.
// Wildcard hosts and unreadable files yield nothing.
func PgPassInstances(path string) []models.DiscoveredInstance {
	if path == "" {
		return nil
	}
	passfile, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return nil
	}

	instances := make([]models.DiscoveredInstance, 0, len(passfile.Entries))
	seen := make(map[string]bool)
	for _, entry := range passfile.Entries {
		if entry.Hostname == "*" || entry.Hostname == "" {
			continue
		}
		port := models.DefaultPort
		if entry.Port != "*" {
			p, err := strconv.Atoi(entry.Port)
			if err != nil || p < 1 || p > 65535 {
				continue
			}
			port = p
		}

		key := entry.Hostname + ":" + strconv.Itoa(port)
		if seen[key] {
			continue
		}
		seen[key] = true

		instances = append(instances, models.DiscoveredInstance{
			Host:      entry.Hostname,
			Port:      port,
			Source:    models.SourcePgPass,
			Available: true,
		})
	}
	return instances
}

// FindPassword looks up the passfile password for a connection
func FindPassword(path string, cfg models.ConnectionConfig) string {
	if path == "" {
		return ""
	}
	passfile, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		return ""
	}
	cfg = cfg.WithDefaults()
	return passfile.FindPassword(cfg.Host, strconv.Itoa(cfg.Port), cfg.Database, cfg.User)
}
