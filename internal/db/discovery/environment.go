package discovery

import (
	"os"
	"strconv"

	"github.com/rebeliceyang/pgtabs/internal/models"
)

func osGetenv(key string) string {
	return os.Getenv(key)
}

func envPort(getenv func(string) string) int {
	if p, err := strconv.Atoi(getenv("PGPORT")); err == nil && p > 0 && p <= 65535 {
		return p
	}
	return models.DefaultPort
}

// ParseEnvironment reports the server named by PGHOST/PGPORT, if any
func ParseEnvironment(getenv func(string) string) *models.DiscoveredInstance {
	host := getenv("PGHOST")
	if host == "" {
		return nil
	}

	return &models.DiscoveredInstance{
		Host:      host,
		Port:      envPort(getenv),
		Source:    models.SourceEnvironment,
		Available: true, // verified on connect
	}
}

// EnvironmentConfig builds connection options from the PG* variables.
// It returns nil when none of host, database or user is set.
func EnvironmentConfig(getenv func(string) string) *models.ConnectionConfig {
	host := getenv("PGHOST")
	database := getenv("PGDATABASE")
	user := getenv("PGUSER")
	if host == "" && database == "" && user == "" {
		return nil
	}

	if user == "" {
		user = getenv("USER")
	}
	if database == "" {
		database = user
	}

	cfg := models.ConnectionConfig{
		Name:     "Environment",
		Host:     host,
		Port:     envPort(getenv),
		Database: database,
		User:     user,
		Password: getenv("PGPASSWORD"),
		SSLMode:  getenv("PGSSLMODE"),
	}.WithDefaults()
	return &cfg
}
