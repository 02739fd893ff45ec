package connection

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rebeliceyang/pgtabs/internal/models"
)

// ErrUnrecognizedArgument is returned for arguments that are not postgres URLs.
var ErrUnrecognizedArgument = errors.New("unrecognized argument")

// IsConnectionURL reports whether arg looks like a postgres connection URL.
func IsConnectionURL(arg string) bool {
	return strings.HasPrefix(arg, "postgres://") || strings.HasPrefix(arg, "postgresql://")
}

// ParseURL converts a postgres:// URL into connection options. The
// non-standard tab_name parameter names the tab and is not sent to the server.
func ParseURL(raw string) (models.ConnectionConfig, error) {
	if !IsConnectionURL(raw) {
		return models.ConnectionConfig{}, fmt.Errorf("%w: %s", ErrUnrecognizedArgument, raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return models.ConnectionConfig{}, fmt.Errorf("parse connection url: %w", err)
	}
	query := u.Query()
	tabName := query.Get("tab_name")
	sslMode := query.Get("sslmode")
	query.Del("tab_name")
	u.RawQuery = query.Encode()

	pc, err := pgconn.ParseConfig(u.String())
	if err != nil {
		return models.ConnectionConfig{}, fmt.Errorf("parse connection url: %w", err)
	}

	cfg := models.ConnectionConfig{
		TabName:  tabName,
		Host:     pc.Host,
		Port:     int(pc.Port),
		Database: pc.Database,
		User:     pc.User,
		Password: pc.Password,
		SSLMode:  sslMode,
	}
	if u.Hostname() == "" {
		cfg.Host = models.DefaultHost
	}
	return cfg.WithDefaults(), nil
}
