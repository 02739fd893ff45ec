package logx

import (
	"io"
	"strings"

	"github.com/rebeliceyang/pgtabs/internal/models"
	"pkt.systems/pslog"
)

// WithTab annotates the logger with a tab id when available.
func WithTab(log pslog.Logger, tabID string) pslog.Logger {
	if tabID != "" {
		log = log.With("tab", tabID)
	}
	return log
}

// WithConnection annotates the logger with the connection target. The password is never logged.
func WithConnection(log pslog.Logger, cfg models.ConnectionConfig) pslog.Logger {
	d := cfg.WithDefaults()
	log = log.With("host", d.Host, "port", d.Port, "database", d.Database)
	if d.User != "" {
		log = log.With("user", d.User)
	}
	return log
}

// ConsoleOptions returns console-mode options filtered at the named level.
// Unknown names fall back to info.
func ConsoleOptions(level string) pslog.Options {
	opts := pslog.Options{Mode: pslog.ModeConsole, NoColor: true}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		opts.MinLevel = pslog.InfoLevel
	}
	return opts
}

// New builds the application logger writing console lines to w.
// PSLOG_* environment variables still override the options.
func New(w io.Writer, level string) pslog.Logger {
	return pslog.LoggerFromEnv(
		pslog.WithEnvWriter(w),
		pslog.WithEnvOptions(ConsoleOptions(level)),
	)
}
