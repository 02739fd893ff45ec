package app

import (
	"time"

	"github.com/rebeliceyang/pgtabs/internal/config"
	"github.com/rebeliceyang/pgtabs/internal/db/connection"
	"github.com/rebeliceyang/pgtabs/internal/history"
	"github.com/rebeliceyang/pgtabs/internal/importer"
	"github.com/rebeliceyang/pgtabs/internal/models"
	"github.com/rebeliceyang/pgtabs/internal/workspace"
)

// ConfigReloadedMsg is sent by the config watcher after config.yaml changes
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// loaderRevealMsg fires when a loader's debounce elapses
type loaderRevealMsg struct {
	gen uint64
}

// connectResultMsg is the outcome of one connection open
type connectResultMsg struct {
	id      uint64
	gen     uint64
	conn    *connection.Connection
	err     error
	elapsed time.Duration
}

// discoveryMsg carries the instances found on startup
type discoveryMsg struct {
	instances []models.DiscoveredInstance
}

// importResultMsg is the outcome of one file import
type importResultMsg struct {
	gen    uint64
	tabID  workspace.TabID
	target string
	result importer.Result
	err    error
}

// pingResultMsg is the outcome of a health check on the active connection
type pingResultMsg struct {
	connID string
	err    error
}

// activityMsg carries the newest activity log entries
type activityMsg struct {
	entries []history.Entry
}
