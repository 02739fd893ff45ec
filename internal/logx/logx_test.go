package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rebeliceyang/pgtabs/internal/models"
	"pkt.systems/pslog"
)

func TestWithTabAddsField(t *testing.T) {
	capture := &logCapture{}
	log := WithTab(newStructured(capture), "tab1")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["tab"] != "tab1" {
		t.Fatalf("expected tab field, got %+v", entry)
	}
}

func TestWithTabSkipsEmpty(t *testing.T) {
	capture := &logCapture{}
	log := WithTab(newStructured(capture), "")
	log.Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["tab"]; ok {
		t.Fatalf("did not expect tab field for empty id")
	}
}

func TestWithConnectionOmitsPassword(t *testing.T) {
	capture := &logCapture{}
	cfg := models.ConnectionConfig{Host: "db", User: "app", Password: "secret"}
	log := WithConnection(newStructured(capture), cfg)
	log.Info("hello")

	entry := capture.firstEntry(t)
	if entry["host"] != "db" {
		t.Fatalf("expected host field, got %+v", entry)
	}
	if entry["database"] != "postgres" {
		t.Fatalf("expected default database, got %+v", entry)
	}
	if bytes.Contains(capture.buf.Bytes(), []byte("secret")) {
		t.Fatalf("password leaked into log output")
	}
}

func TestConsoleOptionsLevels(t *testing.T) {
	if got := ConsoleOptions("DEBUG").MinLevel; got != pslog.DebugLevel {
		t.Errorf("expected debug level, got %v", got)
	}
	if got := ConsoleOptions("nonsense").MinLevel; got != pslog.InfoLevel {
		t.Errorf("expected info fallback, got %v", got)
	}
	if got := ConsoleOptions("trace").Mode; got != pslog.ModeConsole {
		t.Errorf("expected console mode, got %v", got)
	}
}

func newStructured(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
