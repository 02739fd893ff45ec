// Package importer loads a dropped or pasted .sql file into a session.
package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotImportable is returned for paths that are not readable .sql files.
var ErrNotImportable = errors.New("not an importable sql file")

// Executor runs a SQL script. connection.Pool satisfies it.
type Executor interface {
	Execute(ctx context.Context, sql string, args ...interface{}) (int64, error)
}

// Result summarises a finished import.
type Result struct {
	File         string
	Bytes        int
	RowsAffected int64
	Duration     time.Duration
}

// CleanDroppedPath normalises what a terminal pastes for a dragged file:
// surrounding quotes, a file:// prefix and backslash-escaped spaces.
func CleanDroppedPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}
	return strings.ReplaceAll(s, `\ `, " ")
}

// IsImportable reports whether s names an existing .sql file.
func IsImportable(s string) bool {
	path := CleanDroppedPath(s)
	if !strings.EqualFold(filepath.Ext(path), ".sql") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Run executes the file at path as one script. Cancelling ctx stops the
// running statement.
func Run(ctx context.Context, exec Executor, path string) (Result, error) {
	path = CleanDroppedPath(path)
	if !IsImportable(path) {
		return Result{}, fmt.Errorf("%w: %s", ErrNotImportable, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	result := Result{File: path, Bytes: len(data)}
	script := strings.TrimSpace(string(data))
	if script == "" {
		return result, nil
	}

	start := time.Now()
	rows, err := exec.Execute(ctx, script)
	result.Duration = time.Since(start)
	if err != nil {
		return result, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	result.RowsAffected = rows
	return result, nil
}
