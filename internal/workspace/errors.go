package workspace

import "errors"

var (
	// ErrTabNotFound is returned when an id or position does not name a tab.
	ErrTabNotFound = errors.New("tab not found")
	// ErrTabNotCloseable is returned when closing the last login tab.
	ErrTabNotCloseable = errors.New("tab cannot be closed")
)
