package repositories

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrNotRunning is returned when a terminal transition targets an analysis
	// that already left the running state.
	ErrNotRunning = errors.New("analysis is not running")
)
