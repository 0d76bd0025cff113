package schedule

import "errors"

// Errors returned by the scheduler.
var (
	// ErrAlreadyRunning indicates Run was called on a loop that is running.
	ErrAlreadyRunning = errors.New("loop already running")
)
