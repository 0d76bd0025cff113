package session

import "errors"

// Errors returned by session operations.
var (
	// ErrNoCaret indicates an edit was requested with no caret in the
	// document.
	ErrNoCaret = errors.New("no caret in document")

	// ErrLoadFailed wraps configuration or snapshot errors from Load.
	ErrLoadFailed = errors.New("document load failed")
)
