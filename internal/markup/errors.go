package markup

import "errors"

// Errors returned by markup operations.
var (
	// ErrMalformedSnapshot indicates a structured snapshot that cannot be read.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)
