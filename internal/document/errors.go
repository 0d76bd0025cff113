package document

import "errors"

// Errors returned by document operations.
var (
	// ErrInvalidPosition indicates a position that does not address a live run.
	ErrInvalidPosition = errors.New("invalid document position")
)
