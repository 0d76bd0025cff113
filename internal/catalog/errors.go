package catalog

import "errors"

// Errors returned by catalog operations.
var (
	// ErrMalformedCatalog indicates catalog data has the wrong shape.
	ErrMalformedCatalog = errors.New("malformed catalog")

	// ErrUnknownFormat indicates a catalog file is neither JSON nor YAML.
	ErrUnknownFormat = errors.New("unknown catalog format")

	// ErrWatcherClosed indicates the watcher was already closed.
	ErrWatcherClosed = errors.New("catalog watcher is closed")
)
