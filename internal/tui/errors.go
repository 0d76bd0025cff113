package tui

import "errors"

var (
	// ErrNoScreen is returned when an editor is created without a screen.
	ErrNoScreen = errors.New("no screen")
)
