package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrMalformedConfig indicates a document load configuration that is not
	// a JSON object or has fields of the wrong type.
	ErrMalformedConfig = errors.New("malformed load configuration")

	// ErrValidationFailed indicates settings that fail validation.
	ErrValidationFailed = errors.New("validation failed")

	// ErrUnknownPreference indicates an unrecognized preference value.
	ErrUnknownPreference = errors.New("unknown preference value")
)

// ParseError represents an error while parsing a settings file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	// Path is the dotted setting path.
	Path string
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap returns ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
