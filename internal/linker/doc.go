// Package linker decorates entity mentions with link markers and keeps
// those markers honest as the text and the catalog change.
//
// Markers are validated against an alias.Index: a marker survives only
// while some entry with the same identity still renders as the marker's
// text. Markers that no longer resolve are unwrapped silently, keeping the
// text; stale links are an expected part of editing, not an error.
package linker
