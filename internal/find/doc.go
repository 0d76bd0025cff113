// Package find implements in-document search over a live, mutable
// document.
//
// An Engine moves between three states: closed, open with an empty query,
// and open with a query. While open it keeps a MatchSet of case-insensitive,
// non-overlapping occurrences of the query across the document's text runs,
// tagged with the text version it was built against, and rebuilds it when
// the query, the version or the run cache changes.
//
// Navigation starts from the anchor when the caret moved since the last
// navigation, otherwise from the previously selected match, otherwise from
// the live caret. It wraps around the document and falls back to the first
// or last match, so it always lands on a match when any exist.
//
// Painting of the two highlight layers and scrolling are deferred to the
// next frame through the schedule package. Edits are absorbed by a short
// debounced refresh that keeps the ordinal position of the current match.
package find
