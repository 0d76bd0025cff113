// Package markup converts documents between their three representations:
// the in-memory tree, the line-oriented text used for storage and external
// tools, and the HTML snapshot used as the structured representation.
//
// The conversion is deliberately minimal. No paragraph semantics are
// inferred from blank lines; a newline is always an explicit line break.
package markup
