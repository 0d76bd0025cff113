package linker

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/inkwell/internal/alias"
	"github.com/dshills/inkwell/internal/document"
)

// ValidateMarker reports whether a marker rendering renderedText still
// resolves: some entry must share the link's identity (candidate id for
// candidates, entity and alias id otherwise) and its surface form must
// equal the text under the entry's case mode. Blank text never validates.
func ValidateMarker(link *document.Link, renderedText string, idx *alias.Index) bool {
	if link == nil || !link.IsMarker() {
		return false
	}
	if strings.TrimSpace(renderedText) == "" {
		return false
	}
	text := norm.NFC.String(renderedText)
	for _, e := range idx.ForLink(link) {
		if e.Matches(text) {
			return true
		}
	}
	return false
}

// SweepStale unwraps every entity marker in doc that no longer validates,
// keeping its text in place. External links are left alone. Markers that
// validate but lack their expected alias text have it filled in. The sweep
// is idempotent; it returns the number of markers removed.
func SweepStale(doc *document.Document, idx *alias.Index) int {
	removed := 0
	for _, m := range doc.Markers() {
		if !m.IsMarker() {
			continue
		}
		text := document.TextContent(m)
		if !ValidateMarker(m.Link, text, idx) {
			doc.Unwrap(m)
			removed++
			continue
		}
		if m.Link.Alias == "" {
			m.Link.Alias = text
		}
	}
	return removed
}

// RepairEdgeTyping handles text typed immediately next to a marker
// boundary. When the marker holds a single run and the caret sits at the
// end of that run (text appended) or right after a typed prefix (text
// prepended), the extra characters are moved into a new sibling run outside
// the marker, the marker text is restored to its expected alias, and the
// caret is placed at the end of the new run.
//
// It returns false without touching the document when the run does not
// cleanly start or end with the expected alias; the caller then falls back
// to unwrapping the marker.
func RepairEdgeTyping(doc *document.Document, marker *document.Inline, caret document.Position) (document.Position, bool) {
	if marker == nil || !marker.IsMarker() {
		return caret, false
	}
	run := marker.SingleRun()
	expected := marker.Link.Alias
	if run == nil || expected == "" || run.Value == expected {
		return caret, false
	}
	at, ok := doc.PositionOf(run, 0)
	if !ok || at.Run != caret.Run {
		return caret, false
	}

	text := run.Value
	extra := len(text) - len(expected)
	if extra <= 0 {
		return caret, false
	}

	var added *document.Text
	switch {
	case caret.Offset == len(text) && strings.HasPrefix(text, expected):
		added = &document.Text{Value: text[len(expected):]}
		run.Value = expected
		doc.InsertAfter(marker, added)
	case caret.Offset == extra && strings.HasSuffix(text, expected):
		added = &document.Text{Value: text[:extra]}
		run.Value = expected
		doc.InsertBefore(marker, added)
	default:
		return caret, false
	}

	pos, ok := doc.PositionOf(added, len(added.Value))
	if !ok {
		return caret, false
	}
	return pos, true
}

// UnwrapAt removes the entity marker enclosing pos, keeping its text.
func UnwrapAt(doc *document.Document, pos document.Position) bool {
	m, ok := doc.MarkerAt(pos)
	if !ok || !m.IsMarker() {
		return false
	}
	return doc.Unwrap(m)
}

// UnwrapDamaged unwraps every entity marker whose text no longer equals
// the alias it was created with, such as a marker whose first character
// was deleted from outside. Markers without a recorded alias are left to
// SweepStale. It returns the number of markers removed.
func UnwrapDamaged(doc *document.Document) int {
	removed := 0
	for _, m := range doc.Markers() {
		if !m.IsMarker() || m.Link.Alias == "" {
			continue
		}
		if document.TextContent(m) != m.Link.Alias {
			doc.Unwrap(m)
			removed++
		}
	}
	return removed
}

// Outcome describes what ReconcileEdit did.
type Outcome uint8

const (
	// Untouched means no marker needed attention.
	Untouched Outcome = iota
	// Split means characters typed at a marker edge were moved out of it.
	Split
	// Unwrapped means the marker was edited inside and removed.
	Unwrapped
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Untouched:
		return "untouched"
	case Split:
		return "split"
	case Unwrapped:
		return "unwrapped"
	default:
		return "unknown"
	}
}

// ReconcileEdit restores link integrity after an edit left the caret at
// caret. Typing at a marker edge is split out; any other change to a
// marker's text unwraps the marker. Markers without recorded alias text are
// checked against idx instead.
func ReconcileEdit(doc *document.Document, caret document.Position, idx *alias.Index) (document.Position, Outcome) {
	m, ok := doc.MarkerAt(caret)
	if !ok || !m.IsMarker() {
		return caret, Untouched
	}
	text := document.TextContent(m)
	if m.Link.Alias == "" {
		if ValidateMarker(m.Link, text, idx) {
			m.Link.Alias = text
			return caret, Untouched
		}
		doc.Unwrap(m)
		return caret, Unwrapped
	}
	if text == m.Link.Alias {
		return caret, Untouched
	}
	if pos, handled := RepairEdgeTyping(doc, m, caret); handled {
		return pos, Split
	}
	doc.Unwrap(m)
	return caret, Unwrapped
}
