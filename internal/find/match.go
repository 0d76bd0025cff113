package find

import (
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/textmatch"
)

// Match is one occurrence of the query inside a text run. Len is the byte
// length of the matched text, which can differ from the query's length when
// case folding changes a character's encoding width.
type Match struct {
	Run    int
	Offset int
	Len    int
}

// Position returns the start of the match.
func (m Match) Position() document.Position {
	return document.Position{Run: m.Run, Offset: m.Offset}
}

// Range returns the span covered by the match.
func (m Match) Range() document.Range {
	return document.Range{Run: m.Run, Start: m.Offset, End: m.Offset + m.Len}
}

// MatchSet is every occurrence of a query in one version of a document, in
// document order, with a reverse lookup by position.
type MatchSet struct {
	Query   string
	Version uint64

	matches []Match
	byPos   map[document.Position]int
}

// Build scans every run of doc for case-insensitive, non-overlapping
// occurrences of query. After each hit the scan resumes at the end of the
// hit, so "aa" in "aaaa" matches at 0 and 2.
func Build(doc *document.Document, query string) *MatchSet {
	s := &MatchSet{
		Query:   query,
		Version: doc.Version(),
		byPos:   make(map[document.Position]int),
	}
	if query == "" {
		return s
	}
	for i, r := range doc.Runs() {
		text := r.Text.Value
		for from := 0; from < len(text); {
			at, n := textmatch.IndexFold(text, query, from)
			if at < 0 {
				break
			}
			m := Match{Run: i, Offset: at, Len: n}
			s.byPos[m.Position()] = len(s.matches)
			s.matches = append(s.matches, m)
			from = at + n
		}
	}
	return s
}

// Len returns the number of matches.
func (s *MatchSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matches)
}

// At returns match i.
func (s *MatchSet) At(i int) (Match, bool) {
	if s == nil || i < 0 || i >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[i], true
}

// Matches returns all matches. The slice must not be modified.
func (s *MatchSet) Matches() []Match {
	if s == nil {
		return nil
	}
	return s.matches
}

// IndexOf returns the ordinal of the match starting at p.
func (s *MatchSet) IndexOf(p document.Position) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.byPos[p]
	return i, ok
}

// Ranges returns the spans of all matches.
func (s *MatchSet) Ranges() []document.Range {
	if s == nil {
		return nil
	}
	out := make([]document.Range, len(s.matches))
	for i, m := range s.matches {
		out[i] = m.Range()
	}
	return out
}

// live reports whether m still addresses an occurrence of query in doc.
func live(doc *document.Document, m Match, query string) bool {
	text, ok := doc.RunText(m.Run)
	if !ok || m.Offset < 0 || m.Offset+m.Len > len(text) {
		return false
	}
	if !doc.Valid(m.Position()) {
		return false
	}
	n, ok := textmatch.HasPrefixFold(text[m.Offset:], query)
	return ok && n == m.Len
}
