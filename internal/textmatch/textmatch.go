// Package textmatch provides the character-level matching primitives shared
// by the linker and the find engine: simple case folding that reports
// matched byte lengths, and grapheme-aware word boundaries.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// EqualFoldRune reports whether two runes are equal under simple Unicode
// case folding.
func EqualFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

// HasPrefixFold reports whether s starts with prefix under simple case
// folding, and returns the number of bytes of s the prefix covered.
func HasPrefixFold(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s[n:])
		if !EqualFoldRune(r, pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// HasPrefix reports whether s starts with prefix, optionally folding case,
// and returns the matched byte length.
func HasPrefix(s, prefix string, fold bool) (int, bool) {
	if !fold {
		if strings.HasPrefix(s, prefix) {
			return len(prefix), true
		}
		return 0, false
	}
	return HasPrefixFold(s, prefix)
}

// IndexFold returns the byte index and matched length of the first
// case-insensitive occurrence of sub in s at or after from, or -1.
func IndexFold(s, sub string, from int) (int, int) {
	if sub == "" {
		return -1, 0
	}
	first, _ := utf8.DecodeRuneInString(sub)
	for i := from; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if EqualFoldRune(r, first) {
			if n, ok := HasPrefixFold(s[i:], sub); ok {
				return i, n
			}
		}
		i += size
	}
	return -1, 0
}

// Words describes the grapheme-cluster structure of a text for whole-word
// matching. A position is a word boundary when it falls between grapheme
// clusters and the clusters on either side are not both word characters.
type Words struct {
	text string
	// boundary[i] is true when byte offset i starts a grapheme cluster
	// (or i == len(text)).
	boundary []bool
	// wordAt[i] is true when the cluster starting at i begins with a
	// letter or digit.
	wordAt []bool
	// wordBefore[i] is true when the cluster ending at i begins with a
	// letter or digit.
	wordBefore []bool
}

// NewWords segments text into grapheme clusters.
func NewWords(text string) *Words {
	w := &Words{
		text:       text,
		boundary:   make([]bool, len(text)+1),
		wordAt:     make([]bool, len(text)+1),
		wordBefore: make([]bool, len(text)+1),
	}
	state := -1
	rest := text
	off := 0
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		r, _ := utf8.DecodeRuneInString(cluster)
		isWord := IsWordRune(r)
		w.boundary[off] = true
		w.wordAt[off] = isWord
		off += len(cluster)
		w.wordBefore[off] = isWord
	}
	w.boundary[len(text)] = true
	return w
}

// IsWordRune reports whether r counts as part of a word.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// CanStart reports whether a whole-word match may begin at byte offset i.
func (w *Words) CanStart(i int) bool {
	if i < 0 || i > len(w.text) || !w.boundary[i] {
		return false
	}
	return !w.wordBefore[i]
}

// CanEnd reports whether a whole-word match may end at byte offset i.
func (w *Words) CanEnd(i int) bool {
	if i < 0 || i > len(w.text) || !w.boundary[i] {
		return false
	}
	return i == len(w.text) || !w.wordAt[i]
}
