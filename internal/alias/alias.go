package alias

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/inkwell/internal/document"
)

// Kind is the source of an alias entry.
type Kind uint8

const (
	// KindWorld entries come from world item aliases and titles.
	KindWorld Kind = iota
	// KindCandidate entries come from provisional mentions.
	KindCandidate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindWorld:
		return "world"
	case KindCandidate:
		return "candidate"
	default:
		return "unknown"
	}
}

// LinkKind returns the link kind markers for this entry carry.
func (k Kind) LinkKind() document.LinkKind {
	if k == KindCandidate {
		return document.LinkCandidate
	}
	return document.LinkWorld
}

// CaseMode controls how a surface form is compared with text.
type CaseMode uint8

const (
	// CaseInsensitive matches regardless of letter case. This is the default.
	CaseInsensitive CaseMode = iota
	// CaseSensitive requires an exact match.
	CaseSensitive
)

// String returns the case mode name.
func (m CaseMode) String() string {
	if m == CaseSensitive {
		return "sensitive"
	}
	return "insensitive"
}

// WorldItem is a catalog entity with its declared aliases.
type WorldItem struct {
	ID      document.ID
	Title   string
	Aliases []Alias
}

// Alias is one declared surface form of a world item.
type Alias struct {
	ID            document.ID
	Text          string
	CaseSensitive bool
}

// Candidate is a provisional mention, optionally already tied to an entity.
type Candidate struct {
	ID            document.ID
	Text          string
	EntityID      document.ID
	CaseSensitive bool
}

// Entry is one surface form the linker can match.
type Entry struct {
	Kind        Kind
	EntityID    document.ID
	AliasID     document.ID
	CandidateID document.ID
	SurfaceForm string
	CaseMode    CaseMode
}

// Link returns the link metadata a marker for this entry carries.
func (e Entry) Link(matched string) *document.Link {
	return &document.Link{
		Kind:        e.Kind.LinkKind(),
		EntityID:    e.EntityID,
		AliasID:     e.AliasID,
		CandidateID: e.CandidateID,
		Alias:       matched,
	}
}

// Matches reports whether text equals the surface form under the entry's
// case mode.
func (e Entry) Matches(text string) bool {
	if e.CaseMode == CaseSensitive {
		return text == e.SurfaceForm
	}
	return strings.EqualFold(text, e.SurfaceForm)
}

// Identifies reports whether the entry shares the link's identity:
// candidate id for candidates, entity and alias id otherwise.
func (e Entry) Identifies(l *document.Link) bool {
	if l == nil || l.Kind != e.Kind.LinkKind() {
		return false
	}
	if e.Kind == KindCandidate {
		return e.CandidateID == l.CandidateID
	}
	return e.EntityID == l.EntityID && e.AliasID == l.AliasID
}

// Index is the ranked sequence of entries, longest surface form first.
// An Index is immutable once built.
type Index struct {
	entries []Entry
}

// Empty is an index without entries.
var Empty = &Index{}

// Build creates an index from a catalog snapshot. Inputs are not modified
// and the result is deterministic: ties in length keep catalog order.
func Build(items []WorldItem, candidates []Candidate) *Index {
	fold := cases.Fold()
	seen := make(map[dedupeKey]struct{})
	var entries []Entry

	add := func(e Entry) {
		e.SurfaceForm = norm.NFC.String(strings.TrimSpace(e.SurfaceForm))
		if e.SurfaceForm == "" {
			return
		}
		key := dedupeKey{
			kind:      e.Kind,
			entity:    e.EntityID,
			alias:     e.AliasID,
			candidate: e.CandidateID,
			surface:   e.SurfaceForm,
		}
		if e.CaseMode == CaseInsensitive {
			key.surface = fold.String(e.SurfaceForm)
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		entries = append(entries, e)
	}

	for _, item := range items {
		add(Entry{Kind: KindWorld, EntityID: item.ID, SurfaceForm: item.Title})
		for _, a := range item.Aliases {
			add(Entry{
				Kind:        KindWorld,
				EntityID:    item.ID,
				AliasID:     a.ID,
				SurfaceForm: a.Text,
				CaseMode:    caseMode(a.CaseSensitive),
			})
		}
	}
	for _, c := range candidates {
		add(Entry{
			Kind:        KindCandidate,
			EntityID:    c.EntityID,
			CandidateID: c.ID,
			SurfaceForm: c.Text,
			CaseMode:    caseMode(c.CaseSensitive),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return utf8.RuneCountInString(entries[i].SurfaceForm) > utf8.RuneCountInString(entries[j].SurfaceForm)
	})
	return &Index{entries: entries}
}

type dedupeKey struct {
	kind      Kind
	entity    document.ID
	alias     document.ID
	candidate document.ID
	surface   string
}

func caseMode(sensitive bool) CaseMode {
	if sensitive {
		return CaseSensitive
	}
	return CaseInsensitive
}

// Entries returns the ranked entries. The slice must not be modified.
func (x *Index) Entries() []Entry {
	if x == nil {
		return nil
	}
	return x.entries
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// ForLink returns the entries sharing the link's identity.
func (x *Index) ForLink(l *document.Link) []Entry {
	var out []Entry
	for _, e := range x.Entries() {
		if e.Identifies(l) {
			out = append(out, e)
		}
	}
	return out
}

// HasEntity reports whether any entry refers to the entity.
func (x *Index) HasEntity(id document.ID) bool {
	for _, e := range x.Entries() {
		if e.EntityID == id {
			return true
		}
	}
	return false
}
