package document

import "strconv"

// ID identifies a catalog record. NoID stands for null.
type ID = int64

// NoID is the null identifier.
const NoID ID = 0

// LinkKind distinguishes link wrappers.
type LinkKind uint8

const (
	// LinkWorld points at a world item through one of its aliases.
	LinkWorld LinkKind = iota
	// LinkCandidate marks a provisional mention.
	LinkCandidate
	// LinkExternal is an ordinary hyperlink.
	LinkExternal
)

// String returns the interaction kind reported to the host.
func (k LinkKind) String() string {
	switch k {
	case LinkWorld:
		return "wikilink"
	case LinkCandidate:
		return "candidate"
	case LinkExternal:
		return "external"
	default:
		return "unknown"
	}
}

// ParseLinkKind converts an interaction kind name back to a LinkKind.
func ParseLinkKind(s string) (LinkKind, bool) {
	switch s {
	case "wikilink", "world":
		return LinkWorld, true
	case "candidate":
		return LinkCandidate, true
	case "external":
		return LinkExternal, true
	}
	return 0, false
}

// Link holds the identity metadata of a link wrapper.
type Link struct {
	Kind        LinkKind
	EntityID    ID
	AliasID     ID
	CandidateID ID

	// Href is set for external links.
	Href string

	// Alias is the exact text the marker wrapped when it was created.
	Alias string
}

// IsMarker reports whether the link is an entity marker (world or candidate).
func (l *Link) IsMarker() bool {
	return l.Kind == LinkWorld || l.Kind == LinkCandidate
}

// SameIdentity reports whether two links refer to the same catalog record.
func (l *Link) SameIdentity(o *Link) bool {
	if l.Kind != o.Kind {
		return false
	}
	switch l.Kind {
	case LinkCandidate:
		return l.CandidateID == o.CandidateID
	case LinkExternal:
		return l.Href == o.Href
	default:
		return l.EntityID == o.EntityID && l.AliasID == o.AliasID
	}
}

// String returns a compact description used in logs.
func (l *Link) String() string {
	switch l.Kind {
	case LinkCandidate:
		return "candidate:" + strconv.FormatInt(l.CandidateID, 10)
	case LinkExternal:
		return "external:" + l.Href
	default:
		return "wikilink:" + strconv.FormatInt(l.EntityID, 10) + "/" + strconv.FormatInt(l.AliasID, 10)
	}
}
