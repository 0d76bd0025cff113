package document

import "fmt"

// Position is a plain-old-data location inside the flattened run sequence.
// Run indexes Document.Runs(); Offset is a byte offset in that run's text.
// A Position is only meaningful for the document version it was computed
// against; use Document.Valid before reusing one after a mutation.
type Position struct {
	Run    int
	Offset int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Run, p.Offset)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Run < other.Run {
		return -1
	}
	if p.Run > other.Run {
		return 1
	}
	if p.Offset < other.Offset {
		return -1
	}
	if p.Offset > other.Offset {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// Range is a half-open span inside a single run.
type Range struct {
	Run   int
	Start int
	End   int
}

// Len returns the byte length of the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// StartPos returns the range start as a Position.
func (r Range) StartPos() Position {
	return Position{Run: r.Run, Offset: r.Start}
}

// EndPos returns the range end as a Position.
func (r Range) EndPos() Position {
	return Position{Run: r.Run, Offset: r.End}
}

// Contains returns true if the position lies within the range, end inclusive.
func (r Range) Contains(p Position) bool {
	return p.Run == r.Run && p.Offset >= r.Start && p.Offset <= r.End
}
