package find

import "github.com/dshills/inkwell/internal/document"

// LayerKind identifies a highlight layer.
type LayerKind uint8

const (
	// LayerAll is the dimmed overlay on every match.
	LayerAll LayerKind = iota
	// LayerCurrent marks the current match.
	LayerCurrent
)

// String returns the layer name.
func (k LayerKind) String() string {
	switch k {
	case LayerAll:
		return "all"
	case LayerCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// Surface is the editing surface the engine paints on. Calls are made from
// frame callbacks or directly from engine operations, always on the session
// goroutine.
type Surface interface {
	// PaintLayer replaces the ranges of a highlight layer. Nil clears it.
	PaintLayer(kind LayerKind, ranges []document.Range)

	// ScrollIntoView scrolls r into the viewport, keeping clearance pixels
	// free at the top for the find bar.
	ScrollIntoView(r document.Range, clearance int)

	// Caret returns the live caret, if it is inside the document.
	Caret() (document.Position, bool)

	// Select selects r in the document.
	Select(r document.Range)

	// FocusDocument moves keyboard focus to the document.
	FocusDocument()

	// FocusFind moves keyboard focus to the find input.
	FocusFind()
}

// NopSurface is a Surface that does nothing and has no caret.
type NopSurface struct{}

func (NopSurface) PaintLayer(LayerKind, []document.Range) {}
func (NopSurface) ScrollIntoView(document.Range, int)     {}
func (NopSurface) Caret() (document.Position, bool)       { return document.Position{}, false }
func (NopSurface) Select(document.Range)                  {}
func (NopSurface) FocusDocument()                         {}
func (NopSurface) FocusFind()                             {}
