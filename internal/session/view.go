package session

import (
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/find"
)

// View is the visible editing surface. The session supplies the caret
// itself, so a View only paints, scrolls, selects and moves focus.
type View interface {
	PaintLayer(kind find.LayerKind, ranges []document.Range)
	ScrollIntoView(r document.Range, clearance int)
	Select(r document.Range)
	FocusDocument()
	FocusFind()
}

// surface adapts a View plus the session caret to find.Surface.
type surface struct {
	s    *Session
	view View
}

func (v surface) PaintLayer(kind find.LayerKind, ranges []document.Range) {
	v.view.PaintLayer(kind, ranges)
}

func (v surface) ScrollIntoView(r document.Range, clearance int) {
	v.view.ScrollIntoView(r, clearance)
}

func (v surface) Caret() (document.Position, bool) {
	if !v.s.hasCaret || !v.s.doc.Valid(v.s.caret) {
		return document.Position{}, false
	}
	return v.s.caret, true
}

// Select moves the session caret to the end of r as a document selection
// would.
func (v surface) Select(r document.Range) {
	v.s.caret = r.EndPos()
	v.s.hasCaret = true
	v.view.Select(r)
}

func (v surface) FocusDocument() { v.view.FocusDocument() }
func (v surface) FocusFind()     { v.view.FocusFind() }

type nopView struct{}

func (nopView) PaintLayer(find.LayerKind, []document.Range) {}
func (nopView) ScrollIntoView(document.Range, int)          {}
func (nopView) Select(document.Range)                       {}
func (nopView) FocusDocument()                              {}
func (nopView) FocusFind()                                  {}
