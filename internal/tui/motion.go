package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/document"
)

// move moves the caret for an arrow, Home or End key.
func (e *Editor) move(key tcell.Key) {
	doc := e.sess.Document()
	p, ok := e.sess.Caret()
	if !ok {
		p = doc.Start()
	}
	var next document.Position
	switch key {
	case tcell.KeyLeft:
		next = left(doc, p)
	case tcell.KeyRight:
		next = right(doc, p)
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyHome, tcell.KeyEnd:
		row, col, found := e.layout.cell(doc, p)
		if !found {
			return
		}
		var moved bool
		switch key {
		case tcell.KeyUp:
			next, _, moved = e.layout.locate(row-1, col)
		case tcell.KeyDown:
			next, _, moved = e.layout.locate(row+1, col)
		case tcell.KeyHome:
			next, _, moved = e.layout.locate(row, 0)
		default:
			next, moved = e.layout.rowEnd(row)
		}
		if !moved {
			return
		}
	}
	if err := e.sess.SetCaret(next); err != nil {
		return
	}
	e.selected = nil
	e.followCaret()
}

// left returns the position one character before p.
func left(doc *document.Document, p document.Position) document.Position {
	text, _ := doc.RunText(p.Run)
	if p.Offset > 0 {
		_, size := lastGrapheme(text[:p.Offset])
		return document.Position{Run: p.Run, Offset: p.Offset - size}
	}
	off, ok := doc.Offset(p)
	if !ok || off == 0 {
		return p
	}
	// The same offset resolves to the end of the previous run on this row.
	if same := doc.PositionAt(off); same != p {
		return left(doc, same)
	}
	return doc.PositionAt(off - 1)
}

// right returns the position one character after p.
func right(doc *document.Document, p document.Position) document.Position {
	text, _ := doc.RunText(p.Run)
	if p.Offset < len(text) {
		return document.Position{Run: p.Run, Offset: p.Offset + firstGraphemeLen(text[p.Offset:])}
	}
	off, ok := doc.Offset(p)
	if !ok {
		return p
	}
	next := doc.PositionAt(off + 1)
	if next.Run == p.Run || next.Offset == 0 {
		return next
	}
	// Continuing on the same row: step over the first character of the
	// following run.
	t, _ := doc.RunText(next.Run)
	return document.Position{Run: next.Run, Offset: firstGraphemeLen(t)}
}

func firstGraphemeLen(s string) int {
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return len(cluster)
}

// lastGrapheme returns the final grapheme cluster of s and its byte length.
func lastGrapheme(s string) (string, int) {
	last := ""
	state := -1
	for s != "" {
		last, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
	}
	return last, len(last)
}
