package tui

import (
	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/document"
)

// segment is one run placed on a row.
type segment struct {
	run  int
	text string
	col  int
}

func (s segment) width() int {
	return uniseg.StringWidth(s.text)
}

// layout is the row structure of a document: one row per line.
type layout struct {
	rows  [][]segment
	place map[int]cellPos
}

type cellPos struct {
	row, col int
}

// buildLayout places every run of doc. Line breaks and block ends start
// new rows.
func buildLayout(doc *document.Document) *layout {
	l := &layout{place: make(map[int]cellPos)}
	var cur []segment
	col, run := 0, 0
	open := false

	newRow := func() {
		l.rows = append(l.rows, cur)
		cur, col, open = nil, 0, false
	}
	var walk func(c document.Container)
	walk = func(c document.Container) {
		for _, n := range c.Nodes() {
			switch v := n.(type) {
			case *document.Text:
				seg := segment{run: run, text: v.Value, col: col}
				l.place[run] = cellPos{row: len(l.rows), col: col}
				cur = append(cur, seg)
				col += seg.width()
				run++
				open = true
			case *document.LineBreak:
				newRow()
				open = true
			case *document.Inline:
				walk(v)
			case *document.Block:
				walk(v)
				if open {
					newRow()
				}
			}
		}
	}
	walk(doc.Root())
	if open || len(l.rows) == 0 {
		l.rows = append(l.rows, cur)
	}
	return l
}

// cell returns the row and column of p.
func (l *layout) cell(doc *document.Document, p document.Position) (row, col int, ok bool) {
	at, found := l.place[p.Run]
	text, valid := doc.RunText(p.Run)
	if !found || !valid || p.Offset > len(text) {
		return 0, 0, false
	}
	return at.row, at.col + uniseg.StringWidth(text[:p.Offset]), true
}

// locate maps a row and column to a position. exact reports whether the
// column falls on a character rather than past the end of the row.
func (l *layout) locate(row, col int) (p document.Position, exact, ok bool) {
	if row < 0 || row >= len(l.rows) || len(l.rows[row]) == 0 {
		return document.Position{}, false, false
	}
	segs := l.rows[row]
	if col < 0 {
		col = 0
	}
	for i, s := range segs {
		w := s.width()
		if col < s.col+w {
			return document.Position{Run: s.run, Offset: offsetAt(s.text, col-s.col)}, true, true
		}
		if i == len(segs)-1 {
			return document.Position{Run: s.run, Offset: len(s.text)}, false, true
		}
	}
	return document.Position{}, false, false
}

// rowEnd returns the last position of row.
func (l *layout) rowEnd(row int) (document.Position, bool) {
	if row < 0 || row >= len(l.rows) || len(l.rows[row]) == 0 {
		return document.Position{}, false
	}
	last := l.rows[row][len(l.rows[row])-1]
	return document.Position{Run: last.run, Offset: len(last.text)}, true
}

// offsetAt returns the byte offset of the grapheme covering column col.
func offsetAt(text string, col int) int {
	off, x := 0, 0
	rest := text
	state := -1
	for rest != "" {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if col < x+w {
			return off
		}
		x += w
		off += len(cluster)
	}
	return off
}
