package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/find"
)

var (
	styleText   = tcell.StyleDefault
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// linkColors are the link foregrounds by kind.
var linkColors = map[document.LinkKind]tcell.Color{
	document.LinkWorld:     tcell.ColorGreen,
	document.LinkCandidate: tcell.ColorOlive,
	document.LinkExternal:  tcell.ColorTeal,
}

// Draw paints the text, the highlights and the status line, then shows the
// screen.
func (e *Editor) Draw() {
	e.screen.Clear()
	width, _ := e.screen.Size()
	rows := e.textRows()
	doc := e.sess.Document()
	runs := doc.Runs()
	links := e.sess.LinksVisible()

	for y := 0; y < rows; y++ {
		row := e.top + y
		if row >= len(e.layout.rows) {
			break
		}
		for _, seg := range e.layout.rows[row] {
			var link *document.Link
			if seg.run < len(runs) && runs[seg.run].Marker != nil {
				link = runs[seg.run].Marker.Link
			}
			e.drawSegment(seg, y, width, link, links)
		}
	}
	e.drawStatus(rows, width)
	e.placeCursor(rows)
	e.screen.Show()
}

func (e *Editor) drawSegment(seg segment, y, width int, link *document.Link, links bool) {
	x := seg.col
	off := 0
	rest := seg.text
	state := -1
	for rest != "" && x < width {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		style := e.styleAt(seg.run, off, link, links)
		runes := []rune(cluster)
		e.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
		off += len(cluster)
	}
}

// styleAt returns the style of the byte at off in run.
func (e *Editor) styleAt(run, off int, link *document.Link, links bool) tcell.Style {
	style := styleText
	if link != nil && links {
		style = style.Underline(true)
		if c, ok := linkColors[link.Kind]; ok {
			style = style.Foreground(c)
		}
	}
	if covers(e.layers[find.LayerAll], run, off) {
		style = style.Background(tcell.ColorGray)
	}
	if covers(e.layers[find.LayerCurrent], run, off) {
		style = style.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	}
	if e.selected != nil && covers([]document.Range{*e.selected}, run, off) {
		style = style.Reverse(true)
	}
	return style
}

func covers(ranges []document.Range, run, off int) bool {
	for _, r := range ranges {
		if r.Run == run && off >= r.Start && off < r.End {
			return true
		}
	}
	return false
}

func (e *Editor) drawStatus(y, width int) {
	if _, h := e.screen.Size(); y >= h {
		return
	}
	for x := 0; x < width; x++ {
		e.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	text := e.status
	if e.mode == modeFind {
		text = "find: " + e.query + "  " + e.sess.Find().Status()
	} else if e.sess.Dirty() {
		text = "* " + text
	}
	x := 0
	state := -1
	for text != "" && x < width {
		var cluster string
		var w int
		cluster, text, w, state = uniseg.FirstGraphemeClusterInString(text, state)
		runes := []rune(cluster)
		e.screen.SetContent(x, y, runes[0], runes[1:], styleStatus)
		x += w
	}
}

func (e *Editor) placeCursor(statusRow int) {
	if e.mode == modeFind {
		e.screen.ShowCursor(len("find: ")+uniseg.StringWidth(e.query), statusRow)
		return
	}
	p, ok := e.sess.Caret()
	if !ok {
		e.screen.HideCursor()
		return
	}
	row, col, ok := e.layout.cell(e.sess.Document(), p)
	if !ok || row < e.top || row-e.top >= statusRow {
		e.screen.HideCursor()
		return
	}
	e.screen.ShowCursor(col, row-e.top)
}
