package linker

import (
	"sort"

	"github.com/dshills/inkwell/internal/alias"
	"github.com/dshills/inkwell/internal/document"
	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/textmatch"
)

// span is a matched surface form inside one string.
type span struct {
	start, end int
	entry      alias.Entry
}

// findSpans matches every index entry against text at whole-word
// boundaries. Entries are tried in index order (longest first) and a span
// claimed by an earlier entry is never reconsidered, so "Lake Watery"
// shadows "Lake". The result is sorted by start offset.
func findSpans(text string, idx *alias.Index) []span {
	if text == "" || idx.Len() == 0 {
		return nil
	}
	words := textmatch.NewWords(text)
	var spans []span

	for _, e := range idx.Entries() {
		fold := e.CaseMode == alias.CaseInsensitive
		for i := 0; i < len(text); i++ {
			if !words.CanStart(i) {
				continue
			}
			n, ok := textmatch.HasPrefix(text[i:], e.SurfaceForm, fold)
			if !ok || !words.CanEnd(i+n) || overlaps(spans, i, i+n) {
				continue
			}
			spans = append(spans, span{start: i, end: i + n, entry: e})
			i += n - 1
		}
	}

	sort.Slice(spans, func(a, b int) bool { return spans[a].start < spans[b].start })
	return spans
}

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

// split turns text into plain runs and link markers according to spans.
func split(text string, spans []span) []document.Node {
	out := make([]document.Node, 0, len(spans)*2+1)
	pos := 0
	for _, s := range spans {
		if s.start > pos {
			out = append(out, &document.Text{Value: text[pos:s.start]})
		}
		matched := text[s.start:s.end]
		out = append(out, &document.Inline{
			Tag:      "span",
			Link:     s.entry.Link(matched),
			Children: []document.Node{&document.Text{Value: matched}},
		})
		pos = s.end
	}
	if pos < len(text) {
		out = append(out, &document.Text{Value: text[pos:]})
	}
	return out
}

// Annotate wraps every whole-word mention of an index entry in text with a
// link marker and returns the result as HTML markup.
func Annotate(text string, idx *alias.Index) string {
	spans := findSpans(text, idx)
	if len(spans) == 0 {
		return markup.RenderNodes(&document.Text{Value: text})
	}
	return markup.RenderNodes(split(text, spans)...)
}

// AnnotateDocument applies the same matching in place to every text run of
// doc that is not already inside a link. It returns the number of markers
// added.
func AnnotateDocument(doc *document.Document, idx *alias.Index) int {
	if idx.Len() == 0 {
		return 0
	}
	runs := append([]document.Run(nil), doc.Runs()...)
	added := 0

	// Runs are rewritten back to front so the parent indexes of earlier
	// runs stay valid.
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		if r.Marker != nil {
			continue
		}
		spans := findSpans(r.Text.Value, idx)
		if len(spans) == 0 {
			continue
		}
		nodes := r.Parent.Nodes()
		out := make([]document.Node, 0, len(nodes)+len(spans)*2)
		out = append(out, nodes[:r.Index]...)
		out = append(out, split(r.Text.Value, spans)...)
		out = append(out, nodes[r.Index+1:]...)
		r.Parent.SetNodes(out)
		added += len(spans)
	}

	if added > 0 {
		doc.Touch()
	}
	return added
}
