package markup

import (
	"strings"

	"github.com/dshills/inkwell/internal/document"
)

// horizontalSpace is stripped from line ends by ToLineForm.
const horizontalSpace = " \t\u00a0"

// ToDisplayForm converts line-oriented text into a document fragment.
// Every newline becomes a LineBreak and every line, empty ones included,
// becomes a Text run, so blank lines survive exactly. The result is wrapped
// in a single block.
func ToDisplayForm(lineText string) *document.Fragment {
	lineText = strings.ReplaceAll(lineText, "\r\n", "\n")
	lines := strings.Split(lineText, "\n")

	block := &document.Block{Tag: "div", Children: make([]document.Node, 0, len(lines)*2)}
	for i, line := range lines {
		if i > 0 {
			block.Children = append(block.Children, &document.LineBreak{})
		}
		block.Children = append(block.Children, &document.Text{Value: line})
	}
	return &document.Fragment{Children: []document.Node{block}}
}

// ToLineForm flattens a fragment into line-oriented text.
//
// Text emits its characters and LineBreak emits "\n". Inline wrappers are
// transparent. A block emits one trailing "\n" after its children unless its
// last child was a line break; the terminator of the final top-level block
// is dropped. Consecutive newlines are never collapsed.
func ToLineForm(f *document.Fragment) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	last := len(f.Children) - 1
	for i, n := range f.Children {
		writeLine(&b, n, i == last)
	}
	return normalizeLines(b.String())
}

func writeLine(b *strings.Builder, n document.Node, final bool) {
	switch v := n.(type) {
	case *document.Text:
		b.WriteString(v.Value)
	case *document.LineBreak:
		b.WriteByte('\n')
	case *document.Inline:
		for _, c := range v.Children {
			writeLine(b, c, false)
		}
	case *document.Block:
		for _, c := range v.Children {
			writeLine(b, c, false)
		}
		if final || endsWithBreak(v) {
			return
		}
		b.WriteByte('\n')
	}
}

func endsWithBreak(b *document.Block) bool {
	if len(b.Children) == 0 {
		return false
	}
	_, ok := b.Children[len(b.Children)-1].(*document.LineBreak)
	return ok
}

// normalizeLines converts CRLF to LF and strips trailing horizontal
// whitespace from every line.
func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, horizontalSpace)
	}
	return strings.Join(lines, "\n")
}
