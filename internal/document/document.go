package document

import (
	"strings"
	"unicode/utf8"
)

// Run is one text node of the flattened, document-ordered run sequence.
type Run struct {
	Text   *Text
	Parent Container
	Index  int

	// Marker is the nearest enclosing link wrapper, or nil.
	Marker *Inline
}

// Document owns a node tree and the text-version counter that every
// mutation advances. It is not safe for concurrent use; a Document has
// exactly one owner at a time.
type Document struct {
	root    *Fragment
	version uint64

	runs     []Run
	runsAt   uint64
	runsLive bool
}

// New creates a document around root. A nil root yields an empty document.
func New(root *Fragment) *Document {
	if root == nil {
		root = &Fragment{}
	}
	return &Document{root: root}
}

// Root returns the tree root.
func (d *Document) Root() *Fragment {
	return d.root
}

// SetRoot replaces the whole tree.
func (d *Document) SetRoot(root *Fragment) {
	if root == nil {
		root = &Fragment{}
	}
	d.root = root
	d.Touch()
}

// Version returns the text-version counter.
func (d *Document) Version() uint64 {
	return d.version
}

// Touch records a mutation made directly on the tree.
func (d *Document) Touch() {
	d.version++
	d.runsLive = false
}

// Runs returns the document-ordered text runs. The slice is cached per
// version and must not be modified.
func (d *Document) Runs() []Run {
	if d.runsLive && d.runsAt == d.version {
		return d.runs
	}
	runs := make([]Run, 0, len(d.runs))
	collectRuns(d.root, nil, &runs)
	d.runs = runs
	d.runsAt = d.version
	d.runsLive = true
	return d.runs
}

func collectRuns(parent Container, marker *Inline, out *[]Run) {
	for i, n := range parent.Nodes() {
		switch v := n.(type) {
		case *Text:
			*out = append(*out, Run{Text: v, Parent: parent, Index: i, Marker: marker})
		case *LineBreak:
		case *Inline:
			m := marker
			if v.Link != nil {
				m = v
			}
			collectRuns(v, m, out)
		case *Block:
			collectRuns(v, marker, out)
		}
	}
}

// RunCount returns the number of text runs.
func (d *Document) RunCount() int {
	return len(d.Runs())
}

// Run returns run i.
func (d *Document) Run(i int) (Run, bool) {
	runs := d.Runs()
	if i < 0 || i >= len(runs) {
		return Run{}, false
	}
	return runs[i], true
}

// RunText returns the text of run i.
func (d *Document) RunText(i int) (string, bool) {
	r, ok := d.Run(i)
	if !ok {
		return "", false
	}
	return r.Text.Value, true
}

// Valid reports whether p addresses a character boundary of a live run.
func (d *Document) Valid(p Position) bool {
	text, ok := d.RunText(p.Run)
	if !ok {
		return false
	}
	if p.Offset < 0 || p.Offset > len(text) {
		return false
	}
	return p.Offset == len(text) || utf8.RuneStart(text[p.Offset])
}

// Start returns the first position of the document.
func (d *Document) Start() Position {
	return Position{}
}

// End returns the last position of the document.
func (d *Document) End() Position {
	runs := d.Runs()
	if len(runs) == 0 {
		return Position{}
	}
	last := len(runs) - 1
	return Position{Run: last, Offset: len(runs[last].Text.Value)}
}

// Text returns the concatenated run text, without line structure.
func (d *Document) Text() string {
	var b strings.Builder
	for _, r := range d.Runs() {
		b.WriteString(r.Text.Value)
	}
	return b.String()
}

// PositionOf locates a text node in the run sequence.
func (d *Document) PositionOf(t *Text, offset int) (Position, bool) {
	for i, r := range d.Runs() {
		if r.Text == t {
			return Position{Run: i, Offset: offset}, true
		}
	}
	return Position{}, false
}

// MarkerAt returns the link wrapper enclosing p, if any.
func (d *Document) MarkerAt(p Position) (*Inline, bool) {
	r, ok := d.Run(p.Run)
	if !ok || r.Marker == nil {
		return nil, false
	}
	return r.Marker, true
}

// SetRunText replaces the text of run i.
func (d *Document) SetRunText(i int, text string) error {
	r, ok := d.Run(i)
	if !ok {
		return ErrInvalidPosition
	}
	r.Text.Value = text
	d.Touch()
	return nil
}

// Insert inserts s at p and returns the position just after the inserted
// text. Inserting into a document without runs creates one.
func (d *Document) Insert(p Position, s string) (Position, error) {
	if d.RunCount() == 0 && p.Run == 0 && p.Offset == 0 {
		t := &Text{Value: s}
		d.appendRun(t)
		d.Touch()
		return Position{Run: 0, Offset: len(s)}, nil
	}
	if !d.Valid(p) {
		return p, ErrInvalidPosition
	}
	r, _ := d.Run(p.Run)
	v := r.Text.Value
	r.Text.Value = v[:p.Offset] + s + v[p.Offset:]
	d.Touch()
	return Position{Run: p.Run, Offset: p.Offset + len(s)}, nil
}

// InsertLineBreak splits the run at p and puts a line break between the
// halves. It returns the position at the start of the second half.
func (d *Document) InsertLineBreak(p Position) (Position, error) {
	if d.RunCount() == 0 && p == (Position{}) {
		d.appendRun(&Text{})
		d.Touch()
	}
	if !d.Valid(p) {
		return p, ErrInvalidPosition
	}
	r, _ := d.Run(p.Run)
	v := r.Text.Value
	r.Text.Value = v[:p.Offset]
	nodes := insertAt(r.Parent.Nodes(), r.Index+1, &Text{Value: v[p.Offset:]})
	r.Parent.SetNodes(insertAt(nodes, r.Index+1, &LineBreak{}))
	d.Touch()
	return Position{Run: p.Run + 1}, nil
}

func (d *Document) appendRun(t *Text) {
	for _, n := range d.root.Children {
		if b, ok := n.(*Block); ok {
			b.Children = append(b.Children, t)
			return
		}
	}
	d.root.Children = append(d.root.Children, &Block{Children: []Node{t}})
}

// DeleteBackward removes the character before p. At the start of a run it
// removes the line break or block boundary in front of it, looking through
// enclosing links, or else the last character of the previous run. It
// returns the new caret position.
func (d *Document) DeleteBackward(p Position) (Position, error) {
	if !d.Valid(p) {
		return p, ErrInvalidPosition
	}
	r, _ := d.Run(p.Run)
	if p.Offset > 0 {
		v := r.Text.Value
		_, size := utf8.DecodeLastRuneInString(v[:p.Offset])
		r.Text.Value = v[:p.Offset-size] + v[p.Offset:]
		d.Touch()
		return Position{Run: p.Run, Offset: p.Offset - size}, nil
	}
	if d.joinBefore(r) {
		d.Touch()
		return p, nil
	}
	if p.Run == 0 {
		return p, nil
	}
	prev, _ := d.Run(p.Run - 1)
	return d.DeleteBackward(Position{Run: p.Run - 1, Offset: len(prev.Text.Value)})
}

// DeleteForward removes the character after p. At the end of a run it
// removes the line break or block boundary after it, looking through
// enclosing links, or else the first character of the next run. The caret
// does not move.
func (d *Document) DeleteForward(p Position) (Position, error) {
	if !d.Valid(p) {
		return p, ErrInvalidPosition
	}
	r, _ := d.Run(p.Run)
	v := r.Text.Value
	if p.Offset < len(v) {
		_, size := utf8.DecodeRuneInString(v[p.Offset:])
		r.Text.Value = v[:p.Offset] + v[p.Offset+size:]
		d.Touch()
		return p, nil
	}
	if d.joinAfter(r) {
		d.Touch()
		return p, nil
	}
	if _, ok := d.Run(p.Run + 1); !ok {
		return p, nil
	}
	if _, err := d.DeleteForward(Position{Run: p.Run + 1}); err != nil {
		return p, err
	}
	return p, nil
}

// joinBefore removes the line break or block boundary directly in front of
// run r. Links r starts are climbed out of. It reports whether anything was
// removed.
func (d *Document) joinBefore(r Run) bool {
	parent, idx := r.Parent, r.Index
	for idx == 0 {
		switch c := parent.(type) {
		case *Inline:
			p, i, ok := d.ParentOf(c)
			if !ok {
				return false
			}
			parent, idx = p, i
		case *Block:
			p, i, ok := d.ParentOf(c)
			if !ok || i == 0 {
				return false
			}
			prev, ok := p.Nodes()[i-1].(*Block)
			if !ok {
				return false
			}
			mergeBlocks(p, prev, i)
			return true
		default:
			return false
		}
	}
	nodes := parent.Nodes()
	if _, ok := nodes[idx-1].(*LineBreak); ok {
		parent.SetNodes(removeAt(nodes, idx-1))
		return true
	}
	return false
}

// joinAfter removes the line break or block boundary directly after run r.
func (d *Document) joinAfter(r Run) bool {
	parent, idx := r.Parent, r.Index
	for idx == len(parent.Nodes())-1 {
		switch c := parent.(type) {
		case *Inline:
			p, i, ok := d.ParentOf(c)
			if !ok {
				return false
			}
			parent, idx = p, i
		case *Block:
			p, i, ok := d.ParentOf(c)
			if !ok || i+1 >= len(p.Nodes()) {
				return false
			}
			if _, ok := p.Nodes()[i+1].(*Block); !ok {
				return false
			}
			mergeBlocks(p, c, i+1)
			return true
		default:
			return false
		}
	}
	nodes := parent.Nodes()
	if _, ok := nodes[idx+1].(*LineBreak); ok {
		parent.SetNodes(removeAt(nodes, idx+1))
		return true
	}
	return false
}

// mergeBlocks moves the children of the block at index i of parent onto the
// end of prev and removes it. A trailing line break of prev goes too, since
// it stood for the same line end as the block boundary.
func mergeBlocks(parent Container, prev *Block, i int) {
	next := parent.Nodes()[i].(*Block)
	children := prev.Children
	if n := len(children); n > 0 {
		if _, ok := children[n-1].(*LineBreak); ok {
			children = children[:n-1]
		}
	}
	prev.Children = append(children, next.Children...)
	parent.SetNodes(removeAt(parent.Nodes(), i))
}

// ParentOf finds the container holding n and n's index in it.
func (d *Document) ParentOf(n Node) (Container, int, bool) {
	return findParent(d.root, n)
}

func findParent(parent Container, target Node) (Container, int, bool) {
	for i, n := range parent.Nodes() {
		if n == target {
			return parent, i, true
		}
		if c, ok := n.(Container); ok {
			if p, idx, found := findParent(c, target); found {
				return p, idx, true
			}
		}
	}
	return nil, 0, false
}

// Unwrap replaces a wrapper by its children, keeping the text in place.
func (d *Document) Unwrap(w *Inline) bool {
	parent, idx, ok := d.ParentOf(w)
	if !ok {
		return false
	}
	nodes := parent.Nodes()
	out := make([]Node, 0, len(nodes)-1+len(w.Children))
	out = append(out, nodes[:idx]...)
	out = append(out, w.Children...)
	out = append(out, nodes[idx+1:]...)
	parent.SetNodes(out)
	d.Touch()
	return true
}

// InsertBefore places n immediately before ref in ref's parent.
func (d *Document) InsertBefore(ref, n Node) bool {
	parent, idx, ok := d.ParentOf(ref)
	if !ok {
		return false
	}
	parent.SetNodes(insertAt(parent.Nodes(), idx, n))
	d.Touch()
	return true
}

// InsertAfter places n immediately after ref in ref's parent.
func (d *Document) InsertAfter(ref, n Node) bool {
	parent, idx, ok := d.ParentOf(ref)
	if !ok {
		return false
	}
	parent.SetNodes(insertAt(parent.Nodes(), idx+1, n))
	d.Touch()
	return true
}

// Markers returns every link wrapper in document order, outermost first.
func (d *Document) Markers() []*Inline {
	var out []*Inline
	Walk(d.root, func(n Node, _ Container, _ int) bool {
		if w, ok := n.(*Inline); ok && w.Link != nil {
			out = append(out, w)
		}
		return true
	})
	return out
}

// Walk visits every node depth-first. Returning false from fn skips the
// node's children.
func Walk(parent Container, fn func(n Node, parent Container, index int) bool) {
	for i, n := range parent.Nodes() {
		if !fn(n, parent, i) {
			continue
		}
		if c, ok := n.(Container); ok {
			Walk(c, fn)
		}
	}
}

func removeAt(nodes []Node, i int) []Node {
	out := make([]Node, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	return append(out, nodes[i+1:]...)
}

func insertAt(nodes []Node, i int, n Node) []Node {
	out := make([]Node, 0, len(nodes)+1)
	out = append(out, nodes[:i]...)
	out = append(out, n)
	return append(out, nodes[i:]...)
}
