package document

// Kind identifies the variant of a Node.
type Kind uint8

const (
	// KindText is a run of characters.
	KindText Kind = iota
	// KindLineBreak is an explicit line break.
	KindLineBreak
	// KindInline is a transparent inline wrapper (link markers, emphasis).
	KindInline
	// KindBlock is a block-level container.
	KindBlock
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLineBreak:
		return "linebreak"
	case KindInline:
		return "inline"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Node is one element of the document tree.
// The set of implementations is closed: *Text, *LineBreak, *Inline, *Block.
type Node interface {
	Kind() Kind
	node()
}

// Container is a node that owns child nodes.
type Container interface {
	Nodes() []Node
	SetNodes(nodes []Node)
}

// Text owns a run of characters.
type Text struct {
	Value string
}

// LineBreak is an explicit line break.
type LineBreak struct{}

// Inline wraps child nodes without affecting line structure.
// A non-nil Link turns the wrapper into a link.
type Inline struct {
	// Tag is the markup element name used when rendering ("span", "a", "em").
	Tag      string
	Link     *Link
	Children []Node
}

// Block is a block-level container.
type Block struct {
	// Tag is the markup element name used when rendering ("div", "p").
	Tag      string
	Children []Node
}

// Fragment is the root of a document tree.
type Fragment struct {
	Children []Node
}

func (*Text) Kind() Kind      { return KindText }
func (*LineBreak) Kind() Kind { return KindLineBreak }
func (*Inline) Kind() Kind    { return KindInline }
func (*Block) Kind() Kind     { return KindBlock }

func (*Text) node()      {}
func (*LineBreak) node() {}
func (*Inline) node()    {}
func (*Block) node()     {}

// Nodes returns the wrapper's children.
func (n *Inline) Nodes() []Node { return n.Children }

// SetNodes replaces the wrapper's children.
func (n *Inline) SetNodes(nodes []Node) { n.Children = nodes }

// Nodes returns the block's children.
func (n *Block) Nodes() []Node { return n.Children }

// SetNodes replaces the block's children.
func (n *Block) SetNodes(nodes []Node) { n.Children = nodes }

// Nodes returns the top-level nodes.
func (f *Fragment) Nodes() []Node { return f.Children }

// SetNodes replaces the top-level nodes.
func (f *Fragment) SetNodes(nodes []Node) { f.Children = nodes }

// IsMarker reports whether the wrapper is an entity link marker.
func (n *Inline) IsMarker() bool {
	return n.Link != nil && n.Link.IsMarker()
}

// TextContent returns the concatenated text of all descendant runs.
// Line breaks contribute nothing.
func TextContent(n Node) string {
	switch v := n.(type) {
	case *Text:
		return v.Value
	case *LineBreak:
		return ""
	case *Inline:
		return joinText(v.Children)
	case *Block:
		return joinText(v.Children)
	}
	return ""
}

func joinText(nodes []Node) string {
	if len(nodes) == 1 {
		return TextContent(nodes[0])
	}
	var out []byte
	for _, n := range nodes {
		out = append(out, TextContent(n)...)
	}
	return string(out)
}

// SingleRun returns the only child run of a wrapper, or nil when the wrapper
// holds anything other than exactly one text node.
func (n *Inline) SingleRun() *Text {
	if len(n.Children) != 1 {
		return nil
	}
	t, _ := n.Children[0].(*Text)
	return t
}

// Clone returns a deep copy of the node.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Text:
		return &Text{Value: v.Value}
	case *LineBreak:
		return &LineBreak{}
	case *Inline:
		c := &Inline{Tag: v.Tag, Children: cloneNodes(v.Children)}
		if v.Link != nil {
			l := *v.Link
			c.Link = &l
		}
		return c
	case *Block:
		return &Block{Tag: v.Tag, Children: cloneNodes(v.Children)}
	}
	return nil
}

// Clone returns a deep copy of the fragment.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	return &Fragment{Children: cloneNodes(f.Children)}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Clone(n)
	}
	return out
}
