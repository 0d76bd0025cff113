package markup

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/inkwell/internal/document"
)

// Class names and attributes carried by link markers in the snapshot.
const (
	ClassWikilink  = "wikilink"
	ClassCandidate = "wikilink-candidate"

	AttrKind        = "data-kind"
	AttrEntityID    = "data-entity-id"
	AttrAliasID     = "data-alias-id"
	AttrCandidateID = "data-candidate-id"
	AttrAlias       = "data-alias"
)

// Render serializes a fragment as an HTML snapshot.
func Render(f *document.Fragment) string {
	if f == nil {
		return ""
	}
	return RenderNodes(f.Children...)
}

// RenderNodes serializes nodes as HTML without an enclosing element.
func RenderNodes(nodes ...document.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		hn := toHTML(n)
		if hn == nil {
			continue
		}
		// Writes to a strings.Builder cannot fail.
		_ = html.Render(&b, hn)
	}
	return b.String()
}

func toHTML(n document.Node) *html.Node {
	switch v := n.(type) {
	case *document.Text:
		return &html.Node{Type: html.TextNode, Data: v.Value}
	case *document.LineBreak:
		return element("br")
	case *document.Inline:
		el := inlineElement(v)
		for _, c := range v.Children {
			if hc := toHTML(c); hc != nil {
				el.AppendChild(hc)
			}
		}
		return el
	case *document.Block:
		tag := v.Tag
		if tag == "" {
			tag = "div"
		}
		el := element(tag)
		for _, c := range v.Children {
			if hc := toHTML(c); hc != nil {
				el.AppendChild(hc)
			}
		}
		return el
	}
	return nil
}

func element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

func inlineElement(v *document.Inline) *html.Node {
	l := v.Link
	if l == nil {
		tag := v.Tag
		if tag == "" {
			tag = "span"
		}
		return element(tag)
	}
	if l.Kind == document.LinkExternal {
		el := element("a")
		el.Attr = append(el.Attr, html.Attribute{Key: "href", Val: l.Href})
		return el
	}

	el := element("span")
	class := ClassWikilink
	if l.Kind == document.LinkCandidate {
		class = ClassCandidate
	}
	el.Attr = append(el.Attr,
		html.Attribute{Key: "class", Val: class},
		html.Attribute{Key: AttrKind, Val: l.Kind.String()},
	)
	addID := func(key string, id document.ID) {
		if id != document.NoID {
			el.Attr = append(el.Attr, html.Attribute{Key: key, Val: strconv.FormatInt(id, 10)})
		}
	}
	addID(AttrEntityID, l.EntityID)
	addID(AttrAliasID, l.AliasID)
	addID(AttrCandidateID, l.CandidateID)
	if l.Alias != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: AttrAlias, Val: l.Alias})
	}
	return el
}

// Parse reads an HTML snapshot back into a fragment.
//
// Only the shapes Render produces are mapped precisely: br, link spans and
// anchors. Other phrasing elements become transparent inline wrappers and
// other flow elements become blocks. Scripts, styles and comments are
// dropped.
func Parse(snapshot string) (*document.Fragment, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(snapshot), ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	f := &document.Fragment{}
	for _, hn := range nodes {
		n, err := fromHTML(hn)
		if err != nil {
			return nil, err
		}
		if n != nil {
			f.Children = append(f.Children, n)
		}
	}
	return f, nil
}

func fromHTML(hn *html.Node) (document.Node, error) {
	switch hn.Type {
	case html.TextNode:
		return &document.Text{Value: hn.Data}, nil
	case html.ElementNode:
	default:
		return nil, nil
	}

	switch hn.DataAtom {
	case atom.Br:
		return &document.LineBreak{}, nil
	case atom.Script, atom.Style, atom.Template:
		return nil, nil
	}

	children, err := childrenOf(hn)
	if err != nil {
		return nil, err
	}

	if isBlock(hn.DataAtom) {
		return &document.Block{Tag: hn.Data, Children: children}, nil
	}

	link, err := linkOf(hn)
	if err != nil {
		return nil, err
	}
	return &document.Inline{Tag: hn.Data, Link: link, Children: children}, nil
}

func childrenOf(hn *html.Node) ([]document.Node, error) {
	var out []document.Node
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		n, err := fromHTML(c)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Div, atom.P, atom.Li, atom.Ul, atom.Ol, atom.Blockquote, atom.Pre,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Section, atom.Article, atom.Header, atom.Footer, atom.Table, atom.Tr, atom.Td, atom.Th:
		return true
	}
	return false
}

func linkOf(hn *html.Node) (*document.Link, error) {
	attrs := make(map[string]string, len(hn.Attr))
	for _, a := range hn.Attr {
		attrs[a.Key] = a.Val
	}

	kindName, hasKind := attrs[AttrKind]
	if !hasKind {
		switch {
		case hasClass(attrs["class"], ClassCandidate):
			kindName, hasKind = "candidate", true
		case hasClass(attrs["class"], ClassWikilink):
			kindName, hasKind = "wikilink", true
		}
	}
	if !hasKind {
		if hn.DataAtom == atom.A {
			if href, ok := attrs["href"]; ok {
				return &document.Link{Kind: document.LinkExternal, Href: href}, nil
			}
		}
		return nil, nil
	}

	kind, ok := document.ParseLinkKind(kindName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown link kind %q", ErrMalformedSnapshot, kindName)
	}
	link := &document.Link{Kind: kind, Href: attrs["href"], Alias: attrs[AttrAlias]}
	ids := []struct {
		key string
		dst *document.ID
	}{
		{AttrEntityID, &link.EntityID},
		{AttrAliasID, &link.AliasID},
		{AttrCandidateID, &link.CandidateID},
	}
	for _, id := range ids {
		raw, ok := attrs[id.key]
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrMalformedSnapshot, id.key, raw)
		}
		*id.dst = v
	}
	return link, nil
}

func hasClass(classes, name string) bool {
	for _, c := range strings.Fields(classes) {
		if c == name {
			return true
		}
	}
	return false
}
