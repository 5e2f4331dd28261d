package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/chrisuehlinger/domkit/dom"
)

// Render writes the HTML serialization of node, including node itself, to w.
// For an element this is its outerHTML; for a document, the whole markup.
func Render(w io.Writer, node *dom.Node) error {
	return html.Render(w, toHTMLNode(node))
}

// OuterHTML returns the serialization of el.
func OuterHTML(el *dom.Element) string {
	var sb strings.Builder
	_ = Render(&sb, el.AsNode())
	return sb.String()
}

// InnerHTML returns the serialization of node's children.
func InnerHTML(node *dom.Node) string {
	var sb strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		_ = html.Render(&sb, toHTMLNode(c))
	}
	return sb.String()
}

// toHTMLNode converts a dom subtree into an x/net/html tree for rendering.
func toHTMLNode(n *dom.Node) *html.Node {
	var out *html.Node
	switch n.NodeType() {
	case dom.DocumentNode, dom.DocumentFragmentNode:
		out = &html.Node{Type: html.DocumentNode}
	case dom.ElementNode:
		el := (*dom.Element)(n)
		out = &html.Node{
			Type:     html.ElementNode,
			Data:     el.LocalName(),
			DataAtom: atom.Lookup([]byte(el.LocalName())),
		}
		switch el.NamespaceURI() {
		case SVGNamespace:
			out.Namespace = "svg"
		case MathMLNamespace:
			out.Namespace = "math"
		}
		for _, a := range el.Attributes() {
			out.Attr = append(out.Attr, html.Attribute{Key: a.Name(), Val: a.Value()})
		}
	case dom.TextNode:
		out = &html.Node{Type: html.TextNode, Data: n.NodeValue()}
	case dom.CommentNode:
		out = &html.Node{Type: html.CommentNode, Data: n.NodeValue()}
	case dom.DocumentTypeNode:
		out = &html.Node{Type: html.DoctypeNode, Data: n.NodeName()}
	default:
		out = &html.Node{Type: html.TextNode}
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out.AppendChild(toHTMLNode(c))
	}
	return out
}
