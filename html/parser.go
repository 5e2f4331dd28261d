// Package html loads HTML into dom documents and serializes dom nodes back
// to markup, using golang.org/x/net/html as the underlying parser.
package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/chrisuehlinger/domkit/dom"
)

// Namespace URIs for the foreign content x/net/html recognizes.
const (
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)

// Parse parses a complete HTML document. The returned document is Complete.
func Parse(r io.Reader) (*dom.Document, error) {
	l := NewLoader()
	if err := l.Load(context.Background(), r); err != nil {
		return nil, err
	}
	return l.Document(), nil
}

// ParseString parses HTML from a string.
func ParseString(htmlContent string) (*dom.Document, error) {
	return Parse(strings.NewReader(htmlContent))
}

// Loader builds a document the way a browser's parser does: the document
// exists (and can be observed) in the Loading state before any markup has
// been read, moves to Interactive once parsing finishes and to Complete
// after that.
type Loader struct {
	doc *dom.Document
	url string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithURL records the document's address.
func WithURL(url string) LoaderOption {
	return func(l *Loader) {
		l.url = url
	}
}

// NewLoader creates a loader with an empty document in the Loading state.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{doc: dom.NewLoadingDocument()}
	for _, opt := range opts {
		opt(l)
	}
	if l.url != "" {
		l.doc.SetURL(l.url)
	}
	return l
}

// Document returns the document being loaded. It is safe to hand to other
// goroutines for readiness waits before Load is called.
func (l *Loader) Document() *dom.Document {
	return l.doc
}

// Load reads and parses r into the document, then advances it to
// Interactive and Complete. Readiness events fire on the calling goroutine.
// On error the document stays Loading.
func (l *Loader) Load(ctx context.Context, r io.Reader) error {
	if l.doc.ReadyState() != dom.Loading {
		return fmt.Errorf("html: document already loaded")
	}
	root, err := html.Parse(&contextReader{ctx: ctx, r: r})
	if err != nil {
		return fmt.Errorf("html: parse: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	convertTree(root, l.doc.AsNode(), l.doc)

	l.doc.SetReadyState(dom.Interactive)
	if err := ctx.Err(); err != nil {
		return err
	}
	l.doc.SetReadyState(dom.Complete)
	return nil
}

// contextReader stops a parse once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

// convertTree converts the children of an html.Node into dom nodes under parent.
func convertTree(src *html.Node, parent *dom.Node, doc *dom.Document) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		var node *dom.Node

		switch c.Type {
		case html.TextNode:
			node = doc.CreateTextNode(c.Data)

		case html.ElementNode:
			el := createElement(c, doc)
			if el == nil {
				continue
			}
			for _, attr := range c.Attr {
				name := attr.Key
				if attr.Namespace != "" {
					name = attr.Namespace + ":" + attr.Key
				}
				// x/net/html keeps attribute names the DOM refuses, such as
				// a stray quote; browsers drop those too
				_ = el.SetAttribute(name, attr.Val)
			}
			node = el.AsNode()

		case html.CommentNode:
			node = doc.CreateComment(c.Data)

		case html.DoctypeNode:
			node = doc.CreateDocumentType(c.Data)

		case html.DocumentNode:
			convertTree(c, parent, doc)
			continue

		default:
			continue
		}

		if _, err := parent.AppendChildWithError(node); err != nil {
			continue
		}
		if c.Type == html.ElementNode {
			convertTree(c, node, doc)
		}
	}
}

func createElement(n *html.Node, doc *dom.Document) *dom.Element {
	var (
		el  *dom.Element
		err error
	)
	switch n.Namespace {
	case "svg":
		el, err = doc.CreateElementNS(SVGNamespace, n.Data)
	case "math":
		el, err = doc.CreateElementNS(MathMLNamespace, n.Data)
	default:
		el, err = doc.CreateElement(n.Data)
	}
	if err != nil {
		return nil
	}
	return el
}
