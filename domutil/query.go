package domutil

import (
	"github.com/chrisuehlinger/domkit/css"
	"github.com/chrisuehlinger/domkit/dom"
)

// Root is a node a query searches under. *dom.Document, *dom.Element and
// *dom.DocumentFragment all satisfy it.
type Root = css.Root

// Kind is the set of typed element views, such as dom.InputElement, that the
// generic queries can return.
type Kind interface {
	~struct{ *dom.Element }
}

// As views el as the element kind E. The conversion is unchecked: nothing
// verifies that el really is, say, an <input>.
func As[E Kind](el *dom.Element) E {
	return E(struct{ *dom.Element }{el})
}

func resolveRoot(root Root) Root {
	if root == nil {
		return Default()
	}
	// A typed nil pointer inside root is as good as no root.
	var isNil bool
	switch r := root.(type) {
	case *dom.Document:
		isNil = r == nil
	case *dom.Element:
		isNil = r == nil
	case *dom.DocumentFragment:
		isNil = r == nil
	case *dom.Node:
		isNil = r == nil
	}
	if isNil {
		return Default()
	}
	return root
}

// Qs returns the first element under root, in tree order, that matches
// selector, or nil when none does. A nil root means Default(). A malformed
// selector returns the SyntaxError from the selector engine.
func Qs(selector string, root Root) (*dom.Element, error) {
	return css.QuerySelector(resolveRoot(root), selector)
}

// QsAs is Qs returning the match as the element kind E. ok is false when
// nothing matched.
func QsAs[E Kind](selector string, root Root) (view E, ok bool, err error) {
	el, err := Qs(selector, root)
	if err != nil || el == nil {
		return view, false, err
	}
	return As[E](el), true, nil
}

// Qsa returns every element under root that matches selector, in tree order.
// The slice is a snapshot: later changes to the tree do not affect it. It is
// empty, not nil, when nothing matches.
func Qsa(selector string, root Root) ([]*dom.Element, error) {
	return css.QuerySelectorAll(resolveRoot(root), selector)
}

// QsaAs is Qsa returning the matches as the element kind E.
func QsaAs[E Kind](selector string, root Root) ([]E, error) {
	els, err := Qsa(selector, root)
	if err != nil {
		return nil, err
	}
	views := make([]E, len(els))
	for i, el := range els {
		views[i] = As[E](el)
	}
	return views, nil
}
