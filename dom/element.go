package dom

import (
	"strings"
)

// Element represents an element in the DOM tree.
// Element inherits from Node and provides element-specific properties and methods.
type Element Node

// AsNode returns the underlying Node.
func (e *Element) AsNode() *Node {
	return (*Node)(e)
}

// NodeType returns ElementNode (1).
func (e *Element) NodeType() NodeType {
	return ElementNode
}

// TagName returns the tag name in uppercase (for HTML elements).
func (e *Element) TagName() string {
	return e.elementData.tagName
}

// LocalName returns the local name of the element (lowercase for HTML).
func (e *Element) LocalName() string {
	return e.elementData.localName
}

// NamespaceURI returns the namespace URI of the element.
func (e *Element) NamespaceURI() string {
	return e.elementData.namespaceURI
}

// OwnerDocument returns the document the element was created by or adopted into.
func (e *Element) OwnerDocument() *Document {
	return e.ownerDoc
}

// isHTMLElementInHTMLDocument returns true if this element is an HTML element
// in an HTML document. This is used for case-insensitive attribute handling.
func (e *Element) isHTMLElementInHTMLDocument() bool {
	return e.elementData.namespaceURI == HTMLNamespace && e.ownerDoc != nil && e.ownerDoc.IsHTML()
}

// ID returns the id attribute value.
func (e *Element) ID() string {
	return e.GetAttribute("id")
}

// SetID sets the id attribute value.
func (e *Element) SetID(id string) {
	e.setAttributeValue("id", id)
}

// ClassName returns the class attribute value.
func (e *Element) ClassName() string {
	return e.GetAttribute("class")
}

// SetClassName sets the class attribute value.
func (e *Element) SetClassName(className string) {
	e.setAttributeValue("class", className)
}

// ClassList returns a DOMTokenList for the class attribute.
func (e *Element) ClassList() *DOMTokenList {
	if e.elementData.classList == nil {
		e.elementData.classList = newDOMTokenList(e, "class")
	}
	return e.elementData.classList
}

// Dataset returns the element's data-* attributes as a DOMStringMap.
func (e *Element) Dataset() *DOMStringMap {
	if e.elementData.dataset == nil {
		e.elementData.dataset = &DOMStringMap{element: e}
	}
	return e.elementData.dataset
}

// Style returns the element's inline style declaration.
func (e *Element) Style() *CSSStyleDeclaration {
	if e.elementData.style == nil {
		e.elementData.style = NewCSSStyleDeclaration(e)
	}
	return e.elementData.style
}

// TextContent returns the text of all descendant text nodes.
func (e *Element) TextContent() string {
	return e.AsNode().TextContent()
}

// SetTextContent replaces the element's children with a single text node.
func (e *Element) SetTextContent(text string) {
	e.AsNode().SetTextContent(text)
}

// AppendChild appends child and returns it.
func (e *Element) AppendChild(child *Node) (*Node, error) {
	return e.AsNode().AppendChildWithError(child)
}

// Children returns the child elements.
func (e *Element) Children() []*Element {
	var children []*Element
	for c := e.FirstElementChild(); c != nil; c = c.NextElementSibling() {
		children = append(children, c)
	}
	return children
}

// ChildElementCount returns the number of child elements.
func (e *Element) ChildElementCount() int {
	count := 0
	for c := e.FirstElementChild(); c != nil; c = c.NextElementSibling() {
		count++
	}
	return count
}

// FirstElementChild returns the first child element.
func (e *Element) FirstElementChild() *Element {
	for c := e.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// LastElementChild returns the last child element.
func (e *Element) LastElementChild() *Element {
	for c := e.lastChild; c != nil; c = c.prevSibling {
		if c.nodeType == ElementNode {
			return (*Element)(c)
		}
	}
	return nil
}

// PreviousElementSibling returns the previous sibling element.
func (e *Element) PreviousElementSibling() *Element {
	for s := e.prevSibling; s != nil; s = s.prevSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// NextElementSibling returns the next sibling element.
func (e *Element) NextElementSibling() *Element {
	for s := e.nextSibling; s != nil; s = s.nextSibling {
		if s.nodeType == ElementNode {
			return (*Element)(s)
		}
	}
	return nil
}

// ParentElement returns the parent element, or nil at the root.
func (e *Element) ParentElement() *Element {
	return e.AsNode().ParentElement()
}

// GetElementsByTagName returns a snapshot of descendants with the given local
// name; "*" matches every element.
func (e *Element) GetElementsByTagName(name string) []*Element {
	var result []*Element
	walkElements(e.AsNode(), func(el *Element) bool {
		if name == "*" || strings.EqualFold(el.LocalName(), name) {
			result = append(result, el)
		}
		return true
	})
	return result
}

// AddEventListener registers fn for events of type typ on the element.
func (e *Element) AddEventListener(typ string, fn EventListener, opts ListenerOptions) ListenerID {
	return e.AsNode().AddEventListener(typ, fn, opts)
}

// RemoveEventListener removes the listener registered under id.
func (e *Element) RemoveEventListener(typ string, id ListenerID) bool {
	return e.AsNode().RemoveEventListener(typ, id)
}

// DispatchEvent dispatches ev with the element as target.
func (e *Element) DispatchEvent(ev *Event) bool {
	return e.AsNode().DispatchEvent(ev)
}

// Click dispatches a bubbling, cancelable click event.
func (e *Element) Click() bool {
	return e.DispatchEvent(NewEvent("click", EventInit{Bubbles: true, Cancelable: true}))
}

// SelectorMatcher reports whether an element matches a selector. The css
// package installs one when it is imported.
type SelectorMatcher func(el *Element, selector string) (bool, error)

var selectorMatcher SelectorMatcher

// SetSelectorMatcher installs the matcher behind Matches and Closest.
func SetSelectorMatcher(m SelectorMatcher) {
	selectorMatcher = m
}

// Matches reports whether the element matches selector.
func (e *Element) Matches(selector string) (bool, error) {
	if selectorMatcher == nil {
		return false, ErrSyntax("no selector engine installed; import the css package")
	}
	return selectorMatcher(e, selector)
}

// Closest returns the nearest inclusive ancestor matching selector, or nil.
func (e *Element) Closest(selector string) (*Element, error) {
	for cur := e; cur != nil; cur = cur.ParentElement() {
		ok, err := cur.Matches(selector)
		if err != nil {
			return nil, err
		}
		if ok {
			return cur, nil
		}
	}
	return nil, nil
}
