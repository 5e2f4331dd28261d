package dom

import (
	"strings"
	"sync"
)

// Node represents a node in the DOM tree. Document, Element and
// DocumentFragment are conversions of Node, as in the DOM's inheritance chain.
//
// The tree itself is not synchronized: like a browser's main thread, a single
// goroutine is expected to own it. Ready state and event listener lists are
// synchronized because loaders advance them from other goroutines.
type Node struct {
	nodeType   NodeType
	nodeName   string
	ownerDoc   *Document
	parentNode *Node

	// First/last child and sibling pointers for efficient traversal
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node

	// Type-specific data (only one will be non-nil based on nodeType)
	elementData  *elementData
	textData     *string
	documentData *documentData

	events EventTarget
}

// elementData holds data specific to Element nodes.
type elementData struct {
	localName    string
	namespaceURI string
	tagName      string
	attributes   []*Attr

	classList *DOMTokenList
	dataset   *DOMStringMap
	style     *CSSStyleDeclaration

	// IDL state that is not reflected to an attribute (input value, checkedness).
	state map[string]any
	// Listener ids registered through on* properties.
	handlers map[string]ListenerID
}

// documentData holds data specific to Document nodes.
type documentData struct {
	contentType string
	url         string

	mu         sync.Mutex
	readyState ReadyState
}

// newNode creates a new node with the given type and name.
func newNode(nodeType NodeType, nodeName string, ownerDoc *Document) *Node {
	return &Node{
		nodeType: nodeType,
		nodeName: nodeName,
		ownerDoc: ownerDoc,
	}
}

// AsNode returns n, so a bare *Node can be used wherever a query root is
// expected.
func (n *Node) AsNode() *Node {
	return n
}

// NodeType returns the type of the node.
func (n *Node) NodeType() NodeType {
	return n.nodeType
}

// NodeName returns the name of the node: the upper-case tag name for HTML
// elements, "#text", "#comment", "#document" or "#document-fragment".
func (n *Node) NodeName() string {
	return n.nodeName
}

// OwnerDocument returns the Document this node belongs to, or nil for a Document.
func (n *Node) OwnerDocument() *Document {
	if n.nodeType == DocumentNode {
		return nil
	}
	return n.ownerDoc
}

// ParentNode returns the parent of this node.
func (n *Node) ParentNode() *Node {
	return n.parentNode
}

// ParentElement returns the parent if it is an element, nil otherwise.
func (n *Node) ParentElement() *Element {
	if n.parentNode != nil && n.parentNode.nodeType == ElementNode {
		return (*Element)(n.parentNode)
	}
	return nil
}

// FirstChild returns the first child of this node.
func (n *Node) FirstChild() *Node {
	return n.firstChild
}

// LastChild returns the last child of this node.
func (n *Node) LastChild() *Node {
	return n.lastChild
}

// NextSibling returns the next sibling of this node.
func (n *Node) NextSibling() *Node {
	return n.nextSibling
}

// PreviousSibling returns the previous sibling of this node.
func (n *Node) PreviousSibling() *Node {
	return n.prevSibling
}

// HasChildNodes returns true if this node has any children.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// ChildNodes returns a snapshot of this node's children.
func (n *Node) ChildNodes() []*Node {
	var children []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		children = append(children, c)
	}
	return children
}

// NodeValue returns the data of text and comment nodes, and "" otherwise.
func (n *Node) NodeValue() string {
	if n.textData != nil {
		return *n.textData
	}
	return ""
}

// Contains returns true if other is this node or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parentNode {
		if cur == n {
			return true
		}
	}
	return false
}

// AppendChild appends child to this node and returns it. Errors are ignored;
// use AppendChildWithError to observe them.
func (n *Node) AppendChild(child *Node) *Node {
	result, _ := n.InsertBeforeWithError(child, nil)
	return result
}

// AppendChildWithError appends child to this node.
func (n *Node) AppendChildWithError(child *Node) (*Node, error) {
	return n.InsertBeforeWithError(child, nil)
}

// InsertBefore inserts child before ref, or appends when ref is nil.
func (n *Node) InsertBefore(child, ref *Node) *Node {
	result, _ := n.InsertBeforeWithError(child, ref)
	return result
}

// InsertBeforeWithError inserts child before ref, or appends when ref is nil.
// Inserting a DocumentFragment moves its children.
func (n *Node) InsertBeforeWithError(child, ref *Node) (*Node, error) {
	if err := n.ensurePreInsertionValidity(child, ref); err != nil {
		return nil, err
	}
	if ref == child {
		ref = child.nextSibling
	}

	if child.nodeType == DocumentFragmentNode {
		for _, c := range child.ChildNodes() {
			child.removeChild(c)
			n.insertBefore(c, ref)
		}
		return child, nil
	}

	if child.parentNode != nil {
		child.parentNode.removeChild(child)
	}
	n.insertBefore(child, ref)
	return child, nil
}

func (n *Node) ensurePreInsertionValidity(child, ref *Node) error {
	switch n.nodeType {
	case DocumentNode, DocumentFragmentNode, ElementNode:
	default:
		return ErrHierarchyRequest("The parent cannot have children.")
	}
	if child == nil {
		return ErrHierarchyRequest("The node to be inserted is null.")
	}
	if child.Contains(n) {
		return ErrHierarchyRequest("The new child element contains the parent.")
	}
	if child.nodeType == DocumentNode {
		return ErrHierarchyRequest("Nodes of type '#document' may not be inserted.")
	}
	if ref != nil && ref.parentNode != n {
		return ErrNotFound("The node before which the new node is to be inserted is not a child of this node.")
	}
	if n.nodeType == DocumentNode {
		if child.nodeType == TextNode {
			return ErrHierarchyRequest("Cannot insert a text node into a document.")
		}
		if child.nodeType == ElementNode && (*Document)(n).DocumentElement() != nil {
			return ErrHierarchyRequest("Only one element on document allowed.")
		}
	}
	return nil
}

// insertBefore links child into the child list without validation.
func (n *Node) insertBefore(child, ref *Node) {
	child.parentNode = n
	if n.nodeType == DocumentNode {
		child.adopt((*Document)(n))
	} else if n.ownerDoc != nil {
		child.adopt(n.ownerDoc)
	}

	if ref == nil {
		child.prevSibling = n.lastChild
		child.nextSibling = nil
		if n.lastChild != nil {
			n.lastChild.nextSibling = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
		return
	}

	child.nextSibling = ref
	child.prevSibling = ref.prevSibling
	if ref.prevSibling != nil {
		ref.prevSibling.nextSibling = child
	} else {
		n.firstChild = child
	}
	ref.prevSibling = child
}

func (n *Node) adopt(doc *Document) {
	if n.ownerDoc == doc {
		return
	}
	n.ownerDoc = doc
	for c := n.firstChild; c != nil; c = c.nextSibling {
		c.adopt(doc)
	}
}

// RemoveChild removes child from this node and returns it.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.parentNode != n {
		return nil, ErrNotFound("The node to be removed is not a child of this node.")
	}
	n.removeChild(child)
	return child, nil
}

func (n *Node) removeChild(child *Node) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parentNode = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// TextContent returns the concatenated text of all descendant text nodes.
// Documents return "".
func (n *Node) TextContent() string {
	switch n.nodeType {
	case TextNode, CommentNode:
		return n.NodeValue()
	case DocumentNode, DocumentTypeNode:
		return ""
	}
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		switch c.nodeType {
		case TextNode:
			sb.WriteString(*c.textData)
		case ElementNode, DocumentFragmentNode:
			c.collectText(sb)
		}
	}
}

// SetTextContent replaces all children with a single text node holding text.
// An empty string leaves the node without children.
func (n *Node) SetTextContent(text string) {
	switch n.nodeType {
	case TextNode, CommentNode:
		n.textData = &text
		return
	case DocumentNode, DocumentTypeNode:
		return
	}
	for n.firstChild != nil {
		n.removeChild(n.firstChild)
	}
	if text == "" {
		return
	}
	t := newNode(TextNode, "#text", n.ownerDoc)
	t.textData = &text
	n.insertBefore(t, nil)
}

// AddEventListener registers fn for events of type typ on this node.
func (n *Node) AddEventListener(typ string, fn EventListener, opts ListenerOptions) ListenerID {
	return n.events.add(typ, fn, opts)
}

// RemoveEventListener removes the listener registered under id.
func (n *Node) RemoveEventListener(typ string, id ListenerID) bool {
	return n.events.remove(typ, id)
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return n.events.count(typ)
}
