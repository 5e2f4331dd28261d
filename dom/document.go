package dom

import (
	"strings"
)

// Document represents the entire HTML document.
type Document Node

// HTML namespace URI
const HTMLNamespace = "http://www.w3.org/1999/xhtml"

// Event types fired by SetReadyState.
const (
	EventReadyStateChange = "readystatechange"
	EventDOMContentLoaded = "DOMContentLoaded"
	EventLoad             = "load"
)

// ReadyState is the document's loading progress.
type ReadyState int

const (
	// Loading means the parser is still running.
	Loading ReadyState = iota
	// Interactive means parsing finished; subresources may still be loading.
	Interactive
	// Complete means the document and its subresources have loaded.
	Complete
)

// String returns the value document.readyState reports for s.
func (s ReadyState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Interactive:
		return "interactive"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// NewDocument creates a new empty HTML Document. Documents that are not
// created by a parser start out Complete.
func NewDocument() *Document {
	return newDocument("text/html", Complete)
}

// NewLoadingDocument creates an empty HTML Document in the Loading state, for
// parsers that advance it with SetReadyState.
func NewLoadingDocument() *Document {
	return newDocument("text/html", Loading)
}

// NewXMLDocument creates an empty XML Document. Tag names keep their case.
func NewXMLDocument() *Document {
	return newDocument("application/xml", Complete)
}

func newDocument(contentType string, state ReadyState) *Document {
	node := newNode(DocumentNode, "#document", nil)
	node.documentData = &documentData{
		contentType: contentType,
		readyState:  state,
	}
	doc := (*Document)(node)
	node.ownerDoc = doc
	return doc
}

// AsNode returns the underlying Node.
func (d *Document) AsNode() *Node {
	return (*Node)(d)
}

// NodeType returns DocumentNode (9).
func (d *Document) NodeType() NodeType {
	return DocumentNode
}

// IsHTML returns true if this is an HTML document.
func (d *Document) IsHTML() bool {
	return d.documentData.contentType == "text/html"
}

// ContentType returns the MIME type of the document.
func (d *Document) ContentType() string {
	return d.documentData.contentType
}

// URL returns the document's URL. Defaults to "about:blank".
func (d *Document) URL() string {
	if d.documentData.url == "" {
		return "about:blank"
	}
	return d.documentData.url
}

// SetURL sets the document's URL.
func (d *Document) SetURL(url string) {
	d.documentData.url = url
}

// ReadyState returns the document's current ready state.
func (d *Document) ReadyState() ReadyState {
	dd := d.documentData
	dd.mu.Lock()
	defer dd.mu.Unlock()
	return dd.readyState
}

// SetReadyState advances the document to state. Ready state only moves
// forward; skipped states are passed through in order so that every listener
// sees readystatechange, DOMContentLoaded on Interactive and load on Complete.
// The new state is visible before any of its events are dispatched.
func (d *Document) SetReadyState(state ReadyState) {
	dd := d.documentData
	for {
		dd.mu.Lock()
		if dd.readyState >= state {
			dd.mu.Unlock()
			return
		}
		dd.readyState++
		current := dd.readyState
		dd.mu.Unlock()

		d.AsNode().DispatchEvent(NewEvent(EventReadyStateChange, EventInit{}))
		switch current {
		case Interactive:
			d.AsNode().DispatchEvent(NewEvent(EventDOMContentLoaded, EventInit{Bubbles: true}))
		case Complete:
			d.AsNode().DispatchEvent(NewEvent(EventLoad, EventInit{}))
		}
	}
}

// AddEventListener registers fn for events of type typ on the document.
func (d *Document) AddEventListener(typ string, fn EventListener, opts ListenerOptions) ListenerID {
	return d.AsNode().AddEventListener(typ, fn, opts)
}

// RemoveEventListener removes the listener registered under id.
func (d *Document) RemoveEventListener(typ string, id ListenerID) bool {
	return d.AsNode().RemoveEventListener(typ, id)
}

// DocumentElement returns the root element of the document.
func (d *Document) DocumentElement() *Element {
	for child := d.firstChild; child != nil; child = child.nextSibling {
		if child.nodeType == ElementNode {
			return (*Element)(child)
		}
	}
	return nil
}

// Head returns the <head> element.
func (d *Document) Head() *Element {
	return d.rootChild("head")
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.rootChild("body")
}

func (d *Document) rootChild(localName string) *Element {
	docEl := d.DocumentElement()
	if docEl == nil {
		return nil
	}
	for child := docEl.FirstElementChild(); child != nil; child = child.NextElementSibling() {
		if strings.EqualFold(child.LocalName(), localName) {
			return child
		}
	}
	return nil
}

// CreateElement creates a new element with the given tag name.
// Returns an InvalidCharacterError if the tag name is not a valid XML Name.
// Per DOM spec: https://dom.spec.whatwg.org/#dom-document-createelement
func (d *Document) CreateElement(tagName string) (*Element, error) {
	if !isValidXMLName(tagName) {
		return nil, ErrInvalidCharacter("The tag name provided ('" + tagName + "') is not a valid name.")
	}

	var localName, resultTagName, namespace string
	if d.IsHTML() {
		// For HTML documents, tag names are lowercased for storage but uppercased for TagName
		localName = strings.ToLower(tagName)
		resultTagName = strings.ToUpper(tagName)
		namespace = HTMLNamespace
	} else {
		localName = tagName
		resultTagName = tagName
	}

	node := newNode(ElementNode, resultTagName, d)
	node.elementData = &elementData{
		localName:    localName,
		tagName:      resultTagName,
		namespaceURI: namespace,
	}
	return (*Element)(node), nil
}

// CreateElementNS creates an element in namespace. qualifiedName may carry a
// prefix ("svg:rect"); the local name is the part after the colon and case is
// preserved.
func (d *Document) CreateElementNS(namespace, qualifiedName string) (*Element, error) {
	if !isValidXMLName(qualifiedName) {
		return nil, ErrInvalidCharacter("The qualified name provided ('" + qualifiedName + "') is not a valid name.")
	}
	localName := qualifiedName
	if i := strings.IndexByte(qualifiedName, ':'); i >= 0 {
		localName = qualifiedName[i+1:]
	}

	tagName := qualifiedName
	if namespace == HTMLNamespace && d.IsHTML() {
		tagName = strings.ToUpper(qualifiedName)
	}

	node := newNode(ElementNode, tagName, d)
	node.elementData = &elementData{
		localName:    localName,
		tagName:      tagName,
		namespaceURI: namespace,
	}
	return (*Element)(node), nil
}

// MustCreateElement is CreateElement for tag names known to be valid.
func (d *Document) MustCreateElement(tagName string) *Element {
	el, err := d.CreateElement(tagName)
	if err != nil {
		panic(err)
	}
	return el
}

// CreateTextNode creates a new text node with the given data.
func (d *Document) CreateTextNode(data string) *Node {
	node := newNode(TextNode, "#text", d)
	node.textData = &data
	return node
}

// CreateComment creates a new comment node with the given data.
func (d *Document) CreateComment(data string) *Node {
	node := newNode(CommentNode, "#comment", d)
	node.textData = &data
	return node
}

// CreateDocumentType creates a doctype node such as <!DOCTYPE html>.
func (d *Document) CreateDocumentType(name string) *Node {
	node := newNode(DocumentTypeNode, name, d)
	return node
}

// CreateDocumentFragment creates a new empty DocumentFragment.
func (d *Document) CreateDocumentFragment() *DocumentFragment {
	return (*DocumentFragment)(newNode(DocumentFragmentNode, "#document-fragment", d))
}

// GetElementByID returns the first element in tree order whose id is id.
func (d *Document) GetElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	walkElements(d.AsNode(), func(el *Element) bool {
		if el.ID() == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// walkElements visits the element descendants of root in tree order until
// visit returns false.
func walkElements(root *Node, visit func(*Element) bool) bool {
	for c := root.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType != ElementNode {
			continue
		}
		if !visit((*Element)(c)) {
			return false
		}
		if !walkElements(c, visit) {
			return false
		}
	}
	return true
}

// WalkElements visits the element descendants of root in tree order until
// visit returns false.
func WalkElements(root *Node, visit func(*Element) bool) {
	walkElements(root, visit)
}

// isValidXMLName checks if a string is a valid XML name.
// Per XML spec, names must start with a letter, underscore, or colon,
// and can contain letters, digits, hyphens, underscores, colons, and periods.
func isValidXMLName(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range name {
		if i == 0 {
			if !isXMLNameStartChar(ch) {
				return false
			}
			continue
		}
		if !isXMLNameChar(ch) {
			return false
		}
	}
	return true
}

// isXMLNameStartChar checks if a rune is a valid XML name start character.
func isXMLNameStartChar(ch rune) bool {
	return ch == ':' ||
		(ch >= 'A' && ch <= 'Z') ||
		ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 0xC0 && ch <= 0xD6) ||
		(ch >= 0xD8 && ch <= 0xF6) ||
		(ch >= 0xF8 && ch <= 0x2FF) ||
		(ch >= 0x370 && ch <= 0x37D) ||
		(ch >= 0x37F && ch <= 0x1FFF) ||
		(ch >= 0x200C && ch <= 0x200D) ||
		(ch >= 0x2070 && ch <= 0x218F) ||
		(ch >= 0x2C00 && ch <= 0x2FEF) ||
		(ch >= 0x3001 && ch <= 0xD7FF) ||
		(ch >= 0xF900 && ch <= 0xFDCF) ||
		(ch >= 0xFDF0 && ch <= 0xFFFD) ||
		(ch >= 0x10000 && ch <= 0xEFFFF)
}

// isXMLNameChar checks if a rune is a valid XML name character.
func isXMLNameChar(ch rune) bool {
	return isXMLNameStartChar(ch) ||
		ch == '-' ||
		ch == '.' ||
		(ch >= '0' && ch <= '9') ||
		ch == 0xB7 ||
		(ch >= 0x0300 && ch <= 0x036F) ||
		(ch >= 0x203F && ch <= 0x2040)
}
