// Package dom is the document model domkit's helpers work against. It covers
// the node tree, elements and their attributes, class lists, datasets, inline
// style, reflected properties, event dispatch and document readiness.
// https://dom.spec.whatwg.org/
package dom

// NodeType is the numeric kind a node reports. The values are the DOM's own
// constants, so scripts comparing nodeType against them keep working.
type NodeType uint16

// Only the kinds domkit builds are listed. Attr, CDATA and processing
// instruction nodes never appear in a tree.
const (
	ElementNode          NodeType = 1
	TextNode             NodeType = 3
	CommentNode          NodeType = 8
	DocumentNode         NodeType = 9
	DocumentTypeNode     NodeType = 10
	DocumentFragmentNode NodeType = 11
)

// String returns the constant's name as scripts see it on Node, for example
// ELEMENT_NODE.
func (nt NodeType) String() string {
	switch nt {
	case ElementNode:
		return "ELEMENT_NODE"
	case TextNode:
		return "TEXT_NODE"
	case CommentNode:
		return "COMMENT_NODE"
	case DocumentNode:
		return "DOCUMENT_NODE"
	case DocumentTypeNode:
		return "DOCUMENT_TYPE_NODE"
	case DocumentFragmentNode:
		return "DOCUMENT_FRAGMENT_NODE"
	}
	return "UNKNOWN_NODE"
}
