package dom

// DocumentFragment is a lightweight container for building subtrees before
// inserting them. Inserting a fragment moves its children, not the fragment.
type DocumentFragment Node

// AsNode returns the underlying Node.
func (df *DocumentFragment) AsNode() *Node {
	return (*Node)(df)
}

// NodeType returns DocumentFragmentNode (11).
func (df *DocumentFragment) NodeType() NodeType {
	return DocumentFragmentNode
}

// Append appends nodes to the fragment.
func (df *DocumentFragment) Append(nodes ...*Node) error {
	for _, n := range nodes {
		if _, err := df.AsNode().AppendChildWithError(n); err != nil {
			return err
		}
	}
	return nil
}

// ChildElementCount returns the number of child elements.
func (df *DocumentFragment) ChildElementCount() int {
	count := 0
	for c := df.firstChild; c != nil; c = c.nextSibling {
		if c.nodeType == ElementNode {
			count++
		}
	}
	return count
}
