package css

import (
	"container/list"
	"sync"

	"github.com/chrisuehlinger/domkit/dom"
)

// Root is anything a query can run under: *dom.Document, *dom.Element,
// *dom.DocumentFragment or *dom.Node.
type Root interface {
	AsNode() *dom.Node
}

// QuerySelector returns the first element in tree order under root matching
// selector, or nil. A malformed selector returns a dom SyntaxError.
func QuerySelector(root Root, selector string) (*dom.Element, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	node := root.AsNode()
	ctx := scopeOf(node)

	var found *dom.Element
	dom.WalkElements(node, func(el *dom.Element) bool {
		if sel.matches(el, ctx) {
			found = el
			return false
		}
		return true
	})
	return found, nil
}

// QuerySelectorAll returns every element under root matching selector, in
// tree order. The result is a snapshot and empty (non-nil) when nothing matches.
func QuerySelectorAll(root Root, selector string) ([]*dom.Element, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	node := root.AsNode()
	ctx := scopeOf(node)

	results := []*dom.Element{}
	dom.WalkElements(node, func(el *dom.Element) bool {
		if sel.matches(el, ctx) {
			results = append(results, el)
		}
		return true
	})
	return results, nil
}

// Matches reports whether el matches selector, the way Element.matches does.
func Matches(el *dom.Element, selector string) (bool, error) {
	sel, err := Compile(selector)
	if err != nil {
		return false, err
	}
	return sel.matches(el, matchContext{scope: el}), nil
}

func init() {
	dom.SetSelectorMatcher(Matches)
}

func scopeOf(node *dom.Node) matchContext {
	if node.NodeType() == dom.ElementNode {
		return matchContext{scope: (*dom.Element)(node)}
	}
	return matchContext{}
}

// DefaultCacheSize bounds the compiled-selector cache.
const DefaultCacheSize = 256

var selectorCache = NewSelectorCache(DefaultCacheSize)

// Compile parses selector through the shared cache.
func Compile(selector string) (*CSSSelector, error) {
	return selectorCache.Get(selector)
}

// SelectorCache is an LRU of parsed selectors keyed by source text. Parsed
// selectors are never mutated after parsing, so one may be shared between
// goroutines. Parse errors are not cached.
type SelectorCache struct {
	mu      sync.Mutex
	size    int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	source string
	sel    *CSSSelector
}

// NewSelectorCache returns a cache holding at most size selectors.
func NewSelectorCache(size int) *SelectorCache {
	if size < 1 {
		size = 1
	}
	return &SelectorCache{
		size:    size,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the parsed form of selector, parsing it on a miss.
func (c *SelectorCache) Get(selector string) (*CSSSelector, error) {
	c.mu.Lock()
	if e, ok := c.entries[selector]; ok {
		c.order.MoveToFront(e)
		sel := e.Value.(*cacheEntry).sel
		c.mu.Unlock()
		return sel, nil
	}
	c.mu.Unlock()

	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[selector]; ok {
		c.order.MoveToFront(e)
		return e.Value.(*cacheEntry).sel, nil
	}
	c.entries[selector] = c.order.PushFront(&cacheEntry{source: selector, sel: sel})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).source)
	}
	return sel, nil
}

// Len returns the number of cached selectors.
func (c *SelectorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
