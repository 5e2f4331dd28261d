package domutil

import (
	"sync"

	"github.com/chrisuehlinger/domkit/dom"
)

var (
	defaultMu  sync.RWMutex
	defaultDoc *dom.Document
)

// SetDefault sets the document used when a helper is passed no target.
func SetDefault(doc *dom.Document) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDoc = doc
}

// Default returns the default document, creating an empty Complete one on
// first use.
func Default() *dom.Document {
	defaultMu.RLock()
	doc := defaultDoc
	defaultMu.RUnlock()
	if doc != nil {
		return doc
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDoc == nil {
		defaultDoc = dom.NewDocument()
	}
	return defaultDoc
}
