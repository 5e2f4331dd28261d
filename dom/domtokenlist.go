package dom

import (
	"fmt"
	"slices"
	"strings"
)

// validateToken checks if a token is valid per the DOMTokenList spec.
func validateToken(token string) error {
	// Per spec: if token is empty, throw SyntaxError
	if token == "" {
		return ErrSyntax("The token provided must not be empty.")
	}
	// Per spec: if token contains ASCII whitespace, throw InvalidCharacterError
	if strings.ContainsAny(token, " \t\n\r\f") {
		return ErrInvalidCharacter(fmt.Sprintf("The token provided ('%s') contains HTML space characters, which are not valid in tokens.", token))
	}
	return nil
}

// DOMTokenList represents a set of space-separated tokens.
// It is used for Element.classList. The attribute is the only storage, so a
// list always reflects the current attribute value.
type DOMTokenList struct {
	element  *Element
	attrName string
}

// newDOMTokenList creates a new DOMTokenList for the given element and attribute.
func newDOMTokenList(element *Element, attrName string) *DOMTokenList {
	return &DOMTokenList{
		element:  element,
		attrName: attrName,
	}
}

// tokens returns the current list of tokens (deduplicated, preserving order).
func (dtl *DOMTokenList) tokens() []string {
	value := dtl.element.GetAttribute(dtl.attrName)
	if value == "" {
		return nil
	}
	allTokens := strings.Fields(value)
	seen := make(map[string]bool, len(allTokens))
	result := make([]string, 0, len(allTokens))
	for _, token := range allTokens {
		if !seen[token] {
			seen[token] = true
			result = append(result, token)
		}
	}
	return result
}

// setTokens writes the tokens back to the attribute. An absent attribute is
// not created for an empty list.
func (dtl *DOMTokenList) setTokens(tokens []string) {
	if len(tokens) == 0 && !dtl.element.HasAttribute(dtl.attrName) {
		return
	}
	dtl.element.setAttributeValue(dtl.attrName, strings.Join(tokens, " "))
}

// Length returns the number of tokens.
func (dtl *DOMTokenList) Length() int {
	return len(dtl.tokens())
}

// Item returns the token at the given index, or empty string if out of bounds.
func (dtl *DOMTokenList) Item(index int) string {
	tokens := dtl.tokens()
	if index < 0 || index >= len(tokens) {
		return ""
	}
	return tokens[index]
}

// Contains returns true if the given token is in the list.
func (dtl *DOMTokenList) Contains(token string) bool {
	for _, t := range dtl.tokens() {
		if t == token {
			return true
		}
	}
	return false
}

// Add adds tokens that are not already present. Nothing is added if any
// token is invalid.
func (dtl *DOMTokenList) Add(tokens ...string) error {
	for _, token := range tokens {
		if err := validateToken(token); err != nil {
			return err
		}
	}
	current := dtl.tokens()
	for _, token := range tokens {
		if !slices.Contains(current, token) {
			current = append(current, token)
		}
	}
	dtl.setTokens(current)
	return nil
}

// Remove removes the given tokens.
func (dtl *DOMTokenList) Remove(tokens ...string) error {
	for _, token := range tokens {
		if err := validateToken(token); err != nil {
			return err
		}
	}
	current := dtl.tokens()
	kept := current[:0]
	for _, t := range current {
		if !slices.Contains(tokens, t) {
			kept = append(kept, t)
		}
	}
	dtl.setTokens(kept)
	return nil
}

// Toggle removes token if present and adds it otherwise. With force, it only
// adds (true) or only removes (false). It reports whether token is present
// afterwards.
func (dtl *DOMTokenList) Toggle(token string, force ...bool) (bool, error) {
	if err := validateToken(token); err != nil {
		return false, err
	}
	present := dtl.Contains(token)
	want := !present
	if len(force) > 0 {
		want = force[0]
	}
	switch {
	case want && !present:
		return true, dtl.Add(token)
	case !want && present:
		return false, dtl.Remove(token)
	}
	return want, nil
}

// Value returns the raw attribute value.
func (dtl *DOMTokenList) Value() string {
	return dtl.element.GetAttribute(dtl.attrName)
}

// SetValue replaces the attribute value.
func (dtl *DOMTokenList) SetValue(value string) {
	dtl.element.setAttributeValue(dtl.attrName, value)
}

// Values returns the tokens in order.
func (dtl *DOMTokenList) Values() []string {
	return dtl.tokens()
}

// String returns the attribute value.
func (dtl *DOMTokenList) String() string {
	return dtl.Value()
}
