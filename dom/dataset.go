package dom

import (
	"sort"
	"strings"
)

// DOMStringMap exposes an element's data-* attributes under camelCase names,
// as Element.dataset does. Like DOMTokenList it stores nothing itself.
type DOMStringMap struct {
	element *Element
}

// Get returns the value of the data attribute for name and whether it exists.
func (m *DOMStringMap) Get(name string) (string, bool) {
	return m.element.LookupAttribute(datasetAttrName(name))
}

// Set assigns a single entry. It fails with a SyntaxError when name contains
// a '-' followed by a lowercase ASCII letter, and with an InvalidCharacterError
// when the resulting attribute name is not valid.
// https://html.spec.whatwg.org/multipage/dom.html#dom-domstringmap-setitem
func (m *DOMStringMap) Set(name, value string) error {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == '-' && name[i+1] >= 'a' && name[i+1] <= 'z' {
			return ErrSyntax("'" + name + "' is not a valid property name.")
		}
	}
	attr := datasetAttrName(name)
	if !isValidXMLName(attr) {
		return ErrInvalidCharacter("'" + attr + "' is not a valid attribute name.")
	}
	m.element.setAttributeValue(attr, value)
	return nil
}

// Delete removes the entry for name.
func (m *DOMStringMap) Delete(name string) {
	m.element.RemoveAttribute(datasetAttrName(name))
}

// Keys returns the camelCase names of all entries, sorted.
func (m *DOMStringMap) Keys() []string {
	var keys []string
	for _, a := range m.element.elementData.attributes {
		if name, ok := datasetPropName(a.name); ok {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (m *DOMStringMap) Len() int {
	return len(m.Keys())
}

// Map returns a copy of all entries.
func (m *DOMStringMap) Map() map[string]string {
	out := make(map[string]string)
	for _, a := range m.element.elementData.attributes {
		if name, ok := datasetPropName(a.name); ok {
			out[name] = a.value
		}
	}
	return out
}

// datasetAttrName maps a camelCase name to its data-* attribute name:
// every ASCII uppercase letter becomes '-' plus its lowercase form.
func datasetAttrName(name string) string {
	var sb strings.Builder
	sb.WriteString("data-")
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// datasetPropName maps a data-* attribute name back to its camelCase name.
// Attributes with an uppercase letter after the prefix are not exposed.
func datasetPropName(attr string) (string, bool) {
	rest, ok := strings.CutPrefix(attr, "data-")
	if !ok {
		return "", false
	}
	var sb strings.Builder
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c >= 'A' && c <= 'Z' {
			return "", false
		}
		if c == '-' && i+1 < len(rest) && rest[i+1] >= 'a' && rest[i+1] <= 'z' {
			sb.WriteByte(rest[i+1] - ('a' - 'A'))
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String(), true
}
