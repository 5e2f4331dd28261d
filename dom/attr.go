package dom

import "strings"

// Attr represents an attribute of an Element.
type Attr struct {
	name  string
	value string
}

// Name returns the qualified name of the attribute.
func (a *Attr) Name() string {
	return a.name
}

// Value returns the attribute value.
func (a *Attr) Value() string {
	return a.value
}

// IsValidAttributeName checks if a string is a valid attribute name per the
// DOM spec. A string is valid if its length is at least 1 and it does not
// contain ASCII whitespace, U+0000 NULL, '/', '=', '>', '"', '\'' or '<'.
func IsValidAttributeName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, " \t\n\f\r\x00/=>\"'<")
}

// normalizeAttrName lowercases names on HTML elements in HTML documents.
func (e *Element) normalizeAttrName(name string) string {
	if e.isHTMLElementInHTMLDocument() {
		return strings.ToLower(name)
	}
	return name
}

func (e *Element) findAttr(name string) (int, *Attr) {
	name = e.normalizeAttrName(name)
	for i, a := range e.elementData.attributes {
		if a.name == name {
			return i, a
		}
	}
	return -1, nil
}

// Attributes returns a snapshot of the element's attributes in insertion order.
func (e *Element) Attributes() []Attr {
	attrs := make([]Attr, len(e.elementData.attributes))
	for i, a := range e.elementData.attributes {
		attrs[i] = *a
	}
	return attrs
}

// GetAttribute returns the value of the attribute with the given name, or ""
// when it is absent.
func (e *Element) GetAttribute(name string) string {
	if _, a := e.findAttr(name); a != nil {
		return a.value
	}
	return ""
}

// LookupAttribute returns the attribute value and whether it is present.
func (e *Element) LookupAttribute(name string) (string, bool) {
	if _, a := e.findAttr(name); a != nil {
		return a.value, true
	}
	return "", false
}

// HasAttribute returns true if the element has the given attribute.
func (e *Element) HasAttribute(name string) bool {
	_, a := e.findAttr(name)
	return a != nil
}

// SetAttribute sets the value of the attribute with the given name.
// For HTML elements in an HTML document, the name is lowercased.
func (e *Element) SetAttribute(name, value string) error {
	if !IsValidAttributeName(name) {
		return ErrInvalidCharacter("'" + name + "' is not a valid attribute name.")
	}
	e.setAttributeValue(e.normalizeAttrName(name), value)
	return nil
}

// setAttributeValue writes an attribute without validation and without
// refreshing derived state owned by the caller.
func (e *Element) setAttributeValue(name, value string) {
	if _, a := e.findAttr(name); a != nil {
		a.value = value
	} else {
		e.elementData.attributes = append(e.elementData.attributes, &Attr{name: name, value: value})
	}
	if name == "style" && e.elementData.style != nil && !e.elementData.style.syncing {
		e.elementData.style.refreshFromAttribute()
	}
}

// RemoveAttribute removes the attribute with the given name.
func (e *Element) RemoveAttribute(name string) {
	i, a := e.findAttr(name)
	if a == nil {
		return
	}
	attrs := e.elementData.attributes
	e.elementData.attributes = append(attrs[:i:i], attrs[i+1:]...)
	if a.name == "style" && e.elementData.style != nil && !e.elementData.style.syncing {
		e.elementData.style.refreshFromAttribute()
	}
}

// ToggleAttribute toggles the presence of a boolean attribute and reports
// whether it is present afterwards.
func (e *Element) ToggleAttribute(name string, force ...bool) (bool, error) {
	if !IsValidAttributeName(name) {
		return false, ErrInvalidCharacter("'" + name + "' is not a valid attribute name.")
	}
	present := e.HasAttribute(name)
	want := !present
	if len(force) > 0 {
		want = force[0]
	}
	switch {
	case want && !present:
		e.setAttributeValue(e.normalizeAttrName(name), "")
	case !want && present:
		e.RemoveAttribute(name)
	}
	return want, nil
}
