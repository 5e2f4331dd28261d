package domutil

import (
	"fmt"
	"maps"
	"slices"

	"github.com/chrisuehlinger/domkit/dom"
)

// Options is the option bag CreateElement applies to a new element.
//
// Reserved keys:
//   - "class": a string or []string, each added to the class list
//   - "text": the element's text content
//   - "dataset": a map merged entry by entry into the element's dataset
//   - "style": a map merged entry by entry into the inline style
//
// Any other key sets the reflected property of that name when the element
// kind has one (Options{"disabled": true} on a button) and the attribute of
// that name otherwise. nil values are skipped.
type Options map[string]any

// CreateElement creates an unattached element named tag in target and
// applies opts to it. A nil target means Default(). Keys are applied in
// sorted order.
//
// DOM failures are returned unchanged: an invalid tag or attribute name is an
// InvalidCharacterError, a bad class token a SyntaxError or
// InvalidCharacterError, and a property value of the wrong type a TypeError.
func CreateElement(tag string, opts Options, target *dom.Document) (*dom.Element, error) {
	if target == nil {
		target = Default()
	}
	el, err := target.CreateElement(tag)
	if err != nil {
		return nil, err
	}
	for _, key := range slices.Sorted(maps.Keys(opts)) {
		if err := applyOption(el, key, opts[key]); err != nil {
			return nil, err
		}
	}
	return el, nil
}

func applyOption(el *dom.Element, key string, value any) error {
	if value == nil {
		return nil
	}

	switch key {
	case "class":
		switch v := value.(type) {
		case string:
			return el.ClassList().Add(v)
		case []string:
			return el.ClassList().Add(v...)
		}
		return dom.ErrType(fmt.Sprintf("class must be a string or []string, got %T.", value))

	case "text":
		el.SetTextContent(toString(value))
		return nil

	case "dataset":
		if entries, ok := toStringMap(value); ok {
			for _, k := range slices.Sorted(maps.Keys(entries)) {
				if err := el.Dataset().Set(k, entries[k]); err != nil {
					return err
				}
			}
			return nil
		}

	case "style":
		if entries, ok := toStringMap(value); ok {
			style := el.Style()
			for _, k := range slices.Sorted(maps.Keys(entries)) {
				style.SetProperty(k, entries[k])
			}
			return nil
		}
	}

	if el.HasProperty(key) {
		return el.SetProperty(key, value)
	}
	return el.SetAttribute(key, toString(value))
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// toStringMap accepts the map shapes a caller is likely to build for nested
// options.
func toStringMap(value any) (map[string]string, bool) {
	switch v := value.(type) {
	case map[string]string:
		return v, true
	case map[string]any:
		m := make(map[string]string, len(v))
		for k, val := range v {
			if val != nil {
				m[k] = toString(val)
			}
		}
		return m, true
	}
	return nil, false
}
