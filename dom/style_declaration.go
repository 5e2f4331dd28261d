package dom

import (
	"strings"
)

// CSSStyleDeclaration represents an element's inline style.
// It provides methods for getting and setting individual CSS properties and
// keeps the element's style attribute in sync.
type CSSStyleDeclaration struct {
	// The element this style declaration belongs to
	element *Element

	// Parsed declarations (property name -> declaration)
	declarations map[string]*styleProperty

	// Order in which properties were set (for cssText serialization)
	propertyOrder []string

	// set while writing the style attribute so the write is not re-parsed
	syncing bool
}

// styleProperty holds a single CSS property's value and priority.
type styleProperty struct {
	value    string
	priority string // "important" or ""
}

// NewCSSStyleDeclaration creates a new CSSStyleDeclaration for an element.
func NewCSSStyleDeclaration(element *Element) *CSSStyleDeclaration {
	sd := &CSSStyleDeclaration{
		element:      element,
		declarations: make(map[string]*styleProperty),
	}
	if element != nil {
		if style, ok := element.LookupAttribute("style"); ok {
			sd.parse(style)
		}
	}
	return sd
}

// CSSText returns the textual representation of the declaration block.
func (sd *CSSStyleDeclaration) CSSText() string {
	if len(sd.declarations) == 0 {
		return ""
	}

	parts := make([]string, 0, len(sd.propertyOrder))
	for _, prop := range sd.propertyOrder {
		sp := sd.declarations[prop]
		part := prop + ": " + sp.value
		if sp.priority == "important" {
			part += " !important"
		}
		parts = append(parts, part+";")
	}
	return strings.Join(parts, " ")
}

// SetCSSText parses and sets all properties from a CSS text string.
func (sd *CSSStyleDeclaration) SetCSSText(cssText string) {
	sd.reset()
	sd.parse(cssText)
	sd.syncToAttribute()
}

// Length returns the number of properties set.
func (sd *CSSStyleDeclaration) Length() int {
	return len(sd.declarations)
}

// Item returns the property name at the given index.
func (sd *CSSStyleDeclaration) Item(index int) string {
	if index < 0 || index >= len(sd.propertyOrder) {
		return ""
	}
	return sd.propertyOrder[index]
}

// GetPropertyValue returns the value of a CSS property.
func (sd *CSSStyleDeclaration) GetPropertyValue(property string) string {
	if sp, ok := sd.declarations[normalizeCSSPropertyName(property)]; ok {
		return sp.value
	}
	return ""
}

// GetPropertyPriority returns the priority of a CSS property ("important" or "").
func (sd *CSSStyleDeclaration) GetPropertyPriority(property string) string {
	if sp, ok := sd.declarations[normalizeCSSPropertyName(property)]; ok {
		return sp.priority
	}
	return ""
}

// SetProperty sets a CSS property with an optional priority. The name may be
// kebab-case ("background-color"), camelCase ("backgroundColor") or a custom
// property ("--accent"). An empty value removes the property.
func (sd *CSSStyleDeclaration) SetProperty(property, value string, priority ...string) {
	property = normalizeCSSPropertyName(property)
	if property == "" {
		return
	}
	if value == "" {
		sd.RemoveProperty(property)
		return
	}

	pri := ""
	if len(priority) > 0 && strings.EqualFold(priority[0], "important") {
		pri = "important"
	}
	sd.set(property, strings.TrimSpace(value), pri)
	sd.syncToAttribute()
}

// RemoveProperty removes a CSS property and returns its old value.
func (sd *CSSStyleDeclaration) RemoveProperty(property string) string {
	property = normalizeCSSPropertyName(property)
	sp, ok := sd.declarations[property]
	if !ok {
		return ""
	}
	delete(sd.declarations, property)
	for i, p := range sd.propertyOrder {
		if p == property {
			sd.propertyOrder = append(sd.propertyOrder[:i], sd.propertyOrder[i+1:]...)
			break
		}
	}
	sd.syncToAttribute()
	return sp.value
}

// PropertyNames returns all property names in declaration order.
func (sd *CSSStyleDeclaration) PropertyNames() []string {
	result := make([]string, len(sd.propertyOrder))
	copy(result, sd.propertyOrder)
	return result
}

func (sd *CSSStyleDeclaration) set(property, value, priority string) {
	if _, exists := sd.declarations[property]; !exists {
		sd.propertyOrder = append(sd.propertyOrder, property)
	}
	sd.declarations[property] = &styleProperty{value: value, priority: priority}
}

func (sd *CSSStyleDeclaration) reset() {
	sd.declarations = make(map[string]*styleProperty)
	sd.propertyOrder = nil
}

// parse reads "prop: value [!important]; ..." declarations.
func (sd *CSSStyleDeclaration) parse(cssText string) {
	for _, part := range strings.Split(cssText, ";") {
		property, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		property = normalizeCSSPropertyName(strings.TrimSpace(property))
		value = strings.TrimSpace(value)
		if property == "" || value == "" {
			continue
		}

		priority := ""
		if idx := strings.LastIndex(value, "!"); idx >= 0 {
			if strings.EqualFold(strings.TrimSpace(value[idx+1:]), "important") {
				priority = "important"
				value = strings.TrimSpace(value[:idx])
			}
		}
		sd.set(property, value, priority)
	}
}

// syncToAttribute writes the declarations back to the element's style attribute.
func (sd *CSSStyleDeclaration) syncToAttribute() {
	if sd.element == nil {
		return
	}
	sd.syncing = true
	defer func() { sd.syncing = false }()

	cssText := sd.CSSText()
	if cssText == "" {
		sd.element.RemoveAttribute("style")
		return
	}
	sd.element.setAttributeValue("style", cssText)
}

// refreshFromAttribute reloads declarations after the style attribute was
// changed directly.
func (sd *CSSStyleDeclaration) refreshFromAttribute() {
	sd.reset()
	if style, ok := sd.element.LookupAttribute("style"); ok {
		sd.parse(style)
	}
}

// normalizeCSSPropertyName converts camelCase to kebab-case and lowercases.
// Examples: "backgroundColor" -> "background-color", "WebkitTransform" -> "-webkit-transform".
// Custom properties ("--name") are case-sensitive and returned unchanged.
func normalizeCSSPropertyName(name string) string {
	if name == "" || strings.HasPrefix(name, "--") {
		return name
	}

	// If already kebab-case, just lowercase
	if strings.Contains(name, "-") {
		return strings.ToLower(name)
	}

	var result strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			result.WriteByte('-')
			result.WriteByte(byte(r - 'A' + 'a'))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
