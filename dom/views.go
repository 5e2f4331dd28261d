package dom

// Typed element views. A view is an *Element under a more specific type, the
// way HTMLInputElement narrows Element; converting never checks the tag.

// InputElement is an <input>.
type InputElement struct{ *Element }

// Value returns the current value.
func (v InputElement) Value() string {
	s, _ := v.Property("value")
	str, _ := s.(string)
	return str
}

// SetValue sets the current value without touching the value attribute.
func (v InputElement) SetValue(value string) {
	v.setState("value", value)
}

// Checked returns the checkedness.
func (v InputElement) Checked() bool {
	b, _ := v.Property("checked")
	checked, _ := b.(bool)
	return checked
}

// SetChecked sets the checkedness.
func (v InputElement) SetChecked(checked bool) {
	v.setState("checked", checked)
}

// Type returns the type attribute, defaulting to "text".
func (v InputElement) Type() string {
	if t := v.GetAttribute("type"); t != "" {
		return t
	}
	return "text"
}

// ButtonElement is a <button>.
type ButtonElement struct{ *Element }

// Disabled reports whether the disabled attribute is present.
func (v ButtonElement) Disabled() bool {
	return v.HasAttribute("disabled")
}

// Type returns the type attribute, defaulting to "submit".
func (v ButtonElement) Type() string {
	if t := v.GetAttribute("type"); t != "" {
		return t
	}
	return "submit"
}

// AnchorElement is an <a>.
type AnchorElement struct{ *Element }

// Href returns the href attribute.
func (v AnchorElement) Href() string {
	return v.GetAttribute("href")
}

// ImageElement is an <img>.
type ImageElement struct{ *Element }

// Src returns the src attribute.
func (v ImageElement) Src() string {
	return v.GetAttribute("src")
}

// Alt returns the alt attribute.
func (v ImageElement) Alt() string {
	return v.GetAttribute("alt")
}
