package dom

import (
	"errors"
	"testing"
)

type label string

func (l label) String() string { return "label:" + string(l) }

func TestSetPropertyReflects(t *testing.T) {
	doc := NewDocument()

	tests := []struct {
		tag      string
		name     string
		value    any
		attr     string
		wantAttr string
		present  bool
	}{
		{"div", "id", "main", "id", "main", true},
		{"div", "className", "a b", "class", "a b", true},
		{"div", "title", label("x"), "title", "label:x", true},
		{"div", "hidden", true, "hidden", "", true},
		{"div", "tabIndex", 3, "tabindex", "3", true},
		{"div", "tabIndex", float64(-1), "tabindex", "-1", true},
		{"div", "tabIndex", " 7 ", "tabindex", "7", true},
		{"div", "draggable", false, "draggable", "false", true},
		{"a", "href", "/docs", "href", "/docs", true},
		{"button", "disabled", true, "disabled", "", true},
		{"input", "readOnly", true, "readonly", "", true},
		{"input", "maxLength", int64(12), "maxlength", "12", true},
		{"label", "htmlFor", "email", "for", "email", true},
		{"td", "colSpan", 2, "colspan", "2", true},
		{"img", "alt", 42, "alt", "42", true},
	}
	for _, tt := range tests {
		t.Run(tt.tag+"."+tt.name, func(t *testing.T) {
			el := doc.MustCreateElement(tt.tag)
			if !el.HasProperty(tt.name) {
				t.Fatalf("Expected <%s> to have %s", tt.tag, tt.name)
			}
			if err := el.SetProperty(tt.name, tt.value); err != nil {
				t.Fatalf("SetProperty failed: %v", err)
			}
			got, ok := el.LookupAttribute(tt.attr)
			if ok != tt.present || got != tt.wantAttr {
				t.Errorf("attribute %s = %q (present %v), want %q", tt.attr, got, ok, tt.wantAttr)
			}
		})
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	el := NewDocument().MustCreateElement("button")
	_ = el.SetProperty("disabled", true)
	_ = el.SetProperty("tabIndex", 4)
	_ = el.SetProperty("textContent", "Go")

	if v, _ := el.Property("disabled"); v != true {
		t.Errorf("disabled = %v", v)
	}
	if v, _ := el.Property("tabIndex"); v != 4 {
		t.Errorf("tabIndex = %v", v)
	}
	if v, _ := el.Property("textContent"); v != "Go" {
		t.Errorf("textContent = %v", v)
	}
	if v, _ := el.Property("tagName"); v != "BUTTON" {
		t.Errorf("tagName = %v", v)
	}

	_ = el.SetProperty("disabled", false)
	if el.HasAttribute("disabled") {
		t.Error("Setting a boolean property to false should remove the attribute")
	}
	if _, ok := el.Property("nonsense"); ok {
		t.Error("Unknown properties should not be found")
	}
}

func TestSetPropertyErrors(t *testing.T) {
	doc := NewDocument()

	tests := []struct {
		tag   string
		name  string
		value any
		want  error
	}{
		{"button", "disabled", "yes", ErrTypeError},
		{"div", "tabIndex", 1.5, ErrTypeError},
		{"div", "tabIndex", "abc", ErrTypeError},
		{"div", "id", []string{"x"}, ErrTypeError},
		{"div", "tagName", "SPAN", ErrTypeError},
		{"div", "dataset", map[string]string{}, ErrTypeError},
		{"div", "onclick", "alert(1)", ErrTypeError},
		{"div", "href", "/x", ErrNotFoundError},
		{"div", "aria-label", "x", ErrNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.tag+"."+tt.name, func(t *testing.T) {
			el := doc.MustCreateElement(tt.tag)
			if err := el.SetProperty(tt.name, tt.value); !errors.Is(err, tt.want) {
				t.Errorf("SetProperty(%s, %v) = %v, want %s", tt.name, tt.value, err, tt.want.(*DOMError).Name)
			}
		})
	}
}

func TestInputState(t *testing.T) {
	el := NewDocument().MustCreateElement("input")
	_ = el.SetAttribute("value", "initial")
	input := InputElement{el}

	if input.Value() != "initial" {
		t.Errorf("Expected value to default to the attribute, got %q", input.Value())
	}
	input.SetValue("typed")
	if input.Value() != "typed" || el.GetAttribute("value") != "initial" {
		t.Error("Setting value must not touch the attribute")
	}
	if input.Type() != "text" {
		t.Errorf("Expected default type text, got %q", input.Type())
	}

	if input.Checked() {
		t.Error("Expected unchecked")
	}
	_ = el.SetProperty("checked", true)
	if !input.Checked() || el.HasAttribute("checked") {
		t.Error("checked is IDL state, not the attribute")
	}
}

func TestTextareaValueDefaultsToText(t *testing.T) {
	el := NewDocument().MustCreateElement("textarea")
	el.SetTextContent("draft")
	if v, _ := el.Property("value"); v != "draft" {
		t.Errorf("Expected value to default to the text, got %v", v)
	}
}

func TestElementViews(t *testing.T) {
	doc := NewDocument()
	b := doc.MustCreateElement("button")
	if (ButtonElement{b}).Type() != "submit" || (ButtonElement{b}).Disabled() {
		t.Error("Unexpected button defaults")
	}
	a := doc.MustCreateElement("a")
	_ = a.SetProperty("href", "/home")
	if (AnchorElement{a}).Href() != "/home" {
		t.Error("Unexpected href")
	}
	img := doc.MustCreateElement("img")
	_ = img.SetProperty("src", "logo.png")
	_ = img.SetProperty("alt", "Logo")
	if (ImageElement{img}).Src() != "logo.png" || (ImageElement{img}).Alt() != "Logo" {
		t.Error("Unexpected image attributes")
	}
}

func TestEventHandlerProperty(t *testing.T) {
	el := NewDocument().MustCreateElement("button")
	first, second := 0, 0

	if err := el.SetProperty("onclick", func(*Event) { first++ }); err != nil {
		t.Fatalf("SetProperty(onclick) failed: %v", err)
	}
	el.Click()
	if err := el.SetProperty("onclick", EventListener(func(*Event) { second++ })); err != nil {
		t.Fatalf("SetProperty(onclick) failed: %v", err)
	}
	el.Click()
	if first != 1 || second != 1 {
		t.Errorf("Expected the handler to be replaced, got %d %d", first, second)
	}
	if v, _ := el.Property("onclick"); v != true {
		t.Error("Expected the handler to be reported as set")
	}

	_ = el.SetProperty("onclick", nil)
	el.Click()
	if second != 1 || el.AsNode().ListenerCount("click") != 0 {
		t.Error("Expected nil to clear the handler")
	}
}

func TestClassListAndStyleProperties(t *testing.T) {
	el := NewDocument().MustCreateElement("div")
	_ = el.SetProperty("classList", "a b")
	_ = el.SetProperty("style", "color: red")

	if v, _ := el.Property("classList"); v.(*DOMTokenList).Length() != 2 {
		t.Errorf("Expected two classes, got %v", v)
	}
	if v, _ := el.Property("style"); v.(*CSSStyleDeclaration).GetPropertyValue("color") != "red" {
		t.Errorf("Expected color red, got %v", v)
	}
}
