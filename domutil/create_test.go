package domutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/html"
)

func TestCreateElementFromOptions(t *testing.T) {
	doc := dom.NewDocument()

	el, err := CreateElement("button", Options{
		"id":            "my-button",
		"class":         []string{"btn", "btn-primary"},
		"text":          "Click me",
		"dataset":       map[string]string{"action": "open-menu"},
		"aria-expanded": "false",
	}, doc)
	require.NoError(t, err)

	assert.Equal(t,
		`<button aria-expanded="false" class="btn btn-primary" data-action="open-menu" id="my-button">Click me</button>`,
		html.OuterHTML(el))
	assert.Same(t, doc, el.OwnerDocument())
	assert.Nil(t, el.AsNode().ParentNode(), "element must be unattached")
}

func TestCreateElementNoOptions(t *testing.T) {
	el, err := CreateElement("DIV", nil, dom.NewDocument())
	require.NoError(t, err)
	assert.Equal(t, "DIV", el.TagName())
	assert.Equal(t, "div", el.LocalName())
	assert.Empty(t, el.Attributes())
	assert.False(t, el.AsNode().HasChildNodes())
}

func TestCreateElementInvalidTag(t *testing.T) {
	for _, tag := range []string{"", "1abc", "a b", "<div>"} {
		_, err := CreateElement(tag, Options{"text": "x"}, dom.NewDocument())
		assert.ErrorIs(t, err, dom.ErrInvalidCharacterError, "tag %q", tag)
	}
}

func TestCreateElementClass(t *testing.T) {
	tests := []struct {
		name  string
		class any
		want  []string
	}{
		{"single", "btn", []string{"btn"}},
		{"list", []string{"a", "b"}, []string{"a", "b"}},
		{"duplicates collapse", []string{"a", "a", "b"}, []string{"a", "b"}},
		{"empty list", []string{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := CreateElement("span", Options{"class": tt.class}, dom.NewDocument())
			require.NoError(t, err)
			assert.Equal(t, tt.want, el.ClassList().Values())
		})
	}
}

func TestCreateElementClassErrors(t *testing.T) {
	_, err := CreateElement("span", Options{"class": ""}, dom.NewDocument())
	assert.ErrorIs(t, err, dom.ErrSyntaxError)

	_, err = CreateElement("span", Options{"class": "a b"}, dom.NewDocument())
	assert.ErrorIs(t, err, dom.ErrInvalidCharacterError)

	_, err = CreateElement("span", Options{"class": 42}, dom.NewDocument())
	assert.ErrorIs(t, err, dom.ErrTypeError)
}

func TestCreateElementErrorsAreUnwrapped(t *testing.T) {
	_, err := CreateElement("span", Options{"class": ""}, dom.NewDocument())
	var domErr *dom.DOMError
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, dom.SyntaxError, domErr.Name)
	assert.Same(t, domErr, err, "DOM errors surface as returned by the DOM")
}

func TestCreateElementSkipsNil(t *testing.T) {
	el, err := CreateElement("div", Options{"title": nil, "text": nil, "class": nil}, dom.NewDocument())
	require.NoError(t, err)
	assert.Empty(t, el.Attributes())
	assert.Empty(t, el.TextContent())
}

func TestCreateElementProperties(t *testing.T) {
	doc := dom.NewDocument()

	btn, err := CreateElement("button", Options{"disabled": true, "type": "submit", "tabIndex": 3}, doc)
	require.NoError(t, err)
	assert.True(t, btn.HasAttribute("disabled"))
	assert.Equal(t, "submit", btn.GetAttribute("type"))
	assert.Equal(t, "3", btn.GetAttribute("tabindex"))

	hidden, err := CreateElement("div", Options{"hidden": false}, doc)
	require.NoError(t, err)
	assert.False(t, hidden.HasAttribute("hidden"))

	input, err := CreateElement("input", Options{"value": "typed", "checked": true}, doc)
	require.NoError(t, err)
	view := As[dom.InputElement](input)
	assert.Equal(t, "typed", view.Value())
	assert.True(t, view.Checked())
	assert.False(t, input.HasAttribute("value"), "value is a property, not the attribute")
}

func TestCreateElementPropertyTypeError(t *testing.T) {
	doc := dom.NewDocument()

	_, err := CreateElement("button", Options{"disabled": "yes"}, doc)
	assert.ErrorIs(t, err, dom.ErrTypeError)

	_, err = CreateElement("div", Options{"tagName": "P"}, doc)
	assert.ErrorIs(t, err, dom.ErrTypeError, "read-only property")

	_, err = CreateElement("div", Options{"dataset": "x"}, doc)
	assert.ErrorIs(t, err, dom.ErrTypeError, "dataset must be a map")
}

func TestCreateElementAttributeFallback(t *testing.T) {
	el, err := CreateElement("div", Options{
		"aria-hidden": true,
		"data-count":  5,
		"role":        "dialog",
	}, dom.NewDocument())
	require.NoError(t, err)
	assert.Equal(t, "true", el.GetAttribute("aria-hidden"))
	assert.Equal(t, "5", el.GetAttribute("data-count"))
	assert.Equal(t, "dialog", el.GetAttribute("role"))

	_, err = CreateElement("div", Options{"a b": "x"}, dom.NewDocument())
	assert.ErrorIs(t, err, dom.ErrInvalidCharacterError)
}

func TestCreateElementDataset(t *testing.T) {
	el, err := CreateElement("div", Options{
		"dataset": map[string]any{"userId": "42", "active": true},
	}, dom.NewDocument())
	require.NoError(t, err)

	assert.Equal(t, "42", el.GetAttribute("data-user-id"))
	assert.Equal(t, "true", el.GetAttribute("data-active"))
	v, ok := el.Dataset().Get("userId")
	assert.True(t, ok)
	assert.Equal(t, "42", v)

	_, err = CreateElement("div", Options{"dataset": map[string]string{"foo-bar": "x"}}, dom.NewDocument())
	assert.ErrorIs(t, err, dom.ErrSyntaxError)
}

func TestCreateElementStyle(t *testing.T) {
	el, err := CreateElement("div", Options{
		"style": map[string]string{"color": "red", "backgroundColor": "blue"},
	}, dom.NewDocument())
	require.NoError(t, err)
	assert.Equal(t, "blue", el.Style().GetPropertyValue("background-color"))
	assert.Equal(t, "background-color: blue; color: red;", el.GetAttribute("style"))

	el, err = CreateElement("div", Options{"style": "margin: 0"}, dom.NewDocument())
	require.NoError(t, err)
	assert.Equal(t, "0", el.Style().GetPropertyValue("margin"))
}

func TestCreateElementEventHandler(t *testing.T) {
	clicks := 0
	el, err := CreateElement("button", Options{
		"onclick": dom.EventListener(func(*dom.Event) { clicks++ }),
	}, dom.NewDocument())
	require.NoError(t, err)

	el.Click()
	el.Click()
	assert.Equal(t, 2, clicks)
}

func TestCreateElementTargetDocument(t *testing.T) {
	xml := dom.NewXMLDocument()
	el, err := CreateElement("myTag", Options{"class": "x"}, xml)
	require.NoError(t, err)
	assert.Equal(t, "myTag", el.TagName())
	assert.Same(t, xml, el.OwnerDocument())
	assert.Equal(t, "x", el.GetAttribute("class"))
}

func TestCreateElementNilTargetUsesDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	doc := dom.NewDocument()
	SetDefault(doc)

	el, err := CreateElement("p", Options{"text": "hi"}, nil)
	require.NoError(t, err)
	assert.Same(t, doc, el.OwnerDocument())
}

func TestCreateElementOptionOrder(t *testing.T) {
	// "class" sorts before "className", so the property replaces the list.
	el, err := CreateElement("div", Options{"className": "b", "class": "a"}, dom.NewDocument())
	require.NoError(t, err)
	assert.Equal(t, "b", el.ClassName())
}
