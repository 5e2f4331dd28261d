package dom

import (
	"fmt"
	"strconv"
	"strings"
)

// propertyKind describes how a reflected IDL property maps onto the element.
type propertyKind int

const (
	propString   propertyKind = iota // reflects a content attribute verbatim
	propBool                         // presence of a boolean content attribute
	propInt                          // integer-valued content attribute
	propEnumBool                     // "true"/"false" valued attribute such as draggable
	propText                         // textContent
	propState                        // IDL-only state, defaults to the attribute
	propBoolState                    // IDL-only boolean state, defaults to attribute presence
	propHandler                      // on* event handler
	propTokens                       // classList: forwards to the attribute value
	propStyle                        // style: forwards to cssText
	propReadOnly
)

type property struct {
	kind propertyKind
	attr string
}

// globalProperties are defined on every HTML element.
var globalProperties = map[string]property{
	"id":              {propString, "id"},
	"className":       {propString, "class"},
	"classList":       {propTokens, "class"},
	"style":           {propStyle, "style"},
	"title":           {propString, "title"},
	"lang":            {propString, "lang"},
	"dir":             {propString, "dir"},
	"slot":            {propString, "slot"},
	"accessKey":       {propString, "accesskey"},
	"contentEditable": {propString, "contenteditable"},
	"enterKeyHint":    {propString, "enterkeyhint"},
	"inputMode":       {propString, "inputmode"},
	"nonce":           {propString, "nonce"},
	"role":            {propString, "role"},
	"hidden":          {propBool, "hidden"},
	"inert":           {propBool, "inert"},
	"autofocus":       {propBool, "autofocus"},
	"tabIndex":        {propInt, "tabindex"},
	"draggable":       {propEnumBool, "draggable"},
	"spellcheck":      {propEnumBool, "spellcheck"},
	"textContent":     {propText, ""},
	"innerText":       {propText, ""},
	"tagName":         {propReadOnly, ""},
	"localName":       {propReadOnly, ""},
	"nodeName":        {propReadOnly, ""},
	"nodeType":        {propReadOnly, ""},
	"namespaceURI":    {propReadOnly, ""},
	"dataset":         {propReadOnly, ""},
	"children":        {propReadOnly, ""},
	"parentElement":   {propReadOnly, ""},
}

// elementProperties are the reflected properties specific to an element kind,
// keyed by local name.
var elementProperties = map[string]map[string]property{
	"a": {
		"href":     {propString, "href"},
		"target":   {propString, "target"},
		"rel":      {propString, "rel"},
		"download": {propString, "download"},
		"hreflang": {propString, "hreflang"},
		"type":     {propString, "type"},
	},
	"button": {
		"type":       {propString, "type"},
		"name":       {propString, "name"},
		"value":      {propString, "value"},
		"disabled":   {propBool, "disabled"},
		"formAction": {propString, "formaction"},
	},
	"input": {
		"type":           {propString, "type"},
		"name":           {propString, "name"},
		"placeholder":    {propString, "placeholder"},
		"autocomplete":   {propString, "autocomplete"},
		"pattern":        {propString, "pattern"},
		"min":            {propString, "min"},
		"max":            {propString, "max"},
		"step":           {propString, "step"},
		"accept":         {propString, "accept"},
		"disabled":       {propBool, "disabled"},
		"required":       {propBool, "required"},
		"readOnly":       {propBool, "readonly"},
		"multiple":       {propBool, "multiple"},
		"maxLength":      {propInt, "maxlength"},
		"minLength":      {propInt, "minlength"},
		"size":           {propInt, "size"},
		"defaultValue":   {propString, "value"},
		"defaultChecked": {propBool, "checked"},
		"value":          {propState, "value"},
		"checked":        {propBoolState, "checked"},
	},
	"textarea": {
		"name":         {propString, "name"},
		"placeholder":  {propString, "placeholder"},
		"disabled":     {propBool, "disabled"},
		"required":     {propBool, "required"},
		"readOnly":     {propBool, "readonly"},
		"rows":         {propInt, "rows"},
		"cols":         {propInt, "cols"},
		"maxLength":    {propInt, "maxlength"},
		"defaultValue": {propText, ""},
		"value":        {propState, ""},
	},
	"select": {
		"name":     {propString, "name"},
		"disabled": {propBool, "disabled"},
		"required": {propBool, "required"},
		"multiple": {propBool, "multiple"},
		"size":     {propInt, "size"},
	},
	"option": {
		"value":           {propString, "value"},
		"label":           {propString, "label"},
		"disabled":        {propBool, "disabled"},
		"defaultSelected": {propBool, "selected"},
		"selected":        {propBoolState, "selected"},
	},
	"img": {
		"src":      {propString, "src"},
		"alt":      {propString, "alt"},
		"srcset":   {propString, "srcset"},
		"sizes":    {propString, "sizes"},
		"loading":  {propString, "loading"},
		"decoding": {propString, "decoding"},
		"width":    {propInt, "width"},
		"height":   {propInt, "height"},
	},
	"form": {
		"action":     {propString, "action"},
		"method":     {propString, "method"},
		"enctype":    {propString, "enctype"},
		"target":     {propString, "target"},
		"name":       {propString, "name"},
		"noValidate": {propBool, "novalidate"},
	},
	"label": {
		"htmlFor": {propString, "for"},
	},
	"script": {
		"src":   {propString, "src"},
		"type":  {propString, "type"},
		"async": {propBool, "async"},
		"defer": {propBool, "defer"},
		"text":  {propText, ""},
	},
	"link": {
		"href":  {propString, "href"},
		"rel":   {propString, "rel"},
		"type":  {propString, "type"},
		"media": {propString, "media"},
	},
	"iframe": {
		"src":    {propString, "src"},
		"name":   {propString, "name"},
		"allow":  {propString, "allow"},
		"width":  {propString, "width"},
		"height": {propString, "height"},
	},
	"video": {
		"src":      {propString, "src"},
		"poster":   {propString, "poster"},
		"controls": {propBool, "controls"},
		"autoplay": {propBool, "autoplay"},
		"loop":     {propBool, "loop"},
		"muted":    {propBoolState, "muted"},
	},
	"audio": {
		"src":      {propString, "src"},
		"controls": {propBool, "controls"},
		"autoplay": {propBool, "autoplay"},
		"loop":     {propBool, "loop"},
		"muted":    {propBoolState, "muted"},
	},
	"td": {
		"colSpan": {propInt, "colspan"},
		"rowSpan": {propInt, "rowspan"},
	},
	"th": {
		"colSpan": {propInt, "colspan"},
		"rowSpan": {propInt, "rowspan"},
		"scope":   {propString, "scope"},
	},
	"ol": {
		"start":    {propInt, "start"},
		"reversed": {propBool, "reversed"},
		"type":     {propString, "type"},
	},
	"details": {
		"open": {propBool, "open"},
	},
	"dialog": {
		"open": {propBool, "open"},
	},
	"meta": {
		"name":    {propString, "name"},
		"content": {propString, "content"},
	},
}

// eventHandlerNames are the on* handler properties every HTML element has.
var eventHandlerNames = map[string]bool{
	"onabort": true, "onblur": true, "oncancel": true, "onchange": true,
	"onclick": true, "onclose": true, "oncontextmenu": true, "ondblclick": true,
	"ondrag": true, "ondragend": true, "ondragenter": true, "ondragleave": true,
	"ondragover": true, "ondragstart": true, "ondrop": true, "onerror": true,
	"onfocus": true, "onfocusin": true, "onfocusout": true, "oninput": true,
	"oninvalid": true, "onkeydown": true, "onkeypress": true, "onkeyup": true,
	"onload": true, "onmousedown": true, "onmouseenter": true, "onmouseleave": true,
	"onmousemove": true, "onmouseout": true, "onmouseover": true, "onmouseup": true,
	"onpointerdown": true, "onpointerup": true, "onpointermove": true,
	"onreset": true, "onscroll": true, "onselect": true, "onsubmit": true,
	"ontoggle": true, "onwheel": true,
}

func (e *Element) lookupProperty(name string) (property, bool) {
	if e.elementData.namespaceURI != HTMLNamespace {
		return property{}, false
	}
	if p, ok := elementProperties[e.elementData.localName][name]; ok {
		return p, true
	}
	if p, ok := globalProperties[name]; ok {
		return p, true
	}
	if eventHandlerNames[name] {
		return property{kind: propHandler}, true
	}
	return property{}, false
}

// HasProperty reports whether name is a property of this element kind, the
// equivalent of `name in element` for the properties modeled here.
func (e *Element) HasProperty(name string) bool {
	_, ok := e.lookupProperty(name)
	return ok
}

// SetProperty assigns value to the property name. Strings, bools and ints
// are accepted where the property expects them; on* handlers take an
// EventListener, a func(*Event) or nil. A value of the wrong type fails with
// a TypeError, as does a read-only property. Unknown names fail with a
// NotFoundError.
func (e *Element) SetProperty(name string, value any) error {
	p, ok := e.lookupProperty(name)
	if !ok {
		return ErrNotFound("'" + name + "' is not a property of <" + e.LocalName() + ">.")
	}

	switch p.kind {
	case propString:
		s, err := propertyString(name, value)
		if err != nil {
			return err
		}
		e.setAttributeValue(p.attr, s)
	case propBool:
		b, err := propertyBool(name, value)
		if err != nil {
			return err
		}
		_, err = e.ToggleAttribute(p.attr, b)
		return err
	case propEnumBool:
		b, err := propertyBool(name, value)
		if err != nil {
			return err
		}
		e.setAttributeValue(p.attr, strconv.FormatBool(b))
	case propInt:
		n, err := propertyInt(name, value)
		if err != nil {
			return err
		}
		e.setAttributeValue(p.attr, strconv.Itoa(n))
	case propText:
		s, err := propertyString(name, value)
		if err != nil {
			return err
		}
		e.SetTextContent(s)
	case propState:
		s, err := propertyString(name, value)
		if err != nil {
			return err
		}
		e.setState(name, s)
	case propBoolState:
		b, err := propertyBool(name, value)
		if err != nil {
			return err
		}
		e.setState(name, b)
	case propTokens:
		s, err := propertyString(name, value)
		if err != nil {
			return err
		}
		e.ClassList().SetValue(s)
	case propStyle:
		s, err := propertyString(name, value)
		if err != nil {
			return err
		}
		e.Style().SetCSSText(s)
	case propHandler:
		return e.setEventHandler(strings.TrimPrefix(name, "on"), value)
	case propReadOnly:
		return ErrType("Cannot assign to read only property '" + name + "'.")
	}
	return nil
}

// Property returns the current value of the property name.
func (e *Element) Property(name string) (any, bool) {
	p, ok := e.lookupProperty(name)
	if !ok {
		return nil, false
	}
	switch p.kind {
	case propString:
		return e.GetAttribute(p.attr), true
	case propBool:
		return e.HasAttribute(p.attr), true
	case propEnumBool:
		return e.GetAttribute(p.attr) == "true", true
	case propInt:
		n, _ := strconv.Atoi(strings.TrimSpace(e.GetAttribute(p.attr)))
		return n, true
	case propText:
		return e.TextContent(), true
	case propState:
		if v, ok := e.elementData.state[name]; ok {
			return v, true
		}
		if p.attr == "" {
			return e.TextContent(), true
		}
		return e.GetAttribute(p.attr), true
	case propBoolState:
		if v, ok := e.elementData.state[name]; ok {
			return v, true
		}
		return e.HasAttribute(p.attr), true
	case propTokens:
		return e.ClassList(), true
	case propStyle:
		return e.Style(), true
	case propHandler:
		_, set := e.elementData.handlers[strings.TrimPrefix(name, "on")]
		return set, true
	case propReadOnly:
		switch name {
		case "tagName", "nodeName":
			return e.TagName(), true
		case "localName":
			return e.LocalName(), true
		case "nodeType":
			return int(ElementNode), true
		case "namespaceURI":
			return e.NamespaceURI(), true
		case "dataset":
			return e.Dataset(), true
		case "children":
			return e.Children(), true
		case "parentElement":
			return e.ParentElement(), true
		}
	}
	return nil, true
}

func (e *Element) setState(name string, value any) {
	if e.elementData.state == nil {
		e.elementData.state = make(map[string]any)
	}
	e.elementData.state[name] = value
}

// setEventHandler installs fn as the single handler for typ, replacing the
// previous one. nil clears it.
func (e *Element) setEventHandler(typ string, value any) error {
	var fn EventListener
	switch v := value.(type) {
	case nil:
	case EventListener:
		fn = v
	case func(*Event):
		fn = v
	default:
		return ErrType(fmt.Sprintf("on%s handler must be a func(*dom.Event), got %T.", typ, value))
	}

	if id, ok := e.elementData.handlers[typ]; ok {
		e.RemoveEventListener(typ, id)
		delete(e.elementData.handlers, typ)
	}
	if fn == nil {
		return nil
	}
	if e.elementData.handlers == nil {
		e.elementData.handlers = make(map[string]ListenerID)
	}
	e.elementData.handlers[typ] = e.AddEventListener(typ, fn, ListenerOptions{})
	return nil
}

func propertyString(name string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	}
	return "", ErrType(fmt.Sprintf("property '%s' expects a string, got %T.", name, value))
}

func propertyBool(name string, value any) (bool, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return false, ErrType(fmt.Sprintf("property '%s' expects a bool, got %T.", name, value))
}

func propertyInt(name string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, nil
		}
	}
	return 0, ErrType(fmt.Sprintf("property '%s' expects an integer, got %T.", name, value))
}
