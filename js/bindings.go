package js

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/domutil"
	"github.com/chrisuehlinger/domkit/html"
)

const domExceptionSource = `
class DOMException extends Error {
	constructor(message, name) {
		super(message === undefined ? "" : String(message));
		this.name = name === undefined ? "Error" : String(name);
	}
}
DOMException;
`

// binder maps dom nodes to script objects. Each node gets one object, so
// qs("#a") === qs("#a") holds in scripts.
type binder struct {
	r  *Runtime
	vm *goja.Runtime

	domException *goja.Object
	objects      map[*dom.Node]*goja.Object
	nodes        map[*goja.Object]*dom.Node
	listeners    map[listenerKey]dom.ListenerID
}

type listenerKey struct {
	node    *dom.Node
	typ     string
	fn      *goja.Object
	capture bool
}

func newBinder(r *Runtime) *binder {
	return &binder{
		r:         r,
		vm:        r.vm,
		objects:   make(map[*dom.Node]*goja.Object),
		nodes:     make(map[*goja.Object]*dom.Node),
		listeners: make(map[listenerKey]dom.ListenerID),
	}
}

func (b *binder) setupGlobals() {
	ctor, err := b.vm.RunString(domExceptionSource)
	if err != nil {
		panic(fmt.Sprintf("js: DOMException setup: %v", err))
	}
	b.domException = ctor.ToObject(b.vm)
	b.vm.Set("DOMException", b.domException)

	b.vm.Set("document", b.wrap(b.r.doc.AsNode()))

	b.vm.Set("qs", func(call goja.FunctionCall) goja.Value {
		el, err := domutil.Qs(call.Argument(0).String(), b.root(call.Argument(1)))
		if err != nil {
			b.throw(err)
		}
		return b.elementValue(el)
	})
	b.vm.Set("qsa", func(call goja.FunctionCall) goja.Value {
		els, err := domutil.Qsa(call.Argument(0).String(), b.root(call.Argument(1)))
		if err != nil {
			b.throw(err)
		}
		return b.elements(els)
	})
	b.vm.Set("createElement", func(call goja.FunctionCall) goja.Value {
		el, err := domutil.CreateElement(call.Argument(0).String(), b.exportOptions(call.Argument(1)), b.r.doc)
		if err != nil {
			b.throw(err)
		}
		return b.wrap(el.AsNode())
	})
}

// root resolves the optional root argument of qs and qsa. Anything that is
// not a bound node means the runtime's document.
func (b *binder) root(v goja.Value) domutil.Root {
	if node := b.unwrap(v); node != nil {
		return node
	}
	return b.r.doc
}

func (b *binder) unwrap(v goja.Value) *dom.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return b.nodes[obj]
}

// wrap returns the script object for node, creating it on first use.
func (b *binder) wrap(node *dom.Node) *goja.Object {
	if obj, ok := b.objects[node]; ok {
		return obj
	}
	var obj *goja.Object
	switch node.NodeType() {
	case dom.ElementNode:
		obj = b.vm.NewDynamicObject(&elementObject{b: b, el: (*dom.Element)(node), methods: b.elementMethods((*dom.Element)(node))})
	case dom.DocumentNode:
		obj = b.documentObject((*dom.Document)(node))
	default:
		obj = b.vm.NewObject()
		obj.Set("nodeType", int(node.NodeType()))
		obj.Set("nodeName", node.NodeName())
		obj.Set("textContent", node.TextContent())
	}
	b.objects[node] = obj
	b.nodes[obj] = node
	return obj
}

func (b *binder) elementValue(el *dom.Element) goja.Value {
	if el == nil {
		return goja.Null()
	}
	return b.wrap(el.AsNode())
}

func (b *binder) elements(els []*dom.Element) goja.Value {
	values := make([]any, len(els))
	for i, el := range els {
		values[i] = b.wrap(el.AsNode())
	}
	return b.vm.NewArray(values...)
}

// throw raises err as a script exception. DOM errors keep their name: a
// TypeError becomes a native TypeError, anything else a DOMException.
func (b *binder) throw(err error) {
	var de *dom.DOMError
	if errors.As(err, &de) {
		if de.Name == dom.TypeError {
			panic(b.vm.NewTypeError(de.Message))
		}
		exc, cerr := b.vm.New(b.domException, b.vm.ToValue(de.Message), b.vm.ToValue(de.Name))
		if cerr != nil {
			panic(b.vm.NewGoError(err))
		}
		panic(exc)
	}
	panic(b.vm.NewGoError(err))
}

func (b *binder) documentObject(doc *dom.Document) *goja.Object {
	obj := b.vm.NewObject()
	node := doc.AsNode()

	b.accessor(obj, "readyState", func() goja.Value { return b.vm.ToValue(doc.ReadyState().String()) })
	b.accessor(obj, "body", func() goja.Value { return b.elementValue(doc.Body()) })
	b.accessor(obj, "head", func() goja.Value { return b.elementValue(doc.Head()) })
	b.accessor(obj, "documentElement", func() goja.Value { return b.elementValue(doc.DocumentElement()) })
	b.accessor(obj, "URL", func() goja.Value { return b.vm.ToValue(doc.URL()) })
	obj.Set("nodeType", int(dom.DocumentNode))

	obj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		el, err := doc.CreateElement(call.Argument(0).String())
		if err != nil {
			b.throw(err)
		}
		return b.wrap(el.AsNode())
	})
	obj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return b.wrap(doc.CreateTextNode(call.Argument(0).String()))
	})
	obj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return b.elementValue(doc.GetElementByID(call.Argument(0).String()))
	})
	b.setQueryMethods(obj, node)
	b.setListenerMethods(obj, node)
	return obj
}

func (b *binder) accessor(obj *goja.Object, name string, get func() goja.Value) {
	getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	if err := obj.DefineAccessorProperty(name, getter, nil, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		panic(err)
	}
}

type methodSetter interface {
	Set(name string, value any) error
}

func (b *binder) setQueryMethods(obj methodSetter, node *dom.Node) {
	obj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		el, err := domutil.Qs(call.Argument(0).String(), node)
		if err != nil {
			b.throw(err)
		}
		return b.elementValue(el)
	})
	obj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		els, err := domutil.Qsa(call.Argument(0).String(), node)
		if err != nil {
			b.throw(err)
		}
		return b.elements(els)
	})
}

func (b *binder) setListenerMethods(obj methodSetter, node *dom.Node) {
	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		b.addEventListener(node, call)
		return goja.Undefined()
	})
	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		fn, ok := call.Argument(1).(*goja.Object)
		if !ok {
			return goja.Undefined()
		}
		opts := listenerOptions(call.Argument(2))
		key := listenerKey{node: node, typ: call.Argument(0).String(), fn: fn, capture: opts.Capture}
		if id, ok := b.listeners[key]; ok {
			node.RemoveEventListener(key.typ, id)
			delete(b.listeners, key)
		}
		return goja.Undefined()
	})
	// dispatchEvent takes an event type, or an object with type, bubbles and
	// cancelable fields.
	obj.Set("dispatchEvent", func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)
		typ := arg.String()
		if o, ok := arg.(*goja.Object); ok {
			typ = o.Get("type").String()
		}
		ev := dom.NewEvent(typ, dom.EventInit{
			Bubbles:    boolField(arg, "bubbles"),
			Cancelable: boolField(arg, "cancelable"),
		})
		return b.vm.ToValue(node.DispatchEvent(ev))
	})
}

func (b *binder) addEventListener(node *dom.Node, call goja.FunctionCall) {
	fnObj, ok := call.Argument(1).(*goja.Object)
	if !ok {
		return
	}
	fn, ok := goja.AssertFunction(fnObj)
	if !ok {
		return
	}
	typ := call.Argument(0).String()
	opts := listenerOptions(call.Argument(2))
	key := listenerKey{node: node, typ: typ, fn: fnObj, capture: opts.Capture}
	if _, dup := b.listeners[key]; dup {
		return
	}

	run := func(ev *dom.Event, current *dom.Node) {
		if opts.Once {
			delete(b.listeners, key)
		}
		b.r.call(fn, b.wrap(current), b.event(ev, current))
	}
	b.listeners[key] = node.AddEventListener(typ, b.dispatcher(typ, run), opts)
}

// listener adapts a script function to a dom listener, with this bound to
// the element the listener is attached to.
func (b *binder) listener(typ string, fn goja.Callable) dom.EventListener {
	return b.dispatcher(typ, func(ev *dom.Event, current *dom.Node) {
		b.r.call(fn, b.wrap(current), b.event(ev, current))
	})
}

// dispatcher decides where run executes. Readiness events are fired by the
// loader, usually from another goroutine, so their listeners are queued onto
// the event loop. Everything else is dispatched by code already running on
// the loop and runs synchronously.
func (b *binder) dispatcher(typ string, run func(ev *dom.Event, current *dom.Node)) dom.EventListener {
	if !isReadinessEvent(typ) {
		return func(ev *dom.Event) {
			run(ev, ev.CurrentTarget)
		}
	}
	b.r.readinessListeners.Add(1)
	return func(ev *dom.Event) {
		current := ev.CurrentTarget
		b.r.loop.queueMacrotask(func() { run(ev, current) })
	}
}

func isReadinessEvent(typ string) bool {
	switch typ {
	case dom.EventReadyStateChange, dom.EventDOMContentLoaded, dom.EventLoad:
		return true
	}
	return false
}

func listenerOptions(v goja.Value) dom.ListenerOptions {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return dom.ListenerOptions{}
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return dom.ListenerOptions{Capture: v.ToBoolean()}
	}
	opts := dom.ListenerOptions{}
	if c := obj.Get("capture"); c != nil {
		opts.Capture = c.ToBoolean()
	}
	if o := obj.Get("once"); o != nil {
		opts.Once = o.ToBoolean()
	}
	return opts
}

func boolField(v goja.Value, name string) bool {
	obj, ok := v.(*goja.Object)
	if !ok {
		return false
	}
	f := obj.Get(name)
	return f != nil && f.ToBoolean()
}

func (b *binder) event(ev *dom.Event, current *dom.Node) *goja.Object {
	obj := b.vm.NewObject()
	obj.Set("type", ev.Type)
	obj.Set("bubbles", ev.Bubbles)
	obj.Set("cancelable", ev.Cancelable)
	if ev.Target != nil {
		obj.Set("target", b.wrap(ev.Target))
	}
	if current != nil {
		obj.Set("currentTarget", b.wrap(current))
	}
	b.accessor(obj, "defaultPrevented", func() goja.Value { return b.vm.ToValue(ev.DefaultPrevented()) })
	obj.Set("preventDefault", func(goja.FunctionCall) goja.Value {
		ev.PreventDefault()
		return goja.Undefined()
	})
	obj.Set("stopPropagation", func(goja.FunctionCall) goja.Value {
		ev.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("stopImmediatePropagation", func(goja.FunctionCall) goja.Value {
		ev.StopImmediatePropagation()
		return goja.Undefined()
	})
	return obj
}

// exportOptions converts a script option object for domutil.CreateElement.
// Arrays become []string, functions become listeners and nested objects
// become maps.
func (b *binder) exportOptions(v goja.Value) domutil.Options {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	obj := v.ToObject(b.vm)
	opts := make(domutil.Options)
	for _, key := range obj.Keys() {
		opts[key] = b.export(key, obj.Get(key))
	}
	return opts
}

func (b *binder) export(key string, v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if fn, ok := goja.AssertFunction(v); ok {
		return b.listener(strings.TrimPrefix(key, "on"), fn)
	}
	if node := b.unwrap(v); node != nil {
		return node
	}
	exported := v.Export()
	if items, ok := exported.([]any); ok {
		s := make([]string, len(items))
		for i, item := range items {
			s[i] = fmt.Sprint(item)
		}
		return s
	}
	return exported
}

// toValue converts the Go value of a reflected property.
func (b *binder) toValue(v any) goja.Value {
	switch v := v.(type) {
	case *dom.Element:
		return b.elementValue(v)
	case []*dom.Element:
		return b.elements(v)
	case *dom.DOMTokenList:
		return b.tokenList(v)
	case *dom.DOMStringMap:
		return b.vm.NewDynamicObject(&datasetObject{b: b, m: v})
	case *dom.CSSStyleDeclaration:
		return b.vm.NewDynamicObject(&styleObject{b: b, sd: v, methods: b.styleMethods(v)})
	}
	return b.vm.ToValue(v)
}

func (b *binder) tokenList(tl *dom.DOMTokenList) *goja.Object {
	obj := b.vm.NewObject()
	strs := func(args []goja.Value) []string {
		s := make([]string, len(args))
		for i, a := range args {
			s[i] = a.String()
		}
		return s
	}
	b.accessor(obj, "length", func() goja.Value { return b.vm.ToValue(tl.Length()) })
	b.accessor(obj, "value", func() goja.Value { return b.vm.ToValue(tl.Value()) })
	obj.Set("add", func(call goja.FunctionCall) goja.Value {
		if err := tl.Add(strs(call.Arguments)...); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	obj.Set("remove", func(call goja.FunctionCall) goja.Value {
		if err := tl.Remove(strs(call.Arguments)...); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	obj.Set("contains", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(tl.Contains(call.Argument(0).String()))
	})
	obj.Set("toggle", func(call goja.FunctionCall) goja.Value {
		var force []bool
		if f := call.Argument(1); !goja.IsUndefined(f) {
			force = append(force, f.ToBoolean())
		}
		on, err := tl.Toggle(call.Argument(0).String(), force...)
		if err != nil {
			b.throw(err)
		}
		return b.vm.ToValue(on)
	})
	obj.Set("toString", func(goja.FunctionCall) goja.Value {
		return b.vm.ToValue(tl.Value())
	})
	return obj
}

func (b *binder) styleMethods(sd *dom.CSSStyleDeclaration) map[string]goja.Value {
	return map[string]goja.Value{
		"getPropertyValue": b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return b.vm.ToValue(sd.GetPropertyValue(call.Argument(0).String()))
		}),
		"setProperty": b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			var priority []string
			if p := call.Argument(2); !goja.IsUndefined(p) {
				priority = append(priority, p.String())
			}
			sd.SetProperty(call.Argument(0).String(), call.Argument(1).String(), priority...)
			return goja.Undefined()
		}),
		"removeProperty": b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return b.vm.ToValue(sd.RemoveProperty(call.Argument(0).String()))
		}),
	}
}

func (b *binder) elementMethods(el *dom.Element) map[string]goja.Value {
	obj := &methodMap{vm: b.vm, m: make(map[string]goja.Value)}

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := el.LookupAttribute(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return b.vm.ToValue(v)
	})
	obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		if err := el.SetAttribute(call.Argument(0).String(), call.Argument(1).String()); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		el.RemoveAttribute(call.Argument(0).String())
		return goja.Undefined()
	})
	obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(el.HasAttribute(call.Argument(0).String()))
	})
	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.unwrap(call.Argument(0))
		if child == nil {
			panic(b.vm.NewTypeError("appendChild: argument is not a node"))
		}
		if _, err := el.AppendChild(child); err != nil {
			b.throw(err)
		}
		return call.Argument(0)
	})
	obj.Set("remove", func(goja.FunctionCall) goja.Value {
		if parent := el.AsNode().ParentNode(); parent != nil {
			_, _ = parent.RemoveChild(el.AsNode())
		}
		return goja.Undefined()
	})
	obj.Set("matches", func(call goja.FunctionCall) goja.Value {
		ok, err := el.Matches(call.Argument(0).String())
		if err != nil {
			b.throw(err)
		}
		return b.vm.ToValue(ok)
	})
	obj.Set("closest", func(call goja.FunctionCall) goja.Value {
		found, err := el.Closest(call.Argument(0).String())
		if err != nil {
			b.throw(err)
		}
		return b.elementValue(found)
	})
	obj.Set("click", func(goja.FunctionCall) goja.Value {
		el.Click()
		return goja.Undefined()
	})
	b.setQueryMethods(obj, el.AsNode())
	b.setListenerMethods(obj, el.AsNode())
	return obj.m
}

// methodMap collects methods for a dynamic object.
type methodMap struct {
	vm *goja.Runtime
	m  map[string]goja.Value
}

func (mm *methodMap) Set(name string, value any) error {
	mm.m[name] = mm.vm.ToValue(value)
	return nil
}

// elementObject exposes an element to scripts. Reflected properties go
// through the element's property table, so input.value and button.disabled
// behave as they do in a browser.
type elementObject struct {
	b       *binder
	el      *dom.Element
	methods map[string]goja.Value
}

func (o *elementObject) Get(key string) goja.Value {
	if m, ok := o.methods[key]; ok {
		return m
	}
	el := o.el
	switch key {
	case "outerHTML":
		return o.b.vm.ToValue(html.OuterHTML(el))
	case "innerHTML":
		return o.b.vm.ToValue(html.InnerHTML(el.AsNode()))
	case "firstElementChild":
		return o.b.elementValue(el.FirstElementChild())
	case "lastElementChild":
		return o.b.elementValue(el.LastElementChild())
	case "nextElementSibling":
		return o.b.elementValue(el.NextElementSibling())
	case "previousElementSibling":
		return o.b.elementValue(el.PreviousElementSibling())
	case "childElementCount":
		return o.b.vm.ToValue(el.ChildElementCount())
	}
	if v, ok := el.Property(key); ok {
		return o.b.toValue(v)
	}
	return nil
}

func (o *elementObject) Set(key string, val goja.Value) bool {
	if !o.el.HasProperty(key) {
		return false
	}
	if err := o.el.SetProperty(key, o.b.export(key, val)); err != nil {
		o.b.throw(err)
	}
	return true
}

func (o *elementObject) Has(key string) bool {
	if _, ok := o.methods[key]; ok {
		return true
	}
	return o.el.HasProperty(key) || o.Get(key) != nil
}

func (o *elementObject) Delete(string) bool {
	return false
}

func (o *elementObject) Keys() []string {
	return nil
}

// datasetObject exposes a DOMStringMap.
type datasetObject struct {
	b *binder
	m *dom.DOMStringMap
}

func (o *datasetObject) Get(key string) goja.Value {
	v, ok := o.m.Get(key)
	if !ok {
		return nil
	}
	return o.b.vm.ToValue(v)
}

func (o *datasetObject) Set(key string, val goja.Value) bool {
	if err := o.m.Set(key, val.String()); err != nil {
		o.b.throw(err)
	}
	return true
}

func (o *datasetObject) Has(key string) bool {
	_, ok := o.m.Get(key)
	return ok
}

func (o *datasetObject) Delete(key string) bool {
	o.m.Delete(key)
	return true
}

func (o *datasetObject) Keys() []string {
	return o.m.Keys()
}

// styleObject exposes an inline style. Keys are property names in either
// camelCase or kebab-case; cssText is the whole declaration.
type styleObject struct {
	b       *binder
	sd      *dom.CSSStyleDeclaration
	methods map[string]goja.Value
}

func (o *styleObject) Get(key string) goja.Value {
	if m, ok := o.methods[key]; ok {
		return m
	}
	switch key {
	case "cssText":
		return o.b.vm.ToValue(o.sd.CSSText())
	case "length":
		return o.b.vm.ToValue(o.sd.Length())
	}
	return o.b.vm.ToValue(o.sd.GetPropertyValue(key))
}

func (o *styleObject) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		o.sd.SetCSSText(val.String())
		return true
	}
	o.sd.SetProperty(key, val.String())
	return true
}

func (o *styleObject) Has(key string) bool {
	_, ok := o.methods[key]
	return ok || key == "cssText" || o.sd.GetPropertyValue(key) != ""
}

func (o *styleObject) Delete(key string) bool {
	o.sd.RemoveProperty(key)
	return true
}

func (o *styleObject) Keys() []string {
	return o.sd.PropertyNames()
}
