package dom

import (
	"sync"
	"time"
)

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// Event represents a DOM event.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	EventPhase    EventPhase
	Bubbles       bool
	Cancelable    bool
	TimeStamp     time.Time
	Detail        any

	defaultPrevented bool
	stopPropagation  bool
	stopImmediate    bool
}

// EventInit carries the optional fields of NewEvent.
type EventInit struct {
	Bubbles    bool
	Cancelable bool
	Detail     any
}

// NewEvent creates an untrusted event of the given type.
func NewEvent(typ string, init EventInit) *Event {
	return &Event{
		Type:       typ,
		Bubbles:    init.Bubbles,
		Cancelable: init.Cancelable,
		Detail:     init.Detail,
		TimeStamp:  time.Now(),
	}
}

// PreventDefault cancels the event if it is cancelable.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation prevents the event from reaching further nodes.
func (e *Event) StopPropagation() {
	e.stopPropagation = true
}

// StopImmediatePropagation also prevents remaining listeners on the current node.
func (e *Event) StopImmediatePropagation() {
	e.stopPropagation = true
	e.stopImmediate = true
}

// EventListener is the callback invoked for a dispatched event.
type EventListener func(*Event)

// ListenerOptions represents addEventListener options.
type ListenerOptions struct {
	Capture bool
	Once    bool
}

// ListenerID identifies a registration. Go funcs are not comparable, so
// removal goes through the id returned by AddEventListener.
type ListenerID uint64

// eventListener represents a registered event listener.
type eventListener struct {
	id      ListenerID
	fn      EventListener
	options ListenerOptions
}

// EventTarget manages event listeners for a node.
type EventTarget struct {
	mu        sync.Mutex
	listeners map[string][]eventListener
	nextID    ListenerID
}

func (et *EventTarget) add(typ string, fn EventListener, opts ListenerOptions) ListenerID {
	et.mu.Lock()
	defer et.mu.Unlock()

	if et.listeners == nil {
		et.listeners = make(map[string][]eventListener)
	}
	et.nextID++
	et.listeners[typ] = append(et.listeners[typ], eventListener{
		id:      et.nextID,
		fn:      fn,
		options: opts,
	})
	return et.nextID
}

func (et *EventTarget) remove(typ string, id ListenerID) bool {
	et.mu.Lock()
	defer et.mu.Unlock()

	listeners := et.listeners[typ]
	for i, l := range listeners {
		if l.id == id {
			et.listeners[typ] = append(listeners[:i:i], listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (et *EventTarget) count(typ string) int {
	et.mu.Lock()
	defer et.mu.Unlock()
	return len(et.listeners[typ])
}

// take returns a snapshot of the listeners that should run for phase.
func (et *EventTarget) take(typ string, phase EventPhase) []eventListener {
	et.mu.Lock()
	defer et.mu.Unlock()

	var selected []eventListener
	for _, l := range et.listeners[typ] {
		if phase == EventPhaseCapturing && !l.options.Capture {
			continue
		}
		if phase == EventPhaseBubbling && l.options.Capture {
			continue
		}
		selected = append(selected, l)
	}
	return selected
}

// claim reports whether l is still registered and may run now. A once
// listener is removed here, under the lock, so two concurrent dispatches
// can never both run it.
func (et *EventTarget) claim(typ string, l eventListener) bool {
	et.mu.Lock()
	defer et.mu.Unlock()

	listeners := et.listeners[typ]
	for i, cur := range listeners {
		if cur.id != l.id {
			continue
		}
		if l.options.Once {
			et.listeners[typ] = append(listeners[:i:i], listeners[i+1:]...)
		}
		return true
	}
	return false
}

// DispatchEvent dispatches ev at n through the capture, target and bubble
// phases. It returns false if a listener called PreventDefault.
func (n *Node) DispatchEvent(ev *Event) bool {
	ev.Target = n
	ev.defaultPrevented = false
	ev.stopPropagation = false
	ev.stopImmediate = false

	var path []*Node
	for p := n.parentNode; p != nil; p = p.parentNode {
		path = append(path, p)
	}

	for i := len(path) - 1; i >= 0 && !ev.stopPropagation; i-- {
		invoke(path[i], ev, EventPhaseCapturing)
	}
	if !ev.stopPropagation {
		invoke(n, ev, EventPhaseAtTarget)
	}
	if ev.Bubbles {
		for i := 0; i < len(path) && !ev.stopPropagation; i++ {
			invoke(path[i], ev, EventPhaseBubbling)
		}
	}

	ev.EventPhase = EventPhaseNone
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

func invoke(node *Node, ev *Event, phase EventPhase) {
	ev.CurrentTarget = node
	ev.EventPhase = phase
	for _, l := range node.events.take(ev.Type, phase) {
		// Listeners removed by an earlier listener do not run.
		if !node.events.claim(ev.Type, l) {
			continue
		}
		l.fn(ev)
		if ev.stopImmediate {
			break
		}
	}
}
