package domutil

import (
	"context"
	"sync"

	"github.com/chrisuehlinger/domkit/dom"
)

// ReadyTarget is the part of a document Ready needs. *dom.Document
// implements it.
type ReadyTarget interface {
	ReadyState() dom.ReadyState
	AddEventListener(typ string, fn dom.EventListener, opts dom.ListenerOptions) dom.ListenerID
	RemoveEventListener(typ string, id dom.ListenerID) bool
}

// Ready returns a channel that is closed once target has finished parsing,
// that is once its ready state has left Loading. A nil target means
// Default().
//
// When target is already past Loading the channel comes back closed and no
// listener is registered. Otherwise a one-shot DOMContentLoaded listener
// closes it. Ready never fails and never times out; see WaitReady for a
// cancelable wait.
func Ready(target ReadyTarget) <-chan struct{} {
	done, _ := ready(target)
	return done
}

// WaitReady blocks until target is ready or ctx is done. On cancellation the
// listener Ready registered is removed and ctx.Err() is returned.
func WaitReady(ctx context.Context, target ReadyTarget) error {
	done, stop := ready(target)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		stop()
		select {
		case <-done:
			return nil
		default:
			return ctx.Err()
		}
	}
}

// ready returns the readiness channel and a func that unregisters its
// listener, if one was registered.
func ready(target ReadyTarget) (<-chan struct{}, func()) {
	if target == nil {
		target = Default()
	} else if doc, ok := target.(*dom.Document); ok && doc == nil {
		target = Default()
	}

	done := make(chan struct{})
	if target.ReadyState() != dom.Loading {
		close(done)
		return done, func() {}
	}

	var once sync.Once
	resolve := func() {
		once.Do(func() { close(done) })
	}
	id := target.AddEventListener(dom.EventDOMContentLoaded, func(*dom.Event) {
		resolve()
	}, dom.ListenerOptions{Once: true})
	stop := func() {
		target.RemoveEventListener(dom.EventDOMContentLoaded, id)
	}

	// The document may have left Loading between the first check and the
	// registration, in which case DOMContentLoaded has already fired.
	if target.ReadyState() != dom.Loading {
		stop()
		resolve()
	}
	return done, stop
}
