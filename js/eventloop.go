package js

import (
	"sync"
	"time"
)

// eventLoop queues work for the goroutine that owns the goja runtime. Any
// goroutine may queue; only RunLoop runs.
type eventLoop struct {
	mu         sync.Mutex
	microtasks []func()
	macrotasks []func()
	wake       chan struct{}
}

func newEventLoop() *eventLoop {
	return &eventLoop{wake: make(chan struct{}, 1)}
}

// queueMicrotask adds a microtask. Microtasks run before the next macrotask.
func (el *eventLoop) queueMicrotask(fn func()) {
	el.mu.Lock()
	el.microtasks = append(el.microtasks, fn)
	el.mu.Unlock()
	el.signal()
}

// queueMacrotask adds a macrotask.
func (el *eventLoop) queueMacrotask(fn func()) {
	el.mu.Lock()
	el.macrotasks = append(el.macrotasks, fn)
	el.mu.Unlock()
	el.signal()
}

// signal wakes a RunLoop blocked waiting for work.
func (el *eventLoop) signal() {
	select {
	case el.wake <- struct{}{}:
	default:
	}
}

// runOnce drains the microtasks, then runs one macrotask and the microtasks
// it queued. It reports whether anything ran.
func (el *eventLoop) runOnce() bool {
	ran := el.drainMicrotasks()

	el.mu.Lock()
	if len(el.macrotasks) == 0 {
		el.mu.Unlock()
		return ran
	}
	t := el.macrotasks[0]
	el.macrotasks = el.macrotasks[1:]
	el.mu.Unlock()

	t()
	el.drainMicrotasks()
	return true
}

func (el *eventLoop) drainMicrotasks() bool {
	ran := false
	for {
		el.mu.Lock()
		if len(el.microtasks) == 0 {
			el.mu.Unlock()
			return ran
		}
		t := el.microtasks[0]
		el.microtasks = el.microtasks[1:]
		el.mu.Unlock()

		t()
		ran = true
	}
}

// hasPending returns true if there are any queued tasks.
func (el *eventLoop) hasPending() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.microtasks) > 0 || len(el.macrotasks) > 0
}

// clear removes all pending tasks.
func (el *eventLoop) clear() {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = nil
	el.macrotasks = nil
}

// timerSet tracks setTimeout timers. A fired timer queues its callback as a
// macrotask; clearing it before that macrotask runs cancels the callback.
type timerSet struct {
	mu     sync.Mutex
	nextID int
	active map[int]*time.Timer
}

func newTimerSet() *timerSet {
	return &timerSet{nextID: 1, active: make(map[int]*time.Timer)}
}

func (ts *timerSet) start(delay time.Duration, loop *eventLoop, fn func()) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	id := ts.nextID
	ts.nextID++
	ts.active[id] = time.AfterFunc(delay, func() {
		loop.queueMacrotask(func() {
			if ts.finish(id) {
				fn()
			}
		})
	})
	return id
}

// finish retires id and reports whether it was still armed.
func (ts *timerSet) finish(id int) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	_, ok := ts.active[id]
	delete(ts.active, id)
	return ok
}

func (ts *timerSet) clear(id int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.active[id]; ok {
		t.Stop()
		delete(ts.active, id)
	}
}

func (ts *timerSet) pending() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.active) > 0
}

func (ts *timerSet) stopAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for id, t := range ts.active {
		t.Stop()
		delete(ts.active, id)
	}
}
