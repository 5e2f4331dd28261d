// Package js runs JavaScript against a dom document with goja. Scripts see a
// document object, the qs, qsa and createElement helpers and a DOMisReady
// promise, the way a page script would.
package js

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/domutil"
)

// ConsoleFunc receives console output. level is the console method name
// ("log", "info", "warn", "error" or "debug").
type ConsoleFunc func(level, msg string)

// Runtime wraps a goja runtime bound to one document. The goja runtime is not
// safe for concurrent use: Execute, ExecuteScript and RunLoop serialize on
// the runtime, and work from other goroutines must go through Enqueue.
type Runtime struct {
	vm      *goja.Runtime
	doc     *dom.Document
	binder  *binder
	loop    *eventLoop
	timers  *timerSet
	console ConsoleFunc
	onError func(error)

	mu sync.Mutex

	errMu  sync.Mutex
	errors []error

	// readyCh is non-nil until DOMisReady has been settled.
	readyCh      <-chan struct{}
	resolveReady func()

	// readinessListeners counts script listeners for events the loader fires.
	readinessListeners atomic.Int32

	// rejected holds promises rejected with no handler attached yet.
	rejected []*goja.Promise
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithConsole sends console output to fn instead of standard output.
func WithConsole(fn ConsoleFunc) Option {
	return func(r *Runtime) {
		r.console = fn
	}
}

// WithErrorHandler calls fn for every script error, including errors thrown
// by listeners and timers.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Runtime) {
		r.onError = fn
	}
}

// NewRuntime creates a runtime for doc. A nil doc means domutil.Default().
// doc may still be loading on another goroutine; DOMisReady settles once it
// is ready, the next time RunLoop runs.
func NewRuntime(doc *dom.Document, opts ...Option) *Runtime {
	if doc == nil {
		doc = domutil.Default()
	}
	r := &Runtime{
		vm:      goja.New(),
		doc:     doc,
		loop:    newEventLoop(),
		timers:  newTimerSet(),
		console: stdoutConsole,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.binder = newBinder(r)
	r.vm.SetPromiseRejectionTracker(r.trackRejection)

	r.setupConsole()
	r.setupTimers()
	r.binder.setupGlobals()
	r.setupReady()

	if doc.ReadyState() != dom.Complete {
		doc.AddEventListener(dom.EventLoad, func(*dom.Event) {
			r.loop.signal()
		}, dom.ListenerOptions{Once: true})
	}
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Document returns the document scripts see.
func (r *Runtime) Document() *dom.Document {
	return r.doc
}

// Execute runs code and returns its completion value.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.report(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.report(err)
	}
	return result, err
}

// ExecuteScript compiles code as a classic script named src and runs it.
// Scripts are sloppy mode unless they opt into "use strict".
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.report(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.report(err)
		return err
	}
	if _, err = r.vm.RunProgram(program); err != nil {
		r.report(err)
	}
	return err
}

// Enqueue schedules fn to run on the event loop with the goja runtime. It is
// safe to call from any goroutine.
func (r *Runtime) Enqueue(fn func(vm *goja.Runtime)) {
	r.loop.queueMacrotask(func() {
		r.guard(func() { fn(r.vm) })
	})
}

// RunLoop runs queued tasks until the runtime is idle or ctx is done. Idle
// means nothing is queued, no timer is armed, DOMisReady has settled and, if
// a script listens for readiness events, the document is complete.
func (r *Runtime) RunLoop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		for r.loop.runOnce() {
		}
		r.reportRejections()
		if r.readyCh != nil {
			select {
			case <-r.readyCh:
				r.settleReady()
				continue
			default:
			}
		}
		if r.idle() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.loop.wake:
		case <-r.readyCh:
			r.settleReady()
		}
	}
}

func (r *Runtime) idle() bool {
	// Read the state first: listeners for the events leading up to Complete
	// were queued before Complete became visible.
	complete := r.doc.ReadyState() == dom.Complete
	if r.readyCh != nil || r.loop.hasPending() || r.timers.pending() {
		return false
	}
	return complete || r.readinessListeners.Load() == 0
}

func (r *Runtime) trackRejection(p *goja.Promise, op goja.PromiseRejectionOperation) {
	switch op {
	case goja.PromiseRejectionReject:
		r.rejected = append(r.rejected, p)
	case goja.PromiseRejectionHandle:
		for i, q := range r.rejected {
			if q == p {
				r.rejected = append(r.rejected[:i], r.rejected[i+1:]...)
				break
			}
		}
	}
}

// reportRejections reports promises still rejected without a handler once
// the queue has drained.
func (r *Runtime) reportRejections() {
	for _, p := range r.rejected {
		r.report(fmt.Errorf("unhandled promise rejection: %s", formatValue(p.Result())))
	}
	r.rejected = nil
}

// Close stops all timers and drops queued tasks.
func (r *Runtime) Close() {
	r.timers.stopAll()
	r.loop.clear()
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return append([]error{}, r.errors...)
}

func (r *Runtime) report(err error) {
	r.errMu.Lock()
	r.errors = append(r.errors, err)
	r.errMu.Unlock()
	if r.onError != nil {
		r.onError(err)
	}
}

// guard runs fn, reporting a panic instead of unwinding the loop.
func (r *Runtime) guard(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.report(fmt.Errorf("task panic: %v", p))
		}
	}()
	fn()
}

// call invokes a script function, reporting what it throws.
func (r *Runtime) call(fn goja.Callable, this goja.Value, args ...goja.Value) {
	r.guard(func() {
		if _, err := fn(this, args...); err != nil {
			r.report(err)
		}
	})
}

// setupReady installs DOMisReady. It returns the same promise on every call,
// fulfilled once the document has left Loading.
func (r *Runtime) setupReady() {
	promise, resolve, _ := r.vm.NewPromise()
	r.resolveReady = func() {
		resolve(goja.Undefined())
	}
	r.vm.Set("DOMisReady", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(promise)
	})

	ch := domutil.Ready(r.doc)
	select {
	case <-ch:
		r.resolveReady()
	default:
		r.readyCh = ch
	}
}

func (r *Runtime) settleReady() {
	r.readyCh = nil
	r.guard(r.resolveReady)
}

func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(level, func(call goja.FunctionCall) goja.Value {
			r.console(level, formatArgs(call.Arguments))
			return goja.Undefined()
		})
	}
	r.vm.Set("console", console)
}

func (r *Runtime) setupTimers() {
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(r.vm.NewTypeError("setTimeout: callback is not a function"))
		}
		delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
		var args []goja.Value
		if len(call.Arguments) > 2 {
			args = append(args, call.Arguments[2:]...)
		}
		id := r.timers.start(delay, r.loop, func() {
			r.call(fn, goja.Undefined(), args...)
		})
		return r.vm.ToValue(id)
	})
	r.vm.Set("clearTimeout", func(call goja.FunctionCall) goja.Value {
		r.timers.clear(int(call.Argument(0).ToInteger()))
		return goja.Undefined()
	})
	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(r.vm.NewTypeError("queueMicrotask: callback is not a function"))
		}
		r.loop.queueMicrotask(func() {
			r.call(fn, goja.Undefined())
		})
		return goja.Undefined()
	})
}

func stdoutConsole(level, msg string) {
	if level == "log" || level == "info" {
		fmt.Fprintln(os.Stdout, msg)
		return
	}
	fmt.Fprintf(os.Stdout, "[%s] %s\n", strings.ToUpper(level), msg)
}

// formatArgs joins console arguments with spaces.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
