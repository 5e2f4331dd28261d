package js

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/goleak"

	"github.com/chrisuehlinger/domkit/dom"
	"github.com/chrisuehlinger/domkit/html"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRuntimeBasic(t *testing.T) {
	r := NewRuntime(dom.NewDocument())

	result, err := r.Execute("1 + 2")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 3 {
		t.Errorf("Expected 3, got %v", result.ToInteger())
	}
}

func TestRuntimeVariables(t *testing.T) {
	r := NewRuntime(dom.NewDocument())

	if _, err := r.Execute("var x = 42;"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	result, err := r.Execute("x")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 42 {
		t.Errorf("Expected 42, got %v", result.ToInteger())
	}
}

func TestExecuteScriptSyntaxError(t *testing.T) {
	var reported []error
	r := NewRuntime(dom.NewDocument(), WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))

	if err := r.ExecuteScript("var = ;", "broken.js"); err == nil {
		t.Fatal("Expected a compile error")
	}
	if len(reported) != 1 || len(r.Errors()) != 1 {
		t.Errorf("Expected the error to be reported once, got %v", reported)
	}
}

func TestConsole(t *testing.T) {
	var lines []string
	r := NewRuntime(dom.NewDocument(), WithConsole(func(level, msg string) {
		lines = append(lines, level+":"+msg)
	}))

	if _, err := r.Execute(`console.log("a", 1, null, undefined); console.warn("careful")`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := "log:a 1 null undefined,warn:careful"
	if got := strings.Join(lines, ","); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDOMisReadyOnLoadedDocument(t *testing.T) {
	r := NewRuntime(dom.NewDocument())

	if _, err := r.Execute(`var ready = false; DOMisReady().then(function() { ready = true; });`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := r.RunLoop(context.Background()); err != nil {
		t.Fatalf("RunLoop failed: %v", err)
	}
	result, _ := r.Execute("ready && DOMisReady() === DOMisReady()")
	if !result.ToBoolean() {
		t.Error("Expected DOMisReady to be fulfilled and shared")
	}
}

func TestDOMisReadyWhileLoading(t *testing.T) {
	loader := html.NewLoader()
	r := NewRuntime(loader.Document())

	_, err := r.Execute(`
		var seen = [];
		document.addEventListener("DOMContentLoaded", function() { seen.push("dcl"); });
		DOMisReady().then(function() { seen.push("ready:" + qs("#late").id); });
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	loaded := make(chan error, 1)
	go func() {
		loaded <- loader.Load(ctx, strings.NewReader(`<body><p id="late">x</p></body>`))
	}()

	if err := r.RunLoop(ctx); err != nil {
		t.Fatalf("RunLoop failed: %v", err)
	}
	if err := <-loaded; err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	result, _ := r.Execute("seen.slice().sort().join(',')")
	if result.String() != "dcl,ready:late" {
		t.Errorf("Expected both callbacks to run on the loop, got %q", result.String())
	}
}

func TestRunLoopCanceledWhileWaiting(t *testing.T) {
	r := NewRuntime(html.NewLoader().Document())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := r.RunLoop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestTimersAndMicrotasks(t *testing.T) {
	r := NewRuntime(dom.NewDocument())
	defer r.Close()

	_, err := r.Execute(`
		var order = [];
		setTimeout(function(label) { order.push(label); }, 5, "timeout");
		var cleared = setTimeout(function() { order.push("cleared"); }, 1);
		clearTimeout(cleared);
		queueMicrotask(function() { order.push("micro"); });
		order.push("sync");
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.RunLoop(ctx); err != nil {
		t.Fatalf("RunLoop failed: %v", err)
	}

	result, _ := r.Execute("order.join(',')")
	if result.String() != "sync,micro,timeout" {
		t.Errorf("Expected sync,micro,timeout, got %q", result.String())
	}
}

func TestEnqueueFromAnotherGoroutine(t *testing.T) {
	r := NewRuntime(dom.NewDocument())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Enqueue(func(vm *goja.Runtime) {
			vm.Set("fromGo", 42)
		})
	}()
	wg.Wait()

	if err := r.RunLoop(context.Background()); err != nil {
		t.Fatalf("RunLoop failed: %v", err)
	}
	result, _ := r.Execute("fromGo")
	if result.ToInteger() != 42 {
		t.Errorf("Expected 42, got %v", result)
	}
}

func TestListenerErrorsAreReported(t *testing.T) {
	r := NewRuntime(dom.NewDocument())

	_, err := r.Execute(`
		var b = createElement("button");
		b.addEventListener("click", function() { throw new Error("boom"); });
		b.click();
		"still running";
	`)
	if err != nil {
		t.Fatalf("Listener error should not abort the script: %v", err)
	}
	errs := r.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "boom") {
		t.Errorf("Expected the listener error to be recorded, got %v", errs)
	}
}

func TestUnhandledRejectionIsReported(t *testing.T) {
	r := NewRuntime(dom.NewDocument())

	_, err := r.Execute(`
		DOMisReady().then(function() { qs("["); });
		DOMisReady().then(function() { qs("["); }).catch(function() {});
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := r.RunLoop(context.Background()); err != nil {
		t.Fatalf("RunLoop failed: %v", err)
	}

	errs := r.Errors()
	if len(errs) != 1 {
		t.Fatalf("Expected one unhandled rejection, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "SyntaxError") {
		t.Errorf("Expected the rejection to carry the DOM error name, got %v", errs[0])
	}
}
