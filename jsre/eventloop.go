package jsre

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	nodeloop "github.com/dop251/goja_nodejs/eventloop"
	"golang.org/x/sync/semaphore"

	"github.com/hostvm/jsbridge/internal/event"
	"github.com/hostvm/jsbridge/internal/mclock"
)

// offThreadLimit bounds how many DispatchOffThread goroutines may run
// concurrently, matching §4.G responsibility 2's requirement that
// off-thread dispatch not unboundedly fan out host goroutines per runtime.
var offThreadLimit = int64(runtime.GOMAXPROCS(0) * 4)

// EventLoop binds the four responsibilities of the promise/job-queue bridge
// (§4.G): microtask enqueueing (delegated to goja_nodejs, which drains
// goja's native job queue on every RunOnLoop tick), off-thread dispatch,
// timers, and Promise<->host Awaitable conversion. Unhandled promise
// rejections fan out through a Feed rather than a single callback, so more
// than one host listener can observe them.
type EventLoop struct {
	rt    *goja.Runtime
	inner *nodeloop.EventLoop
	clock mclock.Clock

	mu        sync.Mutex
	timers    map[int64]*timerEntry
	nextTimer int64

	rejections event.Feed

	offThread *semaphore.Weighted
}

type timerEntry struct {
	cancel func()
	ref    atomic.Bool
}

// UnhandledRejection is sent on the Feed returned by Rejections whenever a
// promise is rejected while it has no handler attached. The notification is
// sent at the moment of rejection; a handler attached later does not
// retract it.
type UnhandledRejection struct {
	Promise *goja.Promise
	Reason  goja.Value
}

// NewEventLoop creates an event loop bound to rt. clock is stored on the
// loop (the real system clock if nil), but timer scheduling goes through
// goja_nodejs's SetTimeout and does not read it.
func NewEventLoop(rt *goja.Runtime, clock mclock.Clock) *EventLoop {
	if clock == nil {
		clock = mclock.System{}
	}
	return &EventLoop{
		rt:        rt,
		inner:     nodeloop.NewEventLoop(),
		clock:     clock,
		timers:    make(map[int64]*timerEntry),
		offThread: semaphore.NewWeighted(offThreadLimit),
	}
}

// Rejections returns a Subscription delivering every unhandled rejection
// observed after the call to Subscribe.
func (l *EventLoop) Rejections(ch chan<- UnhandledRejection) event.Subscription {
	return l.rejections.Subscribe(ch)
}

// Run starts the loop and blocks until Stop is called explicitly, even if
// it temporarily goes idle, matching a long-lived host process that keeps a
// JS runtime around for later calls.
func (l *EventLoop) Run() {
	l.inner.StartInForeground()
}

// Stop terminates the loop without waiting for it to wind down. Pending
// timers are not cancelled by this call.
func (l *EventLoop) Stop() {
	l.inner.StopNoWait()
}

// Dispatch schedules fn to run on the event-loop goroutine, the only
// goroutine allowed to touch the runtime, and is the mechanism every other
// host thread must use to call into JS (§5's global interpreter mutex
// equivalent).
func (l *EventLoop) Dispatch(fn func(*goja.Runtime)) bool {
	return l.inner.RunOnLoop(fn)
}

// DispatchOffThread runs work in a new goroutine and delivers its result
// back onto the event loop, implementing the off-thread dispatch
// responsibility without ever touching rt outside the loop goroutine.
func (l *EventLoop) DispatchOffThread(work func() (any, error), then func(*goja.Runtime, any, error)) {
	if err := l.offThread.Acquire(context.Background(), 1); err != nil {
		l.inner.RunOnLoop(func(rt *goja.Runtime) {
			then(rt, nil, err)
		})
		return
	}
	go func() {
		defer l.offThread.Release(1)
		val, err := work()
		l.inner.RunOnLoop(func(rt *goja.Runtime) {
			then(rt, val, err)
		})
	}()
}

// EnqueueWithDelay schedules fn to run after delay and returns a timeout id
// that CancelByTimeoutID accepts.
func (l *EventLoop) EnqueueWithDelay(delay time.Duration, fn func(*goja.Runtime)) int64 {
	l.mu.Lock()
	id := l.nextTimer
	l.nextTimer++
	l.mu.Unlock()

	entry := &timerEntry{}
	entry.ref.Store(true)
	l.mu.Lock()
	l.timers[id] = entry
	l.mu.Unlock()

	timer := l.inner.SetTimeout(func(rt *goja.Runtime) {
		l.mu.Lock()
		delete(l.timers, id)
		l.mu.Unlock()
		fn(rt)
	}, delay)
	entry.cancel = func() { l.inner.ClearTimeout(timer) }
	return id
}

// CancelByTimeoutID cancels a pending timer scheduled by EnqueueWithDelay.
func (l *EventLoop) CancelByTimeoutID(id int64) {
	l.mu.Lock()
	entry, ok := l.timers[id]
	delete(l.timers, id)
	l.mu.Unlock()
	if ok && entry.cancel != nil {
		entry.cancel()
	}
}

// TimerHasRef reports the timer's "ref" flag (Node's timer.hasRef). The
// flag is bookkeeping only: the loop runs until Stop whatever its value.
func (l *EventLoop) TimerHasRef(id int64) bool {
	l.mu.Lock()
	entry, ok := l.timers[id]
	l.mu.Unlock()
	return ok && entry.ref.Load()
}

// TimerAddRef sets the timer's ref flag; it does not change how long the
// loop runs.
func (l *EventLoop) TimerAddRef(id int64) {
	l.mu.Lock()
	entry, ok := l.timers[id]
	l.mu.Unlock()
	if ok {
		entry.ref.Store(true)
	}
}

// TimerRemoveRef clears the timer's ref flag; it does not change how long
// the loop runs.
func (l *EventLoop) TimerRemoveRef(id int64) {
	l.mu.Lock()
	entry, ok := l.timers[id]
	l.mu.Unlock()
	if ok {
		entry.ref.Store(false)
	}
}

// awaitableToPromise converts a host Awaitable into a JS Promise, resolving
// or rejecting it from the result delivered on the Awaitable's channel.
func awaitableToPromise(rt *goja.Runtime, a Awaitable) goja.Value {
	promise, resolve, reject := rt.NewPromise()
	go func() {
		res := <-a.Await()
		if res.Err != nil {
			jsErr, err := hostErrorToJS(rt, res.Err)
			if err != nil {
				reject(rt.ToValue(res.Err.Error()))
				return
			}
			reject(jsErr)
			return
		}
		jv, err := hostToJS(rt, res.Value)
		if err != nil {
			reject(rt.ToValue(err.Error()))
			return
		}
		resolve(jv)
	}()
	return rt.ToValue(promise)
}

// hostFuture is the Awaitable a JS Promise becomes once crossed into host
// code (the reverse direction from awaitableToPromise).
type hostFuture struct {
	ch chan AwaitResult
}

func (f *hostFuture) Await() <-chan AwaitResult { return f.ch }

// promiseToAwaitable converts a JS Promise into a host Awaitable by
// attaching then/catch handlers that publish onto a channel.
func promiseToAwaitable(rt *goja.Runtime, obj *goja.Object) Awaitable {
	f := &hostFuture{ch: make(chan AwaitResult, 1)}
	then, ok := goja.AssertFunction(obj.Get("then"))
	if !ok {
		f.ch <- AwaitResult{Err: fmt.Errorf("jsre: value is not thenable")}
		return f
	}
	onFulfilled := rt.ToValue(func(call goja.FunctionCall) goja.Value {
		v, err := jsToHost(rt, call.Argument(0))
		f.ch <- AwaitResult{Value: v, Err: err}
		return goja.Undefined()
	})
	onRejected := rt.ToValue(func(call goja.FunctionCall) goja.Value {
		reason := call.Argument(0)
		msg := "promise rejected"
		if reason != nil {
			msg = reason.String()
		}
		f.ch <- AwaitResult{Err: &SpiderMonkeyError{Message: msg, JSError: reason}}
		return goja.Undefined()
	})
	_, _ = then(obj, onFulfilled, onRejected)
	return f
}

// publishUnhandledRejection is wired into the runtime's promise rejection
// tracker (set up in jsre.go) and fans the notification out through Feed.
func (l *EventLoop) publishUnhandledRejection(p *goja.Promise, reason goja.Value) {
	l.rejections.Send(UnhandledRejection{Promise: p, Reason: reason})
}
