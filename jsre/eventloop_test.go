package jsre

import (
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

func TestEventLoopDispatchRunsOnLoop(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	go loop.Run()
	defer loop.Stop()

	done := make(chan struct{})
	loop.Dispatch(func(r *goja.Runtime) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatched function never ran")
	}
}

func TestEventLoopTimerFires(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	go loop.Run()
	defer loop.Stop()

	fired := make(chan struct{})
	id := loop.EnqueueWithDelay(10*time.Millisecond, func(r *goja.Runtime) {
		close(fired)
	})
	require.True(t, loop.TimerHasRef(id))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestEventLoopCancelByTimeoutID(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	go loop.Run()
	defer loop.Stop()

	id := loop.EnqueueWithDelay(time.Hour, func(r *goja.Runtime) {})
	loop.CancelByTimeoutID(id)
	require.False(t, loop.TimerHasRef(id))
}

func TestEventLoopDispatchOffThread(t *testing.T) {
	rt := goja.New()
	loop := NewEventLoop(rt, nil)
	go loop.Run()
	defer loop.Stop()

	done := make(chan any, 1)
	loop.DispatchOffThread(func() (any, error) {
		return 42, nil
	}, func(r *goja.Runtime, v any, err error) {
		done <- v
	})

	select {
	case v := <-done:
		require.Equal(t, 42, v)
	case <-time.After(2 * time.Second):
		t.Fatal("off-thread dispatch never completed")
	}
}

func TestAwaitableToPromiseResolves(t *testing.T) {
	rt := goja.New()
	ch := make(chan AwaitResult, 1)
	ch <- AwaitResult{Value: int64(7)}
	a := &hostFuture{ch: ch}

	pv := awaitableToPromise(rt, a)
	require.NoError(t, rt.Set("p", pv))

	p, ok := pv.Export().(*goja.Promise)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return p.State() != goja.PromiseStatePending
	}, time.Second, time.Millisecond)
	require.Equal(t, goja.PromiseStateFulfilled, p.State())
}
