// Package mclock provides a monotonic wall clock abstraction, with a
// Simulated clock for deterministic tests of timing-sensitive logic, the
// way go-ethereum's p2p and les packages test without real sleeps. jsre's
// EventLoop stores a Clock, but its timers run on goja_nodejs's own
// SetTimeout and do not go through this package.
package mclock

import "time"

// startTime anchors AbsTime to process start so that values stay small and
// two System clocks constructed at different times remain comparable.
var startTime = time.Now()

// AbsTime represents absolute monotonic time.
type AbsTime time.Duration

// Add returns t + d.
func (t AbsTime) Add(d time.Duration) AbsTime {
	return t + AbsTime(d)
}

// Sub returns t - t2.
func (t AbsTime) Sub(t2 AbsTime) time.Duration {
	return time.Duration(t - t2)
}

// Clock interface makes it possible to replace the monotonic system clock
// with a simulated clock. Use mclock.System for the real clock and
// mclock.Simulated for a simulated clock in tests.
type Clock interface {
	Now() AbsTime
	Sleep(time.Duration)
	NewTimer(time.Duration) ChanTimer
	After(time.Duration) <-chan AbsTime
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer represents a cancellable event the clock schedules.
type Timer interface {
	// Stop cancels the timer. It returns false if the timer has already
	// expired or been stopped.
	Stop() bool
}

// ChanTimer is a Timer that delivers the expiration time on a channel.
type ChanTimer interface {
	Timer
	// C returns the timer's channel, which receives the time when the timer fires.
	C() <-chan AbsTime
	// Reset reschedules the timer with a new duration, replacing the previous one.
	Reset(time.Duration)
}

// System implements Clock using the real wall clock.
type System struct{}

// Now returns the current monotonic time relative to process start.
func (System) Now() AbsTime {
	return AbsTime(time.Since(startTime))
}

// Sleep blocks for the given duration.
func (System) Sleep(d time.Duration) {
	time.Sleep(d)
}

// After returns a channel that receives the current time after d has elapsed.
func (System) After(d time.Duration) <-chan AbsTime {
	ch := make(chan AbsTime, 1)
	time.AfterFunc(d, func() { ch <- System{}.Now() })
	return ch
}

// NewTimer creates a timer that sends the current time on its channel after
// the given duration has elapsed.
func (System) NewTimer(d time.Duration) ChanTimer {
	ch := make(chan AbsTime, 1)
	t := time.AfterFunc(d, func() {
		select {
		case ch <- System{}.Now():
		default:
		}
	})
	return &systemTimer{t, ch}
}

// AfterFunc runs f in its own goroutine after the duration has elapsed.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type systemTimer struct {
	*time.Timer
	ch <-chan AbsTime
}

func (st *systemTimer) C() <-chan AbsTime {
	return st.ch
}

func (st *systemTimer) Reset(d time.Duration) {
	st.Timer.Reset(d)
}
