package mclock

import "sync"

// Alarm sends a notification on its channel when the clock reaches a
// deadline. Deadlines can be rescheduled; rescheduling to a time no earlier
// than the currently-armed deadline is coalesced into a no-op, so it is safe
// for a hot path to call Schedule unconditionally rather than tracking
// whether a reschedule is actually needed.
type Alarm struct {
	mu       sync.Mutex
	clock    Clock
	timer    Timer
	deadline AbsTime
	armed    bool
	c        chan struct{}
}

// NewAlarm creates an Alarm backed by clock. If clock is nil, the real
// system clock is used.
func NewAlarm(clock Clock) *Alarm {
	if clock == nil {
		clock = System{}
	}
	return &Alarm{
		clock: clock,
		c:     make(chan struct{}, 1),
	}
}

// Schedule arms the alarm to fire at the given absolute time, unless it is
// already armed for a deadline at or before that time. A deadline at or
// before the clock's current time fires on the next processed tick.
func (a *Alarm) Schedule(deadline AbsTime) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.armed && a.deadline <= deadline {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	now := a.clock.Now()
	a.deadline = deadline
	a.armed = true
	a.timer = a.clock.AfterFunc(deadline.Sub(now), a.fire)
}

func (a *Alarm) fire() {
	a.mu.Lock()
	a.armed = false
	a.mu.Unlock()

	select {
	case a.c <- struct{}{}:
	default:
	}
}

// C returns the channel on which the alarm delivers its notification. It is
// buffered by one slot, so a fire that nobody receives before the next one
// doesn't block the timer goroutine.
func (a *Alarm) C() <-chan struct{} {
	return a.c
}
