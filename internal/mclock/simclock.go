package mclock

import (
	"container/heap"
	"sync"
	"time"
)

// Simulated implements a virtual Clock for reproducible tests. It simulates a
// scheduler on which actions can be triggered by calling Run. The zero value
// is usable, starting at virtual time 0.
type Simulated struct {
	mu        sync.RWMutex
	now       AbsTime
	scheduled simTimerHeap
	cond      *sync.Cond
}

type simTimer struct {
	at       AbsTime
	index    int // position in scheduled
	c        chan AbsTime
	fired    bool
	callback func()
	s        *Simulated
}

func (s *Simulated) init() {
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
}

// Run moves the clock by the given duration, executing all timers before that
// duration.
func (s *Simulated) Run(d time.Duration) {
	s.mu.Lock()
	s.init()
	end := s.now.Add(d)

	for len(s.scheduled) > 0 {
		ev := s.scheduled[0]
		if ev.at > end {
			break
		}
		s.now = ev.at
		s.pop()
		s.mu.Unlock()

		ev.fire()

		s.mu.Lock()
	}
	s.now = end
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (ev *simTimer) fire() {
	if ev.c != nil {
		ev.c <- ev.at
	}
	if ev.callback != nil {
		ev.callback()
	}
}

func (s *Simulated) pop() *simTimer {
	ev := heap.Pop(&s.scheduled).(*simTimer)
	ev.fired = true
	return ev
}

// ActiveTimers returns the number of timers that haven't fired.
func (s *Simulated) ActiveTimers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scheduled)
}

// WaitForTimers waits until the clock has at least n scheduled timers.
func (s *Simulated) WaitForTimers(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	for len(s.scheduled) < n {
		s.cond.Wait()
	}
}

// Now returns the current virtual time.
func (s *Simulated) Now() AbsTime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

// Sleep blocks until the clock has advanced by d.
func (s *Simulated) Sleep(d time.Duration) {
	<-s.After(d)
}

// NewTimer creates a timer that fires when the clock has advanced by d.
func (s *Simulated) NewTimer(d time.Duration) ChanTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	ev := &simTimer{at: s.now.Add(d), c: make(chan AbsTime, 1), s: s}
	s.schedule(ev)
	return ev
}

// After returns a channel that receives the time when the clock has advanced by d.
func (s *Simulated) After(d time.Duration) <-chan AbsTime {
	return s.NewTimer(d).C()
}

// AfterFunc schedules f to run when the clock has advanced by d.
func (s *Simulated) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	ev := &simTimer{at: s.now.Add(d), callback: f, s: s}
	s.schedule(ev)
	return ev
}

func (s *Simulated) schedule(ev *simTimer) {
	heap.Push(&s.scheduled, ev)
	s.cond.Broadcast()
}

func (ev *simTimer) C() <-chan AbsTime {
	return ev.c
}

// Stop cancels the timer. It returns false if the timer has already fired or
// was already stopped.
func (ev *simTimer) Stop() bool {
	s := ev.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.fired {
		return false
	}
	heap.Remove(&s.scheduled, ev.index)
	ev.fired = true
	return true
}

// Reset reschedules the timer to fire after d, relative to the current
// virtual time.
func (ev *simTimer) Reset(d time.Duration) {
	s := ev.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ev.fired {
		heap.Remove(&s.scheduled, ev.index)
	}
	ev.at = s.now.Add(d)
	ev.fired = false
	s.schedule(ev)
}

type simTimerHeap []*simTimer

func (h simTimerHeap) Len() int            { return len(h) }
func (h simTimerHeap) Less(i, j int) bool  { return h[i].at < h[j].at }
func (h simTimerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *simTimerHeap) Push(x interface{}) {
	ev := x.(*simTimer)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *simTimerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*h = old[:n-1]
	return ev
}
