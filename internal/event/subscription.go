package event

import (
	"sync"
	"time"
)

// Subscription represents a stream of events. The carrier of the events is
// typically a channel, but isn't part of the interface.
//
// Subscriptions can fail while established. Failures are reported through an
// error channel. It is closed when a subscription ends permanently.
type Subscription interface {
	Err() <-chan error // returns the error channel
	Unsubscribe()       // cancels sending of events, closing the error channel
}

// NewSubscription runs a producer function as a subscription in a new
// goroutine. The channel given to the producer is closed when Unsubscribe is
// called. If fn returns an error, it is sent on the subscription's error
// channel.
func NewSubscription(producer func(<-chan struct{}) error) Subscription {
	s := &funcSub{unsub: make(chan struct{}), err: make(chan error, 1)}
	go func() {
		defer close(s.err)
		err := producer(s.unsub)
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.unsubscribed {
			if err != nil {
				s.err <- err
			}
			s.unsubscribed = true
		}
	}()
	return s
}

type funcSub struct {
	unsub        chan struct{}
	err          chan error
	mu           sync.Mutex
	unsubscribed bool
}

func (s *funcSub) Unsubscribe() {
	s.mu.Lock()
	if s.unsubscribed {
		s.mu.Unlock()
		return
	}
	s.unsubscribed = true
	close(s.unsub)
	s.mu.Unlock()
	<-s.err
}

func (s *funcSub) Err() <-chan error {
	return s.err
}

// ResubscribeFunc attempts to establish a subscription.
type ResubscribeFunc func(context context) (Subscription, error)

type context = resubscribeContext

// resubscribeContext carries cancellation for a single (re)subscribe attempt.
type resubscribeContext struct {
	done <-chan struct{}
}

// Done returns the resubscribe loop's unsubscribe channel. Unsubscribe sends
// one value on it rather than closing it.
func (c context) Done() <-chan struct{} { return c.done }

// Resubscribe calls fn repeatedly to keep a subscription established. When
// the subscription is established, Resubscribe waits for it to fail and
// calls fn again. This process repeats until Unsubscribe is called or the
// active subscription ends successfully.
//
// Resubscribe applies backoffMax as the maximum time between calls to fn.
func Resubscribe(backoffMax time.Duration, fn ResubscribeFunc) Subscription {
	s := &resubscribeSub{
		waitTime:  backoffMax / 10,
		backoffMax: backoffMax,
		fn:        fn,
		unsub:     make(chan struct{}),
		err:       make(chan error, 1),
	}
	go s.loop()
	return s
}

type resubscribeSub struct {
	fn                  ResubscribeFunc
	waitTime, backoffMax time.Duration

	unsub     chan struct{}
	unsubOnce sync.Once
	err       chan error
}

func (s *resubscribeSub) Unsubscribe() {
	s.unsubOnce.Do(func() {
		s.unsub <- struct{}{}
		<-s.err
	})
}

func (s *resubscribeSub) Err() <-chan error {
	return s.err
}

func (s *resubscribeSub) loop() {
	defer close(s.err)
	var done bool
	for !done {
		var rsub Subscription
		rsub, done = s.subscribe()
		if !done {
			done = s.waitForError(rsub)
		}
	}
}

func (s *resubscribeSub) subscribe() (sub Subscription, done bool) {
	ctx := context{done: s.unsub}
	for {
		rsub, err := s.fn(ctx)
		if err == nil {
			return rsub, false
		}
		select {
		case <-s.unsub:
			return nil, true
		case <-time.After(s.backoff()):
			continue
		}
	}
}

func (s *resubscribeSub) backoff() time.Duration {
	wait := s.waitTime
	if wait == 0 {
		wait = 100 * time.Millisecond
	}
	s.waitTime *= 2
	if s.waitTime > s.backoffMax {
		s.waitTime = s.backoffMax
	}
	return wait
}

func (s *resubscribeSub) waitForError(sub Subscription) bool {
	defer sub.Unsubscribe()
	select {
	case <-s.unsub:
		return true
	case err := <-sub.Err():
		if err != nil {
			s.err <- err
		}
		return err == nil
	}
}
