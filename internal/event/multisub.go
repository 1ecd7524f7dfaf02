package event

import "sync"

// JoinSubscriptions joins multiple subscriptions to be tracked as one
// subscription. If any of the given subscriptions fails with an error, the
// returned subscription fails with that error. Unsubscribing the returned
// subscription unsubscribes all of them.
func JoinSubscriptions(subs ...Subscription) Subscription {
	return NewSubscription(func(unsubbed <-chan struct{}) error {
		j := newMultiSubJoiner(subs...)
		defer j.close()

		select {
		case err := <-j.errors:
			return err
		case <-unsubbed:
			return nil
		}
	})
}

// multiSubJoiner fans the error channels of several subscriptions into one.
// A subscription that closes without sending a value (a plain, non-error
// Unsubscribe) does not propagate anything; only an actual sent error does.
type multiSubJoiner struct {
	errors chan error
	subs   []Subscription
	wg     sync.WaitGroup
}

func newMultiSubJoiner(subs ...Subscription) *multiSubJoiner {
	j := &multiSubJoiner{
		errors: make(chan error, len(subs)),
		subs:   subs,
	}
	j.wg.Add(len(subs))
	for _, s := range subs {
		go func(s Subscription) {
			defer j.wg.Done()
			if err, ok := <-s.Err(); ok {
				j.errors <- err
			}
		}(s)
	}
	return j
}

func (j *multiSubJoiner) close() {
	for _, s := range j.subs {
		s.Unsubscribe()
	}
	j.wg.Wait()
}
