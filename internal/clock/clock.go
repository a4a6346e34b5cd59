// Package clock abstracts wall-clock time and periodic callbacks so timer
// driven state can be tested without waiting.
package clock

import (
	"sync"
	"time"
)

// Stopper cancels a periodic callback.
type Stopper interface {
	// Stop cancels future invocations. It never blocks and may be called
	// more than once.
	Stop()
}

// Clock provides the current time and periodic callbacks.
type Clock interface {
	Now() time.Time

	// Every invokes fn every d until the returned Stopper is stopped.
	// fn runs on a goroutine owned by the clock.
	Every(d time.Duration, fn func()) Stopper
}

// Real is a Clock backed by the time package.
type Real struct{}

// NewReal returns the system clock.
func NewReal() Clock {
	return Real{}
}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) Every(d time.Duration, fn func()) Stopper {
	t := &realTicker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.run(fn)
	return t
}

type realTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *realTicker) run(fn func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			select {
			case <-t.done:
				return
			default:
			}
			fn()
		}
	}
}

func (t *realTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
