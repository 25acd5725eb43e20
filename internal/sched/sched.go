// Package sched provides cancellable delayed and repeating tasks.
//
// Timer lifecycles in murmur (filler announcements, connection polls,
// the health ping) are owned through Handles rather than raw timers so
// that cancellation is a first-class operation.
package sched

import (
	"sync"
	"time"
)

// Handle owns one scheduled task. Stop is idempotent and safe on a nil
// receiver, so callers can stop handles they never armed.
type Handle struct {
	mu      sync.Mutex
	stopped bool
	timer   *time.Timer
	ticker  *time.Ticker
	done    chan struct{}
}

// Stop cancels the task. Once Stop returns, the callback will not run
// again (a callback already executing is allowed to finish).
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	if h.timer != nil {
		h.timer.Stop()
	}
	if h.ticker != nil {
		h.ticker.Stop()
	}
	if h.done != nil {
		close(h.done)
	}
}

// Active reports whether the handle has not been stopped.
func (h *Handle) Active() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.stopped
}

// Delayed arms fn to run once after d.
func Delayed(d time.Duration, fn func()) *Handle {
	h := &Handle{}
	h.timer = time.AfterFunc(d, func() {
		if h.Active() {
			fn()
		}
	})
	return h
}

// Repeating arms fn to run every d until the handle is stopped.
func Repeating(d time.Duration, fn func()) *Handle {
	h := &Handle{done: make(chan struct{})}
	h.ticker = time.NewTicker(d)
	go func() {
		for {
			select {
			case <-h.done:
				return
			case <-h.ticker.C:
				if h.Active() {
					fn()
				}
			}
		}
	}()
	return h
}
