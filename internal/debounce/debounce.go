// Package debounce delays propagation of a rapidly-changing value
// until it has been stable for a fixed interval.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the standard settle interval for search input.
const DefaultDelay = 500 * time.Millisecond

// Debouncer propagates the most recent value passed to Set to fn once
// no newer value has arrived for the configured delay. Every Set
// restarts the timer and cancels the pending propagation; a stopped
// debouncer never fires again.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New creates a debouncer with the given delay. A non-positive delay
// falls back to DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Set schedules v for propagation, superseding any pending value.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fn(v)
		}
	})
}

// Cancel drops any pending propagation without disabling the
// debouncer; the next Set schedules normally.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels any pending propagation and prevents future ones.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
