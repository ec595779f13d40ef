package utils

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one delayed execution: each
// Trigger resets the timer, and only the last function runs once the delay
// elapses with no new trigger. Cancel stops a pending run; a function that
// already started is not interrupted, so callers guard their own staleness.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the debounce delay, replacing any
// previously scheduled function.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops the pending execution, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
