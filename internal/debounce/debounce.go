// Package debounce provides a cancellable, reschedulable timer: only the last
// Trigger inside the window runs.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfter(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Debouncer struct {
	mu    sync.Mutex
	wait  time.Duration
	after AfterFunc
	timer Timer
	gen   uint64
}

func New(wait time.Duration) *Debouncer {
	return NewWithTimer(wait, realAfter)
}

// NewWithTimer lets tests drive time by hand.
func NewWithTimer(wait time.Duration, after AfterFunc) *Debouncer {
	return &Debouncer{wait: wait, after: after}
}

// Trigger (re)schedules f. Any earlier pending call is dropped.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.after(d.wait, func() {
		d.mu.Lock()
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		// a stopped timer may still fire if it raced with Stop
		if current {
			f()
		}
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
