// Package debounce delays a changing value until it has been stable for a fixed delay.
package debounce

import (
	"sync"
	"time"
)

// Debouncer commits the latest value once no new value arrived for delay.
// A value superseded before its timer fires is never committed.
type Debouncer[T any] struct {
	delay  time.Duration
	commit func(T)

	mu        sync.Mutex
	timer     *time.Timer
	gen       uint64
	pending   bool
	latest    T
	committed T
}

// New returns a Debouncer calling commit from its own goroutine. commit may be nil
// when only Value is read.
func New[T any](delay time.Duration, commit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, commit: commit}
}

// Set records v and restarts the delay.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.latest = v
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// Stop can lose the race with an expiring timer; the generation settles it.
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()

	if d.commit != nil {
		d.commit(v)
	}
}

// take must be called with mu held.
func (d *Debouncer[T]) take() T {
	v := d.latest
	d.pending = false
	d.committed = v
	d.timer = nil
	return v
}

// Flush commits a pending value immediately. It reports whether one was pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	v := d.take()
	d.mu.Unlock()

	if d.commit != nil {
		d.commit(v)
	}
	return true
}

// Stop drops a pending value without committing it.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
}

// Pending reports whether a commit is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Value returns the last committed value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}
