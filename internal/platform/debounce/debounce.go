package debounce

import (
	"sync"
	"time"
)

// Debouncer runs only the most recently scheduled function once the window
// has passed without a newer call. Each Schedule cancels the pending timer.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
}

func New(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
}

// Stop drops the pending function without running it and reports whether
// one was pending.
func (d *Debouncer) Stop() bool {
	return d.take(0) != nil
}

func (d *Debouncer) fire(gen uint64) {
	if fn := d.take(gen); fn != nil {
		fn()
	}
}

// take claims the pending function. A non-zero gen only matches the timer
// that scheduled it, so a stale timer that lost the race to Stop is a no-op.
func (d *Debouncer) take(gen uint64) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != 0 && gen != d.gen {
		return nil
	}
	fn := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return fn
}
