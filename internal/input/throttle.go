package input

import (
	"sync"
	"time"
)

// Timer is the cancellable handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Throttle runs at most one callback per interval. A call that arrives while
// the cooldown timer is pending is dropped, not queued; the callback is
// expected to read the live value it needs when it fires.
type Throttle struct {
	clock    Clock
	interval time.Duration

	mu      sync.Mutex
	pending Timer
	stopped bool
}

func NewThrottle(clock Clock, interval time.Duration) *Throttle {
	if clock == nil {
		clock = RealClock{}
	}
	return &Throttle{clock: clock, interval: interval}
}

// Trigger schedules fn after the interval unless a call is already pending.
// It reports whether fn was scheduled.
func (t *Throttle) Trigger(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.pending != nil {
		return false
	}

	var timer Timer
	timer = t.clock.AfterFunc(t.interval, func() {
		t.mu.Lock()
		if t.pending != timer || t.stopped {
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.mu.Unlock()
		fn()
	})
	t.pending = timer
	return true
}

// Pending reports whether a cooldown timer is active.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Stop cancels the pending timer; later Triggers are ignored.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}
