package animation

import (
	"sync"
	"time"
)

// Scheduler delivers one value per display frame, like requestAnimationFrame.
type Scheduler interface {
	Frames() <-chan time.Time
	Stop()
}

// TickerScheduler ticks at a fixed rate.
type TickerScheduler struct {
	ticker *time.Ticker
	once   sync.Once
}

func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (s *TickerScheduler) Frames() <-chan time.Time {
	return s.ticker.C
}

func (s *TickerScheduler) Stop() {
	s.once.Do(s.ticker.Stop)
}

// ManualScheduler is fired by a host that owns the display refresh (a game loop).
// Fires that arrive before the previous frame is consumed coalesce into one.
type ManualScheduler struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{ch: make(chan time.Time, 1)}
}

// Fire requests one tick; it never blocks. It reports whether a tick was queued.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	select {
	case s.ch <- time.Now():
		return true
	default:
		return false
	}
}

func (s *ManualScheduler) Frames() <-chan time.Time {
	return s.ch
}

func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}
