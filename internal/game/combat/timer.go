package combat

import (
	"sync"
	"time"
)

// RoundTimer fires a callback after a configurable duration unless stopped.
// It is safe for concurrent use.
type RoundTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewRoundTimer creates and starts a timer that calls onFire after duration.
// onFire is called in a separate goroutine.
//
// Precondition: duration > 0; onFire must not be nil.
// Postcondition: Returns a running RoundTimer; onFire will be called unless Stop is called first.
func NewRoundTimer(duration time.Duration, onFire func()) *RoundTimer {
	rt := &RoundTimer{}
	rt.timer = time.AfterFunc(duration, func() {
		rt.mu.Lock()
		stopped := rt.stopped
		rt.mu.Unlock()
		if !stopped {
			onFire()
		}
	})
	return rt
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not be called after Stop returns unless it had already started.
func (rt *RoundTimer) Stop() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.stopped = true
	rt.timer.Stop()
}

// Cancel implements Handle.
func (rt *RoundTimer) Cancel() { rt.Stop() }

// TimerScheduler runs callbacks on their own goroutine after ticks * Tick of
// wall-clock time.
type TimerScheduler struct {
	Tick time.Duration
}

// NewTimerScheduler returns a scheduler whose tick lasts d.
//
// Precondition: d > 0.
func NewTimerScheduler(d time.Duration) *TimerScheduler {
	return &TimerScheduler{Tick: d}
}

// Schedule starts a RoundTimer for ticks ticks. ticks < 1 is treated as 1.
func (s *TimerScheduler) Schedule(ticks int, fn func()) Handle {
	if ticks < 1 {
		ticks = 1
	}
	return NewRoundTimer(time.Duration(ticks)*s.Tick, fn)
}
