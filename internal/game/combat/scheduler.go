package combat

import (
	"sort"
	"sync"
)

// Handle cancels a scheduled callback. Cancel is safe to call more than once
// and after the callback ran.
type Handle interface {
	Cancel()
}

// Scheduler defers AI turn resolution. The unit of delay is scheduler-specific:
// frames for TickScheduler, a fixed wall-clock duration for TimerScheduler.
type Scheduler interface {
	Schedule(ticks int, fn func()) Handle
}

type flagHandle struct {
	mu       sync.Mutex
	canceled bool
}

func (h *flagHandle) Cancel() {
	h.mu.Lock()
	h.canceled = true
	h.mu.Unlock()
}

func (h *flagHandle) isCanceled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canceled
}

// ImmediateScheduler runs callbacks without delay on the calling goroutine.
// A callback scheduled from inside another callback is queued and run after
// it returns, so long chains of AI turns do not grow the stack.
type ImmediateScheduler struct {
	mu      sync.Mutex
	running bool
	queue   []immediateTask
}

type immediateTask struct {
	fn     func()
	handle *flagHandle
}

// NewImmediateScheduler returns a scheduler that ignores delays.
func NewImmediateScheduler() *ImmediateScheduler {
	return &ImmediateScheduler{}
}

// Schedule runs fn now, or after the currently running callback returns.
func (s *ImmediateScheduler) Schedule(_ int, fn func()) Handle {
	h := &flagHandle{}
	s.mu.Lock()
	s.queue = append(s.queue, immediateTask{fn: fn, handle: h})
	if s.running {
		s.mu.Unlock()
		return h
	}
	s.running = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.mu.Unlock()
			return h
		}
		t := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		if !t.handle.isCanceled() {
			t.fn()
		}
	}
}

// TickScheduler runs callbacks after a number of Advance ticks, matching a
// frame-driven game loop.
type TickScheduler struct {
	mu    sync.Mutex
	now   int64
	seq   int64
	tasks []tickTask
}

type tickTask struct {
	due    int64
	seq    int64
	fn     func()
	handle *flagHandle
}

// NewTickScheduler returns a scheduler at tick 0.
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{}
}

// Schedule queues fn to run once ticks more ticks have elapsed. ticks < 1 is
// treated as 1.
func (s *TickScheduler) Schedule(ticks int, fn func()) Handle {
	if ticks < 1 {
		ticks = 1
	}
	h := &flagHandle{}
	s.mu.Lock()
	s.seq++
	s.tasks = append(s.tasks, tickTask{due: s.now + int64(ticks), seq: s.seq, fn: fn, handle: h})
	s.mu.Unlock()
	return h
}

// Advance moves time forward n ticks one at a time, running due callbacks in
// scheduling order. Callbacks scheduled during Advance run only once their own
// delay elapses.
//
// Postcondition: returns the number of callbacks run.
func (s *TickScheduler) Advance(n int) int {
	ran := 0
	for i := 0; i < n; i++ {
		s.mu.Lock()
		s.now++
		var due, rest []tickTask
		for _, t := range s.tasks {
			if t.due <= s.now {
				due = append(due, t)
			} else {
				rest = append(rest, t)
			}
		}
		s.tasks = rest
		s.mu.Unlock()

		sort.Slice(due, func(a, b int) bool { return due[a].seq < due[b].seq })
		for _, t := range due {
			if t.handle.isCanceled() {
				continue
			}
			t.fn()
			ran++
		}
	}
	return ran
}

// Pending returns the number of queued callbacks that have not been canceled.
func (s *TickScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.handle.isCanceled() {
			n++
		}
	}
	return n
}
