package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/atomicstack/select-autosuggest/internal/loop"
)

// ManualScheduler is a loop.Scheduler driven by the test goroutine. Posted
// jobs queue until Flush, and timers fire only when Advance moves the clock
// past their deadline. Post may be called from any goroutine.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	jobs   []func()
	timers []*manualTimer
	posted chan struct{}
}

type manualTimer struct {
	s   *ManualScheduler
	at  time.Duration
	seq int
	fn  func()

	fired   bool
	stopped bool
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{posted: make(chan struct{}, 1)}
}

// Post queues fn for the next Flush.
func (s *ManualScheduler) Post(fn func()) bool {
	s.mu.Lock()
	s.jobs = append(s.jobs, fn)
	s.mu.Unlock()
	select {
	case s.posted <- struct{}{}:
	default:
	}
	return true
}

// AfterFunc arms a timer relative to the manual clock.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) loop.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Flush runs queued jobs, including jobs queued while flushing, and returns
// how many ran.
func (s *ManualScheduler) Flush() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.jobs) == 0 {
			s.mu.Unlock()
			return ran
		}
		job := s.jobs[0]
		s.jobs = s.jobs[1:]
		s.mu.Unlock()
		job()
		ran++
	}
}

// Advance moves the clock forward by d, firing due timers in deadline order
// and flushing posted jobs after each one.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	s.Flush()
	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		if next.at > s.now {
			s.now = next.at
		}
		s.mu.Unlock()
		next.fn()
		s.Flush()
	}
}

func (s *ManualScheduler) nextDueLocked(limit time.Duration) *manualTimer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at == s.timers[j].at {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].at < s.timers[j].at
	})
	if len(s.timers) == 0 || s.timers[0].at > limit {
		return nil
	}
	return s.timers[0]
}

// Armed returns the number of timers that have neither fired nor stopped.
func (s *ManualScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// WaitForPost blocks until a job is queued or the timeout elapses.
func (s *ManualScheduler) WaitForPost(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		s.mu.Lock()
		queued := len(s.jobs) > 0
		s.mu.Unlock()
		if queued {
			return true
		}
		select {
		case <-s.posted:
		case <-deadline:
			return false
		}
	}
}
