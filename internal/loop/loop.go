// Package loop serialises every document mutation onto one goroutine. It is a
// thin wrapper around the goja_nodejs event loop: jobs posted from fetch
// goroutines and timers both run on the loop, never concurrently.
package loop

import (
	"errors"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
)

// ErrStopped is returned when work is submitted after Stop.
var ErrStopped = errors.New("event loop not running")

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented it
	// from running.
	Stop() bool
}

// Scheduler is what the engine needs from a loop: a way to run work on the
// owning goroutine now or later.
type Scheduler interface {
	Post(fn func()) bool
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is a started event loop.
type Loop struct {
	el *eventloop.EventLoop

	mu      sync.RWMutex
	stopped bool
}

// New starts a loop in a background goroutine. Call Stop to release it.
func New() *Loop {
	el := eventloop.NewEventLoop(
		eventloop.WithRegistry(require.NewRegistry()),
		eventloop.EnableConsole(false),
	)
	el.Start()
	return &Loop{el: el}
}

// Post queues fn. It returns false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return false
	}
	return l.el.RunOnLoop(func(*goja.Runtime) { fn() })
}

// Run queues fn and waits for it to return.
func (l *Loop) Run(fn func() error) error {
	errCh := make(chan error, 1)
	if !l.Post(func() { errCh <- fn() }) {
		return ErrStopped
	}
	return <-errCh
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &timer{loop: l}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		t.done = true
		return t
	}
	t.handle = l.el.SetTimeout(func(*goja.Runtime) {
		t.mu.Lock()
		if t.done {
			t.mu.Unlock()
			return
		}
		t.done = true
		t.mu.Unlock()
		fn()
	}, d)
	return t
}

// Stop halts the loop. Pending jobs and timers are dropped. It must not be
// called from a job running on the loop.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()
	l.el.Stop()
}

type timer struct {
	loop   *Loop
	handle *eventloop.Timer

	mu   sync.Mutex
	done bool
}

func (t *timer) Stop() bool {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return false
	}
	t.done = true
	t.mu.Unlock()
	if t.handle != nil {
		t.loop.el.ClearTimeout(t.handle)
	}
	return true
}
