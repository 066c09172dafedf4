package backend

import (
	"sync"
	"time"

	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/loop"
)

// Kind represents the type of data emitted by the watcher.
type Kind int

const (
	KindSnapshot Kind = iota
	KindError
)

// Event conveys a fresh snapshot or an error raised while driving the engine.
type Event struct {
	Kind     Kind
	Snapshot Snapshot
	Err      error
}

// Watcher turns engine change notifications into snapshot events. Bursts of
// changes inside one interval collapse into a single snapshot, and a reader
// that falls behind only ever sees the newest one.
type Watcher struct {
	sched    loop.Scheduler
	engine   *autosuggest.Engine
	interval time.Duration

	// loop owned
	pending bool
	stopped bool
	seq     uint64

	events    chan Event
	closeOnce sync.Once
}

// NewWatcher creates a watcher for engine. Call Attach on the loop before
// reading events.
func NewWatcher(sched loop.Scheduler, engine *autosuggest.Engine, interval time.Duration) *Watcher {
	return &Watcher{
		sched:    sched,
		engine:   engine,
		interval: interval,
		events:   make(chan Event, 1),
	}
}

// Attach subscribes to engine changes and focus moves and publishes the current state. It
// must run on the loop.
func (w *Watcher) Attach() {
	w.engine.OnChange(func(string) { w.schedule() })
	doc := w.engine.Document()
	for _, typ := range []string{"focusin", "focusout"} {
		doc.AddEventListener(doc.Root(), typ, func(*dom.Event) { w.schedule() })
	}
	w.publish()
}

// Events returns a channel of snapshot events. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Report forwards err to the reader. It must run on the loop.
func (w *Watcher) Report(err error) {
	if err == nil || w.stopped {
		return
	}
	w.offer(Event{Kind: KindError, Err: err})
}

// Stop closes the event stream. Pending snapshots are discarded.
func (w *Watcher) Stop() {
	shutdown := func() {
		w.stopped = true
		w.closeOnce.Do(func() { close(w.events) })
	}
	if !w.sched.Post(shutdown) {
		shutdown()
	}
}

func (w *Watcher) schedule() {
	if w.pending || w.stopped {
		return
	}
	w.pending = true
	run := func() {
		w.pending = false
		w.publish()
	}
	if w.interval <= 0 {
		w.sched.Post(run)
		return
	}
	w.sched.AfterFunc(w.interval, run)
}

func (w *Watcher) publish() {
	if w.stopped {
		return
	}
	w.seq++
	snap := Capture(w.engine)
	snap.Seq = w.seq
	w.offer(Event{Kind: KindSnapshot, Snapshot: snap})
}

// offer replaces whatever the reader has not picked up yet.
func (w *Watcher) offer(evt Event) {
	for {
		select {
		case w.events <- evt:
			return
		default:
		}
		select {
		case <-w.events:
		default:
		}
	}
}
