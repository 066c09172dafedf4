// Package autosuggest upgrades native select elements into filterable
// autosuggest widgets. An Engine owns the registry of enhanced elements, the
// markup it renders around them and the interaction state machine reacting
// to document events.
//
// Every Engine method must run on the goroutine that owns the document,
// normally a loop.Loop. Network requests run on their own goroutines and
// post their results back through the scheduler.
package autosuggest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/loop"
	"github.com/atomicstack/select-autosuggest/internal/remote"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

var (
	ErrUnknownInstance   = errors.New("unknown instance")
	ErrAlreadySubscribed = errors.New("element is already subscribed")
	ErrNoTargets         = errors.New("no elements found")
	ErrMissingScaffold   = errors.New("scaffold element missing")
)

// Fetcher retrieves remote suggestions.
type Fetcher interface {
	Fetch(ctx context.Context, req remote.Request) (value.Values, error)
}

// Engine is the instance registry plus the behaviour attached to it.
type Engine struct {
	doc     *dom.Document
	sched   loop.Scheduler
	fetcher Fetcher
	opts    Options
	names   Names

	byID     map[string]Instance
	byTarget map[*html.Node]string
	timers   map[string]loop.Timer

	tokens    uint64
	newToken  func() string
	render    func(id string) error
	observers []func(id string)

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an engine for doc. A nil fetcher uses remote.NewFetcher(nil).
func New(doc *dom.Document, sched loop.Scheduler, fetcher Fetcher, opts Options) *Engine {
	if fetcher == nil {
		fetcher = remote.NewFetcher(nil)
	}
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		doc:      doc,
		sched:    sched,
		fetcher:  fetcher,
		opts:     opts,
		names:    NewNames(opts.Namespace),
		byID:     make(map[string]Instance),
		byTarget: make(map[*html.Node]string),
		timers:   make(map[string]loop.Timer),
		newToken: randomToken,
		ctx:      ctx,
		cancel:   cancel,
	}
	e.render = e.Render
	return e
}

// Names returns the markers used by this engine.
func (e *Engine) Names() Names { return e.names }

// Document returns the document the engine mutates.
func (e *Engine) Document() *dom.Document { return e.doc }

// OnChange registers fn to run, on the loop, whenever the visible state of an
// instance changes.
func (e *Engine) OnChange(fn func(id string)) {
	e.observers = append(e.observers, fn)
}

// Close destroys every instance and cancels outstanding requests.
func (e *Engine) Close() {
	e.Destroy("")
	e.cancel()
}

// Start enhances every element matching the target selector that is not
// enhanced yet, and returns the ids in document order.
func (e *Engine) Start() ([]string, error) {
	nodes, err := e.doc.Select(nil, e.opts.Target)
	if err != nil {
		return nil, e.report(err)
	}
	var targets []*html.Node
	for _, n := range nodes {
		if !dom.HasAttr(n, e.names.IDAttr) {
			targets = append(targets, n)
		}
	}
	if len(targets) == 0 {
		return nil, e.report(fmt.Errorf("unable to start: %w for %q", ErrNoTargets, e.opts.Target))
	}

	var ids []string
	for _, target := range targets {
		id, err := e.Subscribe(target)
		if err != nil {
			continue
		}
		if err := e.render(id); err != nil {
			// Unwind the partial scaffold; the target is a plain select again.
			e.destroy(e.byID[id])
			continue
		}
		e.fire(OnRenderComplete, id, target, nil)
		e.defineForm(id)
		e.listen(id)
		if e.byID[id].Multiple {
			e.displaySelections(id, false)
		} else {
			e.displaySelection(id)
		}
		e.Collapse(id)
		ids = append(ids, id)
	}
	return ids, nil
}

// Subscribe registers target and captures its options. It does not render.
func (e *Engine) Subscribe(target *html.Node) (string, error) {
	if target == nil || target.Type != html.ElementNode {
		return "", e.report(errors.New("unable to subscribe: target is not an element"))
	}
	if id, ok := e.byTarget[target]; ok {
		return "", e.report(fmt.Errorf("unable to subscribe %s: %w", id, ErrAlreadySubscribed))
	}

	id := e.resolveID(target)
	inst := Instance{
		ID:       id,
		Target:   target,
		Multiple: dom.HasAttr(target, "multiple"),
		Settings: e.resolveSettings(target),
	}
	inst.ctx, inst.cancel = context.WithCancel(e.ctx)

	for _, opt := range e.options(target) {
		val := dom.AttrOr(opt, "value", strings.TrimSpace(dom.Text(opt)))
		label := strings.TrimSpace(dom.Text(opt))
		if label == "" {
			label = val
		}
		pair := value.Pair{Value: val, Label: label}
		if dom.HasAttr(opt, "selected") {
			if inst.Multiple {
				inst.SelectedValues = append(inst.SelectedValues, pair)
			} else {
				inst.SelectedValues = value.Values{pair}
			}
		}
		inst.InitialValue = append(inst.InitialValue, pair)
	}
	inst.SelectedValues = inst.SelectedValues.Union(nil)

	dom.SetAttr(target, e.names.IDAttr, id)
	dom.SetAttr(target, "tabindex", "-1")

	e.byID[id] = inst
	e.byTarget[target] = id
	events.Instance.Subscribe(id, inst.Multiple, len(inst.InitialValue))
	return id, nil
}

// Lookup returns the id registered for target.
func (e *Engine) Lookup(target *html.Node) (string, bool) {
	id, ok := e.byTarget[target]
	return id, ok
}

// Instance returns a copy of the state for id.
func (e *Engine) Instance(id string) (Instance, bool) {
	inst, ok := e.byID[id]
	return inst, ok
}

// IDs returns the registered ids sorted.
func (e *Engine) IDs() []string {
	ids := make([]string, 0, len(e.byID))
	for id := range e.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Destroy restores the native select for id, or for every instance when id
// is empty.
func (e *Engine) Destroy(id string) error {
	if id == "" {
		for _, each := range e.IDs() {
			e.destroy(e.byID[each])
		}
		return nil
	}
	inst, ok := e.byID[id]
	if !ok {
		return e.report(fmt.Errorf("unable to destroy %s: %w", id, ErrUnknownInstance))
	}
	e.destroy(inst)
	return nil
}

func (e *Engine) destroy(inst Instance) {
	id := inst.ID
	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}
	e.cancelRequest(id)
	inst = e.byID[id]
	inst.cancel()

	for _, group := range [][]*dom.Listener{inst.listeners, inst.suggestionHandlers, inst.selectionHandlers} {
		for _, l := range group {
			e.doc.RemoveEventListener(l)
		}
	}

	target := inst.Target
	if inst.Wrapper != nil && dom.Contains(inst.Wrapper, target) {
		dom.InsertBefore(inst.Wrapper, target)
		e.doc.Remove(inst.Wrapper)
	}
	dom.RemoveAttr(target, e.names.IDAttr)
	dom.RemoveAttr(target, "tabindex")
	dom.RemoveAttr(target, "style")
	e.doc.Empty(target)

	for _, p := range inst.SelectedValues {
		opt := newOption(e.doc, p)
		dom.SetAttr(opt, "selected", "selected")
		target.AppendChild(opt)
	}
	for _, p := range inst.InitialValue {
		if len(e.doc.FindByAttr(target, "value", p.Value)) > 0 {
			continue
		}
		target.AppendChild(newOption(e.doc, p))
	}

	e.doc.Dispatch(target, dom.NewEvent("change"))
	e.fire(OnDestroy, id, target, nil)

	delete(e.byID, id)
	delete(e.byTarget, target)
	events.Instance.Destroy(id)
	e.changed(id)
}

func (e *Engine) options(target *html.Node) []*html.Node {
	nodes, err := e.doc.Select(target, "option")
	if err != nil {
		return nil
	}
	return nodes
}

// resolveID keeps an existing identifier when it still points at target
// alone and is not taken by another instance.
func (e *Engine) resolveID(target *html.Node) string {
	for _, attr := range []string{e.names.IDAttr, "id"} {
		candidate, ok := dom.Attr(target, attr)
		if !ok || strings.TrimSpace(candidate) == "" {
			continue
		}
		if _, taken := e.byID[candidate]; taken {
			continue
		}
		matches := e.doc.FindByAttr(nil, attr, candidate)
		if len(matches) == 1 && matches[0] == target {
			return candidate
		}
	}
	id := e.generateID()
	e.log("unable to find existing id, created %s", id)
	return id
}

func (e *Engine) generateID() string {
	for {
		id := e.names.Namespace + "-" + e.newToken()
		if _, taken := e.byID[id]; !taken {
			return id
		}
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func (e *Engine) update(id string, u Update) (Instance, bool) {
	inst, ok := e.byID[id]
	if !ok {
		return Instance{}, false
	}
	next := inst.Apply(u)
	e.byID[id] = next
	return next, true
}

func (e *Engine) lookup(id string) (Instance, bool) {
	inst, ok := e.byID[id]
	return inst, ok
}

func (e *Engine) fire(h Hook, id string, origin *html.Node, props map[string]interface{}) {
	fn, ok := e.opts.Callbacks[h]
	if !ok || fn == nil {
		return
	}
	inst, ok := e.byID[id]
	if !ok {
		return
	}
	fn(HookEvent{
		ID:          id,
		Selections:  inst.SelectedValues.Clone(),
		Suggestions: inst.SuggestedValues.Clone(),
		Query:       e.doc.Value(inst.Filter),
		Context:     origin,
		Props:       props,
	})
}

func (e *Engine) changed(id string) {
	for _, fn := range e.observers {
		fn(id)
	}
}

func (e *Engine) report(err error) error {
	logging.Error(err)
	return err
}

func (e *Engine) log(format string, args ...interface{}) {
	if e.opts.Silent {
		return
	}
	logging.Info(format, args...)
}

func newOption(doc *dom.Document, p value.Pair) *html.Node {
	opt := doc.CreateElement("option")
	dom.SetAttr(opt, "value", p.Value)
	dom.SetText(opt, p.Label)
	return opt
}
