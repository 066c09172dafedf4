package autosuggest

import (
	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/loop"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

type keyClass int

const (
	keyAction keyClass = iota
	keyPassThrough
	keyEscape
)

func classifyKey(key string) keyClass {
	switch key {
	case "Escape", "Esc":
		return keyEscape
	case "Tab", "Shift", "Control", "Alt":
		return keyPassThrough
	}
	return keyAction
}

// listen attaches the document, filter and form listeners for id, replacing
// any registered earlier.
func (e *Engine) listen(id string) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	for _, l := range inst.listeners {
		e.doc.RemoveEventListener(l)
	}
	if inst.Filter == nil {
		e.update(id, Update{listeners: listenerList(nil)})
		return
	}

	listeners := []*dom.Listener{
		e.doc.AddEventListener(e.doc.Root(), "click", func(ev *dom.Event) { e.onClick(id, ev) }),
		e.doc.AddEventListener(inst.Filter, "change", func(ev *dom.Event) { e.onFilter(id, ev) }),
		e.doc.AddEventListener(inst.Filter, "focus", func(ev *dom.Event) { e.onFocus(id, ev) }),
		e.doc.AddEventListener(inst.Filter, "blur", func(ev *dom.Event) { e.onBlur(id, ev) }),
		e.doc.AddEventListener(inst.Filter, "keydown", func(ev *dom.Event) { e.onKeyDown(id, ev) }),
		e.doc.AddEventListener(inst.Filter, "keyup", func(ev *dom.Event) { e.onKeyUp(id, ev) }),
	}
	if inst.Form != nil {
		listeners = append(listeners, e.doc.AddEventListener(inst.Form, "submit", func(ev *dom.Event) { e.onSubmit(id, ev) }))
	}
	e.update(id, Update{listeners: &listeners})
}

func (e *Engine) onClick(id string, ev *dom.Event) {
	inst, ok := e.lookup(id)
	if !ok || ev.Target == nil {
		return
	}
	if dom.Contains(inst.Wrapper, ev.Target) {
		if len(inst.SuggestedValues) > 0 {
			e.displaySuggestions(id, "")
		}
		e.fire(OnClick, id, ev.Target, nil)
		return
	}
	// Only a click on something still in the document may release the
	// collapse guard.
	if e.doc.Contains(ev.Target) {
		inst, _ = e.update(id, Update{PreventCollapse: flag(false)})
	}
	if !inst.PreventCollapse {
		e.Collapse(id)
	}
}

func (e *Engine) onFilter(id string, ev *dom.Event) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	live := e.doc.Value(inst.Filter)
	if cached := dom.AttrOr(inst.Filter, e.names.CachedValueAttr, ""); cached != "" && cached == live {
		return
	}
	if inst.PreventFilter {
		return
	}
	origin := ev.Target
	e.handleFilter(id, live, func(results value.Values) {
		current, ok := e.lookup(id)
		if !ok {
			return
		}
		query := e.doc.Value(current.Filter)
		pool := FilterValues(current.InitialValue, query, results, current.Settings.Config.Match)
		e.update(id, Update{Candidates: values(pool)})
		events.Filter.Pass(id, query, len(pool))
		e.displaySuggestions(id, "")
		e.fire(OnFilter, id, origin, nil)
	})
}

// onFocus reveals the local pool when the filter is focused while empty.
func (e *Engine) onFocus(id string, ev *dom.Event) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	if e.doc.Value(inst.Filter) == "" {
		pool := FilterValues(inst.InitialValue, "", nil, inst.Settings.Config.Match)
		e.update(id, Update{Candidates: values(pool)})
		e.displaySuggestions(id, "")
	}
	e.fire(OnFocus, id, ev.Target, nil)
}

func (e *Engine) onBlur(id string, ev *dom.Event) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	if ev.RelatedTarget != nil && !dom.Contains(inst.Wrapper, ev.RelatedTarget) {
		e.Collapse(id)
	}
	e.fire(OnBlur, id, ev.Target, nil)
}

func (e *Engine) onKeyDown(id string, ev *dom.Event) {
	if _, ok := e.lookup(id); !ok {
		return
	}
	if classifyKey(ev.Key) == keyAction && ev.Key == "Enter" {
		ev.PreventDefault()
		e.update(id, Update{PreventSubmit: flag(true)})
	}
	e.fire(OnKeyDown, id, ev.Target, nil)
}

func (e *Engine) onKeyUp(id string, ev *dom.Event) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	switch classifyKey(ev.Key) {
	case keyEscape:
		e.doc.Blur(inst.Filter)
		return
	case keyPassThrough:
		return
	}

	live := e.doc.Value(inst.Filter)
	if live == "" && !inst.Multiple && len(inst.SelectedValues) > 0 {
		e.Deselect(id, nil)
	}

	if ev.Key == "Enter" {
		ev.PreventDefault()
		if live != "" {
			e.cancelRequest(id)
			e.doc.Dispatch(inst.Filter, dom.NewEvent("change"))
			e.Select(id, -1, "")
		}
		e.update(id, Update{PreventSubmit: flag(false)})
		return
	}

	origin := ev.Target
	e.debounce(id, func() {
		current, ok := e.lookup(id)
		if !ok {
			return
		}
		live := e.doc.Value(current.Filter)
		cached := dom.AttrOr(current.Filter, e.names.CachedValueAttr, "")
		events.Filter.Debounce(id, live)
		if (cached == "" && live != "") || (cached != "" && cached != live) {
			e.cancelRequest(id)
			e.doc.Dispatch(current.Filter, dom.NewEvent("change"))
		}
		if current, ok = e.lookup(id); !ok {
			return
		}
		dom.SetAttr(current.Filter, e.names.CachedValueAttr, live)
		e.fire(OnKeyUp, id, origin, nil)
	})
}

func (e *Engine) onSubmit(id string, ev *dom.Event) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	if inst.PreventSubmit {
		ev.PreventDefault()
	}
	e.fire(OnSubmit, id, ev.Target, nil)
}

// debounce runs fn after the configured delay. Re-arming for the same id
// stops the pending timer first, so the last keystroke wins.
func (e *Engine) debounce(id string, fn func()) {
	if t, ok := e.timers[id]; ok {
		t.Stop()
	}
	var timer loop.Timer
	timer = e.sched.AfterFunc(e.opts.Delay, func() {
		if current, ok := e.timers[id]; ok && current == timer {
			delete(e.timers, id)
		}
		fn()
	})
	e.timers[id] = timer
}

// validateCollapse guards the panel from outside-click collapse while any
// candidate is still unselected. Values compare ignoring case.
func (e *Engine) validateCollapse(id string) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	leftover := false
	for _, p := range inst.Candidates {
		if !inst.SelectedValues.ContainsFold(p.Value) {
			leftover = true
			break
		}
	}
	e.update(id, Update{PreventCollapse: flag(leftover)})
}

// Expand opens the suggestion panel. It does nothing without suggestions.
func (e *Engine) Expand(id string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	if len(inst.SuggestedValues) == 0 || inst.Wrapper == nil {
		return nil
	}
	dom.RemoveAttr(inst.Wrapper, "aria-collapsed")
	dom.SetAttr(inst.Wrapper, "aria-expanded", "true")
	events.Instance.Expand(id, len(inst.SuggestedValues))
	e.changed(id)
	return nil
}

// Collapse closes the suggestion panel.
func (e *Engine) Collapse(id string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	if inst.Wrapper == nil {
		return nil
	}
	dom.SetAttr(inst.Wrapper, "aria-collapsed", "true")
	dom.SetAttr(inst.Wrapper, "aria-expanded", "false")
	events.Instance.Collapse(id)
	e.changed(id)
	return nil
}
