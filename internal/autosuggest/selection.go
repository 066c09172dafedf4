package autosuggest

import (
	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// Select commits the suggestion at index, or the first suggestion when index
// is out of range. echo names the value whose list position should keep the
// keyboard focus after the suggestions are re-rendered.
func (e *Engine) Select(id string, index int, echo string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	if len(inst.SuggestedValues) == 0 {
		e.log("nothing to select for %s", id)
		return nil
	}
	if index < 0 || index >= len(inst.SuggestedValues) {
		index = 0
	}
	picked := inst.SuggestedValues[index]

	var selected value.Values
	if inst.Multiple {
		selected = inst.SelectedValues.Prepend(picked)
	} else {
		selected = value.Values{picked}
	}
	e.update(id, Update{SelectedValues: values(selected)})
	events.Selection.Select(id, picked.Value)
	e.fire(OnSelect, id, inst.Target, map[string]interface{}{"selectedValue": picked})

	e.syncTarget(id)
	if inst.Multiple {
		e.displaySelections(id, false)
	} else {
		e.displaySelection(id)
	}
	e.displaySuggestions(id, echo)
	return nil
}

// Deselect removes selection, or every selection when it is nil, and closes
// the suggestion panel.
func (e *Engine) Deselect(id string, selection *value.Pair) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	if len(inst.SelectedValues) == 0 {
		return nil
	}
	if selection == nil {
		for _, p := range inst.SelectedValues.Clone() {
			p := p
			if err := e.Deselect(id, &p); err != nil {
				return err
			}
		}
		return nil
	}

	remaining := inst.SelectedValues.Without(selection.Value)
	e.update(id, Update{SelectedValues: values(remaining)})
	events.Selection.Deselect(id, selection.Value)

	e.syncTarget(id)
	if inst.Multiple {
		e.displaySelections(id, true)
	} else {
		e.displaySelection(id)
	}
	e.displaySuggestions(id, "")
	e.Collapse(id)
	e.fire(OnDeselect, id, inst.Target, map[string]interface{}{"removedValue": *selection})
	return nil
}

// syncTarget rewrites the native options to exactly the selected set and
// notifies listeners of the target once.
func (e *Engine) syncTarget(id string) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	e.doc.Empty(inst.Target)
	for _, p := range inst.SelectedValues {
		opt := newOption(e.doc, p)
		dom.SetAttr(opt, "selected", "selected")
		inst.Target.AppendChild(opt)
	}
	events.Selection.Sync(id, inst.SelectedValues.Strings())
	e.doc.Dispatch(inst.Target, dom.NewEvent("change"))
}

// displaySuggestions renders the candidates that are not selected yet, capped
// by maxSuggestions, and opens or closes the panel accordingly.
func (e *Engine) displaySuggestions(id, echo string) {
	e.validateCollapse(id)
	inst, ok := e.lookup(id)
	if !ok || inst.Suggestions == nil {
		return
	}

	hint := -1
	if echo != "" {
		hint = inst.SuggestedValues.Index(echo)
	}
	suggested := inst.Candidates.Exclude(inst.SelectedValues).Limit(inst.Settings.Config.MaxSuggestions)
	inst, _ = e.update(id, Update{SuggestedValues: values(suggested)})

	for _, l := range inst.suggestionHandlers {
		e.doc.RemoveEventListener(l)
	}
	e.doc.Empty(inst.Suggestions)

	var handlers []*dom.Listener
	var buttons []*html.Node
	if len(suggested) > 0 {
		list := e.doc.CreateElement("div")
		dom.AddClass(list, e.names.SuggestionsListClass)
		for index, p := range suggested {
			index, p := index, p
			button := e.entryButton(e.names.SuggestionClass, p)
			handlers = append(handlers,
				e.doc.AddEventListener(button, "click", func(ev *dom.Event) {
					ev.PreventDefault()
					e.Select(id, index, p.Value)
				}),
				e.doc.AddEventListener(button, "blur", func(ev *dom.Event) { e.onBlur(id, ev) }),
			)
			dom.Append(list, button)
			buttons = append(buttons, button)
		}
		dom.Append(inst.Suggestions, list)
	}
	e.update(id, Update{suggestionHandlers: listenerList(handlers)})

	if len(buttons) == 0 {
		e.Collapse(id)
	} else {
		e.Expand(id)
	}

	if hint >= 0 && len(buttons) > 0 {
		next := hint - 1
		if next < 0 {
			next = 0
		}
		if next >= len(buttons) {
			next = len(buttons) - 1
		}
		e.doc.Focus(buttons[next])
	}

	e.fire(OnDisplaySuggestions, id, inst.Target, nil)
	e.changed(id)
}

// displaySelections renders one button per selection for multi selects.
func (e *Engine) displaySelections(id string, keepFocus bool) {
	inst, ok := e.lookup(id)
	if !ok || inst.Selections == nil {
		return
	}
	for _, l := range inst.selectionHandlers {
		e.doc.RemoveEventListener(l)
	}
	e.doc.Empty(inst.Selections)

	var handlers []*dom.Listener
	var first *html.Node
	if len(inst.SelectedValues) > 0 {
		list := e.doc.CreateElement("div")
		dom.AddClass(list, e.names.SelectionsListClass)
		for _, p := range inst.SelectedValues {
			p := p
			button := e.entryButton(e.names.SelectionClass, p)
			handlers = append(handlers,
				e.doc.AddEventListener(button, "click", func(ev *dom.Event) {
					ev.PreventDefault()
					e.Deselect(id, &p)
				}),
				e.doc.AddEventListener(button, "blur", func(ev *dom.Event) { e.onBlur(id, ev) }),
			)
			dom.Append(list, button)
			if first == nil {
				first = button
			}
		}
		dom.Append(inst.Selections, list)
	}
	e.update(id, Update{selectionHandlers: listenerList(handlers)})

	if keepFocus && first != nil {
		e.doc.Focus(first)
	}
	e.fire(OnDisplaySelections, id, inst.Target, nil)
	e.changed(id)
}

// displaySelection echoes the single selection's label into the filter
// without triggering a filter pass.
func (e *Engine) displaySelection(id string) {
	inst, ok := e.lookup(id)
	if !ok || inst.Filter == nil {
		return
	}
	if len(inst.SelectedValues) == 0 {
		return
	}
	e.update(id, Update{PreventFilter: flag(true)})
	e.doc.SetValue(inst.Filter, inst.SelectedValues[0].Label)
	e.update(id, Update{PreventFilter: flag(inst.PreventFilter)})

	e.fire(OnDisplaySelection, id, inst.Target, nil)
	e.changed(id)
}

func (e *Engine) entryButton(class string, p value.Pair) *html.Node {
	button := e.doc.CreateElement("button")
	dom.SetAttr(button, "type", "button")
	dom.AddClass(button, class)
	dom.SetAttr(button, e.names.ValueAttr, p.Value)
	dom.SetText(button, p.Label)
	return button
}
