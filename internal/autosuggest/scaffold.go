package autosuggest

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
)

// Render runs every render step for id. Steps that find their element
// already in place reuse it, so Render may be called repeatedly.
func (e *Engine) Render(id string) error {
	steps := []func(string) error{
		e.RenderTarget,
		e.RenderWrapper,
		e.RenderFilter,
		e.RenderSuggestions,
		e.RenderSelections,
	}
	for _, step := range steps {
		if err := step(id); err != nil {
			return err
		}
	}
	e.changed(id)
	return nil
}

// RenderTarget hides the native select off-screen while keeping it in the
// accessibility tree.
func (e *Engine) RenderTarget(id string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	dom.SetAttr(inst.Target, "tabindex", "-1")
	dom.SetAttr(inst.Target, "style", hiddenStyle)
	return nil
}

// RenderWrapper moves the target into a wrapper element placed where the
// target was.
func (e *Engine) RenderWrapper(id string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	parent := inst.Target.Parent
	if parent == nil {
		return e.report(fmt.Errorf("unable to wrap %s: %w: target is detached", id, ErrMissingScaffold))
	}
	if dom.HasClass(parent, e.names.WrapperClass) && dom.AttrOr(parent, e.names.WrapperIDAttr, "") == id {
		events.Instance.Render(id, "wrapper", true)
		e.update(id, Update{Wrapper: parent})
		return nil
	}

	wrapper := e.doc.CreateElement("div")
	dom.SetAttr(wrapper, e.names.WrapperIDAttr, id)
	dom.AddClass(wrapper, e.names.WrapperClass)
	dom.InsertAfter(inst.Target, wrapper)
	dom.Append(wrapper, inst.Target)

	events.Instance.Render(id, "wrapper", false)
	e.update(id, Update{Wrapper: wrapper})
	return nil
}

// RenderFilter creates the filter input inside its own wrapper, directly
// after the target.
func (e *Engine) RenderFilter(id string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	if existing := e.marker(inst, e.names.FilterIDAttr, id); existing != nil {
		events.Instance.Render(id, "filter", true)
		e.update(id, Update{Filter: existing, FilterWrapper: existing.Parent})
		return nil
	}
	if inst.Target.Parent == nil {
		return e.report(fmt.Errorf("unable to render filter for %s: %w: target is detached", id, ErrMissingScaffold))
	}

	filter := e.doc.CreateElement("input")
	filterWrapper := e.doc.CreateElement("div")
	dom.AddClass(filterWrapper, e.names.FilterWrapperClass)

	cfg := inst.Settings.Config
	if cfg.FilterName != "" {
		dom.SetAttr(filter, "name", cfg.FilterName)
	}
	dom.SetAttr(filter, e.names.FilterIDAttr, id)
	dom.SetAttr(filter, "autocomplete", "off")
	dom.AddClass(filter, e.names.FilterClass)
	if placeholder := dom.AttrOr(inst.Target, e.names.PlaceholderAttr, cfg.Placeholder); placeholder != "" {
		dom.SetAttr(filter, "placeholder", placeholder)
	}

	dom.Append(filterWrapper, filter)
	dom.InsertAfter(inst.Target, filterWrapper)

	events.Instance.Render(id, "filter", false)
	e.update(id, Update{Filter: filter, FilterWrapper: filterWrapper})
	return nil
}

// RenderSuggestions appends the suggestions container to the filter wrapper.
func (e *Engine) RenderSuggestions(id string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	if existing := e.marker(inst, e.names.SuggestionsIDAttr, id); existing != nil {
		events.Instance.Render(id, "suggestions", true)
		e.update(id, Update{Suggestions: existing})
		return nil
	}
	if inst.FilterWrapper == nil {
		return e.report(fmt.Errorf("unable to render suggestions for %s: %w: filter wrapper", id, ErrMissingScaffold))
	}

	suggestions := e.doc.CreateElement("div")
	dom.SetAttr(suggestions, e.names.SuggestionsIDAttr, id)
	dom.AddClass(suggestions, e.names.SuggestionsClass)
	dom.Append(inst.FilterWrapper, suggestions)

	events.Instance.Render(id, "suggestions", false)
	e.update(id, Update{Suggestions: suggestions})
	return nil
}

// RenderSelections creates the selections container between the target and
// the filter wrapper. Single selects have none.
func (e *Engine) RenderSelections(id string) error {
	inst, err := e.require(id)
	if err != nil {
		return err
	}
	if !inst.Multiple {
		return nil
	}
	if existing := e.marker(inst, e.names.SelectionsIDAttr, id); existing != nil {
		events.Instance.Render(id, "selections", true)
		e.update(id, Update{Selections: existing})
		return nil
	}
	if inst.Target.Parent == nil {
		return e.report(fmt.Errorf("unable to render selections for %s: %w: target is detached", id, ErrMissingScaffold))
	}

	selections := e.doc.CreateElement("div")
	dom.SetAttr(selections, e.names.SelectionsIDAttr, id)
	dom.AddClass(selections, e.names.SelectionsClass)
	dom.InsertAfter(inst.Target, selections)

	events.Instance.Render(id, "selections", false)
	e.update(id, Update{Selections: selections})
	return nil
}

// marker finds a scaffold element for id next to the target.
func (e *Engine) marker(inst Instance, attr, id string) *html.Node {
	if inst.Target.Parent == nil {
		return nil
	}
	found := e.doc.FindByAttr(inst.Target.Parent, attr, id)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// defineForm records the nearest enclosing form.
func (e *Engine) defineForm(id string) {
	inst, ok := e.lookup(id)
	if !ok {
		return
	}
	if form := dom.Closest(inst.Target, "form"); form != nil {
		e.update(id, Update{Form: form})
	}
}

func (e *Engine) require(id string) (Instance, error) {
	inst, ok := e.lookup(id)
	if !ok {
		return Instance{}, e.report(fmt.Errorf("%s: %w", id, ErrUnknownInstance))
	}
	return inst, nil
}
