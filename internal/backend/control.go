package backend

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// Runner executes fn on the goroutine that owns the document and waits for
// it. loop.Loop satisfies it.
type Runner interface {
	Run(fn func() error) error
}

// Controller turns front end gestures into document events, the same events
// a browser would deliver.
type Controller struct {
	runner Runner
	engine *autosuggest.Engine
}

// NewController returns a controller driving engine through runner.
func NewController(runner Runner, engine *autosuggest.Engine) *Controller {
	return &Controller{runner: runner, engine: engine}
}

// SetQuery focuses the widget's filter, replaces its text and sends the key
// that produced the edit.
func (c *Controller) SetQuery(id, text, key string) error {
	return c.on(id, func(inst autosuggest.Instance, doc *dom.Document) error {
		doc.Focus(inst.Filter)
		doc.SetValue(inst.Filter, text)
		doc.Dispatch(inst.Filter, dom.KeyEvent("keydown", key))
		doc.Dispatch(inst.Filter, dom.KeyEvent("keyup", key))
		return nil
	})
}

// FocusWidget moves the focus to the widget's filter.
func (c *Controller) FocusWidget(id string) error {
	return c.on(id, func(inst autosuggest.Instance, doc *dom.Document) error {
		doc.Focus(inst.Filter)
		events.UI.Focus(id, "filter")
		return nil
	})
}

// MoveFocus steps through the filter, the suggestion buttons and the
// selection buttons of a widget. It stops at either end.
func (c *Controller) MoveFocus(id string, delta int) error {
	return c.on(id, func(inst autosuggest.Instance, doc *dom.Document) error {
		order := c.focusable(inst, doc)
		current := -1
		for i, n := range order {
			if n == doc.ActiveElement() {
				current = i
				break
			}
		}
		next := current + delta
		if next < 0 {
			next = 0
		}
		if next >= len(order) {
			next = len(order) - 1
		}
		if next < 0 || next == current {
			return nil
		}
		doc.Focus(order[next])
		events.UI.Focus(id, dom.AttrOr(order[next], c.engine.Names().ValueAttr, "filter"))
		return nil
	})
}

// Activate clicks the focused button of the widget, or presses Enter in its
// filter.
func (c *Controller) Activate(id string) error {
	return c.on(id, func(inst autosuggest.Instance, doc *dom.Document) error {
		active := doc.ActiveElement()
		if active != nil && active != inst.Filter && dom.Contains(inst.Wrapper, active) && active.Data == "button" {
			doc.Dispatch(active, dom.NewEvent("click"))
			return nil
		}
		doc.Focus(inst.Filter)
		doc.Dispatch(inst.Filter, dom.KeyEvent("keydown", "Enter"))
		doc.Dispatch(inst.Filter, dom.KeyEvent("keyup", "Enter"))
		return nil
	})
}

// Escape sends Escape to the filter when it has the focus. Focus on a button
// returns to the filter.
func (c *Controller) Escape(id string) error {
	return c.on(id, func(inst autosuggest.Instance, doc *dom.Document) error {
		if doc.ActiveElement() == inst.Filter {
			doc.Dispatch(inst.Filter, dom.KeyEvent("keydown", "Escape"))
			doc.Dispatch(inst.Filter, dom.KeyEvent("keyup", "Escape"))
			return nil
		}
		doc.Focus(inst.Filter)
		return nil
	})
}

// ClickOutside clicks the document body and drops the focus.
func (c *Controller) ClickOutside() error {
	return c.runner.Run(func() error {
		doc := c.engine.Document()
		body := doc.Body()
		if body == nil {
			body = doc.Root()
		}
		if active := doc.ActiveElement(); active != nil {
			doc.Focus(body)
		}
		doc.Dispatch(body, dom.NewEvent("click"))
		return nil
	})
}

// DestroyAll restores every native select.
func (c *Controller) DestroyAll() error {
	return c.runner.Run(func() error {
		return c.engine.Destroy("")
	})
}

// Selections returns the committed values of id.
func (c *Controller) Selections(id string) (value.Values, error) {
	var out value.Values
	err := c.on(id, func(inst autosuggest.Instance, _ *dom.Document) error {
		out = inst.SelectedValues.Clone()
		return nil
	})
	return out, err
}

// Render returns the document as HTML.
func (c *Controller) Render() (string, error) {
	var out string
	err := c.runner.Run(func() error {
		out = c.engine.Document().OuterHTML(nil)
		return nil
	})
	return out, err
}

func (c *Controller) on(id string, fn func(autosuggest.Instance, *dom.Document) error) error {
	return c.runner.Run(func() error {
		inst, ok := c.engine.Instance(id)
		if !ok {
			return fmt.Errorf("widget %s: %w", id, autosuggest.ErrUnknownInstance)
		}
		if inst.Filter == nil {
			return fmt.Errorf("widget %s: %w", id, autosuggest.ErrMissingScaffold)
		}
		return fn(inst, c.engine.Document())
	})
}

func (c *Controller) focusable(inst autosuggest.Instance, doc *dom.Document) []*html.Node {
	names := c.engine.Names()
	order := []*html.Node{inst.Filter}
	if inst.Expanded() && inst.Suggestions != nil {
		if buttons, err := doc.Select(inst.Suggestions, "."+names.SuggestionClass); err == nil {
			order = append(order, buttons...)
		}
	}
	if inst.Selections != nil {
		if buttons, err := doc.Select(inst.Selections, "."+names.SelectionClass); err == nil {
			order = append(order, buttons...)
		}
	}
	return order
}
