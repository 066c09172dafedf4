package backend

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// Focus says which part of a widget holds the document focus.
type Focus int

const (
	FocusNone Focus = iota
	FocusFilter
	FocusSuggestion
	FocusSelection
)

// Widget is the rendered state of one enhanced select.
type Widget struct {
	ID          string
	Name        string
	Multiple    bool
	Query       string
	Placeholder string
	Suggestions value.Values
	Selections  value.Values
	Expanded    bool
	Busy        bool
	Focus       Focus
	FocusIndex  int
}

// Option is one option of a plain select.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Native is a select element that is not enhanced, for example after its
// widget was destroyed.
type Native struct {
	Name     string
	Multiple bool
	Options  []Option
}

// Snapshot is the document as the terminal front end shows it.
type Snapshot struct {
	Seq     uint64
	Widgets []Widget
	Natives []Native
}

// Widget returns the widget with id.
func (s Snapshot) Widget(id string) (Widget, bool) {
	for _, w := range s.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// Capture reads the engine's document in document order. It must run on the
// loop.
func Capture(engine *autosuggest.Engine) Snapshot {
	doc := engine.Document()
	names := engine.Names()
	selects, err := doc.Select(nil, "select")
	if err != nil {
		return Snapshot{}
	}

	var snap Snapshot
	active := doc.ActiveElement()
	for _, target := range selects {
		id, ok := engine.Lookup(target)
		if !ok {
			snap.Natives = append(snap.Natives, captureNative(doc, target))
			continue
		}
		inst, ok := engine.Instance(id)
		if !ok {
			continue
		}
		w := Widget{
			ID:          id,
			Name:        displayName(target, id),
			Multiple:    inst.Multiple,
			Query:       doc.Value(inst.Filter),
			Placeholder: dom.AttrOr(inst.Filter, "placeholder", ""),
			Suggestions: inst.SuggestedValues.Clone(),
			Selections:  inst.SelectedValues.Clone(),
			Expanded:    inst.Expanded(),
			Busy:        inst.Busy(),
			FocusIndex:  -1,
		}
		switch {
		case active == nil:
		case active == inst.Filter:
			w.Focus = FocusFilter
		case inst.Suggestions != nil && dom.Contains(inst.Suggestions, active):
			w.Focus = FocusSuggestion
			w.FocusIndex = buttonIndex(doc, inst.Suggestions, names.SuggestionClass, active)
		case inst.Selections != nil && dom.Contains(inst.Selections, active):
			w.Focus = FocusSelection
			w.FocusIndex = buttonIndex(doc, inst.Selections, names.SelectionClass, active)
		}
		snap.Widgets = append(snap.Widgets, w)
	}
	return snap
}

func captureNative(doc *dom.Document, target *html.Node) Native {
	n := Native{
		Name:     displayName(target, ""),
		Multiple: dom.HasAttr(target, "multiple"),
	}
	opts, err := doc.Select(target, "option")
	if err != nil {
		return n
	}
	for _, opt := range opts {
		label := strings.TrimSpace(dom.Text(opt))
		n.Options = append(n.Options, Option{
			Value:    dom.AttrOr(opt, "value", label),
			Label:    label,
			Selected: dom.HasAttr(opt, "selected"),
		})
	}
	return n
}

func displayName(target *html.Node, fallback string) string {
	for _, attr := range []string{"aria-label", "name", "id"} {
		if v := strings.TrimSpace(dom.AttrOr(target, attr, "")); v != "" {
			return v
		}
	}
	return fallback
}

func buttonIndex(doc *dom.Document, container *html.Node, class string, active *html.Node) int {
	buttons, err := doc.Select(container, "."+class)
	if err != nil {
		return -1
	}
	for i, b := range buttons {
		if b == active {
			return i
		}
	}
	return -1
}
