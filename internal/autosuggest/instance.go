package autosuggest

import (
	"context"

	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// Settings are the per-element values resolved once at subscribe time from
// the global options and the element's override attributes.
type Settings struct {
	Endpoint string
	Config   Config
}

// Instance is the state bundle of one enhanced select. The registry stores
// instances by value and replaces them through Apply.
type Instance struct {
	ID       string
	Target   *html.Node
	Multiple bool
	Settings Settings

	InitialValue    value.Values
	SelectedValues  value.Values
	SuggestedValues value.Values
	// Candidates is the pool produced by the last filter pass, before the
	// selected entries are removed and the display cap applies.
	Candidates value.Values

	PreventFilter   bool
	PreventCollapse bool
	PreventSubmit   bool

	Wrapper       *html.Node
	FilterWrapper *html.Node
	Filter        *html.Node
	Suggestions   *html.Node
	Selections    *html.Node
	Form          *html.Node

	listeners          []*dom.Listener
	suggestionHandlers []*dom.Listener
	selectionHandlers  []*dom.Listener
	request            requestState

	ctx    context.Context
	cancel context.CancelFunc
}

type requestState struct {
	token  uint64
	cancel context.CancelFunc
}

// Update is a partial change to an Instance. Nil fields are left alone.
type Update struct {
	SelectedValues  *value.Values
	SuggestedValues *value.Values
	Candidates      *value.Values

	PreventFilter   *bool
	PreventCollapse *bool
	PreventSubmit   *bool

	Wrapper       *html.Node
	FilterWrapper *html.Node
	Filter        *html.Node
	Suggestions   *html.Node
	Selections    *html.Node
	Form          *html.Node

	listeners          *[]*dom.Listener
	suggestionHandlers *[]*dom.Listener
	selectionHandlers  *[]*dom.Listener
	request            *requestState
}

// Apply returns a copy of i with u applied.
func (i Instance) Apply(u Update) Instance {
	next := i
	if u.SelectedValues != nil {
		next.SelectedValues = u.SelectedValues.Clone()
	}
	if u.SuggestedValues != nil {
		next.SuggestedValues = u.SuggestedValues.Clone()
	}
	if u.Candidates != nil {
		next.Candidates = u.Candidates.Clone()
	}
	if u.PreventFilter != nil {
		next.PreventFilter = *u.PreventFilter
	}
	if u.PreventCollapse != nil {
		next.PreventCollapse = *u.PreventCollapse
	}
	if u.PreventSubmit != nil {
		next.PreventSubmit = *u.PreventSubmit
	}
	if u.Wrapper != nil {
		next.Wrapper = u.Wrapper
	}
	if u.FilterWrapper != nil {
		next.FilterWrapper = u.FilterWrapper
	}
	if u.Filter != nil {
		next.Filter = u.Filter
	}
	if u.Suggestions != nil {
		next.Suggestions = u.Suggestions
	}
	if u.Selections != nil {
		next.Selections = u.Selections
	}
	if u.Form != nil {
		next.Form = u.Form
	}
	if u.listeners != nil {
		next.listeners = *u.listeners
	}
	if u.suggestionHandlers != nil {
		next.suggestionHandlers = *u.suggestionHandlers
	}
	if u.selectionHandlers != nil {
		next.selectionHandlers = *u.selectionHandlers
	}
	if u.request != nil {
		next.request = *u.request
	}
	return next
}

// Busy reports whether the wrapper carries the busy marker.
func (i Instance) Busy() bool {
	return dom.HasAttr(i.Wrapper, "aria-busy")
}

// Expanded reports whether the suggestion panel is open.
func (i Instance) Expanded() bool {
	return i.Wrapper != nil && !dom.HasAttr(i.Wrapper, "aria-collapsed")
}

func flag(b bool) *bool { return &b }

func values(v value.Values) *value.Values { return &v }

func listenerList(l []*dom.Listener) *[]*dom.Listener { return &l }
