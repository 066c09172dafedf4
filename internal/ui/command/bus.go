// Package command runs document actions off the Bubble Tea update loop.
package command

import (
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Request encapsulates an action invocation against one widget.
type Request struct {
	ID    string
	Label string
	// Edit marks requests that change the filter text.
	Edit    bool
	Handler func() error
}

// Result is delivered to the model once the action finished.
type Result struct {
	ID    string
	Label string
	Edit  bool
	Err   error
}

// Bus coordinates the execution of document actions.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute wraps an action into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		var err error
		if req.Handler != nil {
			err = req.Handler()
		}
		events.Command.Result(req.ID, req.Label, err)
		return Result{ID: req.ID, Label: req.Label, Edit: req.Edit, Err: err}
	}
}
