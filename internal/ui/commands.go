package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/ui/command"
)

// enqueue schedules req behind any running action. Consecutive edits of the
// same widget collapse into the newest one.
func (m *Model) enqueue(req command.Request) (cmd tea.Cmd, collapsed bool) {
	if !m.running {
		m.running = true
		return m.bus.Execute(req), false
	}
	if n := len(m.queue); n > 0 && req.Edit {
		last := m.queue[n-1]
		if last.Edit && last.ID == req.ID {
			m.queue[n-1] = req
			return nil, true
		}
	}
	m.queue = append(m.queue, req)
	return nil, false
}

func (m *Model) handleCommandResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(command.Result)
	if !ok {
		return nil
	}
	m.running = false
	if result.Edit {
		if f := m.fieldByID(result.ID); f != nil {
			f.EndEdit()
		}
	}
	if result.Err != nil {
		logging.Error(result.Err)
		m.errMsg = result.Err.Error()
		m.forceClearInfo()
	} else if m.verbose && !result.Edit {
		m.setInfo(strings.TrimSpace(result.Label + " " + result.ID))
	}
	if len(m.queue) == 0 {
		return nil
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	m.running = true
	return m.bus.Execute(next)
}

func (m *Model) sendQuery(f *field, key string) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	id, text := f.ID, f.Filter
	m.errMsg = ""
	m.backendLastErr = ""
	cmd, collapsed := m.enqueue(command.Request{
		ID:      id,
		Label:   "query",
		Edit:    true,
		Handler: func() error { return m.ctrl.SetQuery(id, text, key) },
	})
	if !collapsed {
		f.BeginEdit()
	}
	return cmd
}

func (m *Model) runAction(id, label string, fn func() error) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	cmd, _ := m.enqueue(command.Request{ID: id, Label: label, Handler: fn})
	return cmd
}
