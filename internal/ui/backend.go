package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/select-autosuggest/internal/backend"
	uistate "github.com/atomicstack/select-autosuggest/internal/ui/state"
)

func waitForBackendEvent(src EventSource) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-src.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	switch evt.Kind {
	case backend.KindError:
		if evt.Err != nil {
			m.backendLastErr = evt.Err.Error()
		}
	case backend.KindSnapshot:
		m.applySnapshot(evt.Snapshot)
	}
}

// applySnapshot reconciles the fields with the document. Widgets keep their
// local filter state across snapshots; the active widget follows the
// document focus when any widget holds it.
func (m *Model) applySnapshot(s backend.Snapshot) {
	if m.synced && s.Seq != 0 && s.Seq <= m.seq {
		return
	}
	m.synced = true
	m.seq = s.Seq

	var activeID string
	if f := m.activeField(); f != nil {
		activeID = f.ID
	}

	fields := make([]*field, 0, len(s.Widgets))
	m.active = -1
	for i, w := range s.Widgets {
		f := m.fieldByID(w.ID)
		if f == nil {
			f = uistate.NewField(w)
		} else {
			f.Sync(w)
		}
		fields = append(fields, f)
		if w.ID == activeID && m.active < 0 {
			m.active = i
		}
	}
	for i, f := range fields {
		if f.Focused() {
			m.active = i
			break
		}
	}
	if m.active < 0 && len(fields) > 0 {
		m.active = 0
	}
	m.fields = fields
	m.natives = s.Natives
	m.syncViewports()
}

func (m *Model) syncViewports() {
	max := m.maxVisibleSuggestions()
	for _, f := range m.fields {
		f.EnsureCursorVisible(max)
	}
}
