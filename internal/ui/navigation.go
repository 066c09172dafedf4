package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/select-autosuggest/internal/backend"
	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	current := m.activeField()
	events.UI.Key(keyMsg.String(), focusName(current))
	switch keyMsg.String() {
	case "ctrl+c":
		return m.quit()
	case "tab":
		return m.cycleWidget(1)
	case "shift+tab":
		return m.cycleWidget(-1)
	case "esc":
		return m.handleEscapeKey()
	case "ctrl+o":
		return m.runAction("", "click-outside", func() error { return m.ctrl.ClickOutside() })
	case "ctrl+d":
		return m.runAction("", "destroy", func() error { return m.ctrl.DestroyAll() })
	case "ctrl+y":
		return m.copySelections()
	}
	if current == nil {
		return nil
	}
	id := current.ID
	switch keyMsg.String() {
	case "enter":
		return m.runAction(id, "activate", func() error { return m.ctrl.Activate(id) })
	case "up":
		return m.moveFocus(id, -1)
	case "down":
		return m.moveFocus(id, 1)
	case "pgup":
		return m.moveFocus(id, -m.pageSize())
	case "pgdown":
		return m.moveFocus(id, m.pageSize())
	}
	if _, cmd := m.handleTextInput(keyMsg); cmd != nil {
		return cmd
	}
	return nil
}

func focusName(f *field) string {
	if f == nil {
		return ""
	}
	switch f.Focus {
	case backend.FocusFilter:
		return f.ID + ":filter"
	case backend.FocusSuggestion:
		return fmt.Sprintf("%s:suggestion:%d", f.ID, f.Cursor)
	case backend.FocusSelection:
		return f.ID + ":selection"
	}
	return f.ID
}

func (m *Model) moveFocus(id string, delta int) tea.Cmd {
	return m.runAction(id, "move-focus", func() error { return m.ctrl.MoveFocus(id, delta) })
}

func (m *Model) pageSize() int {
	if size := m.maxVisibleSuggestions(); size > 0 {
		return size
	}
	return 1
}

// cycleWidget makes the next widget active and moves the document focus to
// its filter.
func (m *Model) cycleWidget(delta int) tea.Cmd {
	n := len(m.fields)
	if n == 0 {
		return nil
	}
	next := m.active + delta
	if m.active < 0 {
		next = 0
	}
	next = ((next % n) + n) % n
	m.active = next
	id := m.fields[next].ID
	m.errMsg = ""
	return m.runAction(id, "focus", func() error { return m.ctrl.FocusWidget(id) })
}

// handleEscapeKey leaves the focused widget. Without a focused widget it
// quits.
func (m *Model) handleEscapeKey() tea.Cmd {
	current := m.activeField()
	if current == nil || !current.Focused() {
		return m.quit()
	}
	id := current.ID
	m.errMsg = ""
	m.forceClearInfo()
	return m.runAction(id, "escape", func() error { return m.ctrl.Escape(id) })
}

type clipboardResultMsg struct {
	text string
	err  error
}

func (m *Model) copySelections() tea.Cmd {
	current := m.activeField()
	if current == nil || len(current.Selections) == 0 {
		return nil
	}
	text := strings.Join(current.Selections.Labels(), ", ")
	write := m.clipboard
	return func() tea.Msg {
		return clipboardResultMsg{text: text, err: write(text)}
	}
}

func (m *Model) handleClipboardResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(clipboardResultMsg)
	if !ok {
		return nil
	}
	if res.err != nil {
		logging.Error(res.err)
		m.errMsg = res.err.Error()
		return nil
	}
	events.UI.Copy(res.text)
	m.setInfo(fmt.Sprintf("Copied %s", res.text))
	return nil
}
