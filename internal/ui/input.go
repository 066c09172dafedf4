package ui

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/atomicstack/select-autosuggest/internal/logging/events"
)

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) noteFilterCursorChange(f *field, before int) {
	if f == nil {
		return
	}
	if before != f.FilterCursorPos() {
		m.filterCursorDirty = true
	}
}

// handleTextInput edits the active filter. Text changes are sent to the
// document; cursor movement stays local.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	current := m.activeField()
	if current == nil {
		return false, nil
	}
	before := current.FilterCursorPos()
	switch msg.String() {
	case "ctrl+u":
		if !current.DeleteFilterToStart() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		events.Filter.Cleared(current.ID)
		return true, m.sendQuery(current, "Backspace")
	case "ctrl+w", "alt+backspace":
		if !current.DeleteFilterWordBackward() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		events.Filter.WordBackspace(current.ID, current.Filter)
		return true, m.sendQuery(current, "Backspace")
	case "ctrl+a", "home":
		return m.moveFilterCursor(current, before, current.MoveFilterCursorStart), nil
	case "ctrl+e", "end":
		return m.moveFilterCursor(current, before, current.MoveFilterCursorEnd), nil
	case "alt+b", "ctrl+left":
		return m.moveFilterCursor(current, before, current.MoveFilterCursorWordBackward), nil
	case "alt+f", "ctrl+right":
		return m.moveFilterCursor(current, before, current.MoveFilterCursorWordForward), nil
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		if !current.DeleteFilterRuneBackward() {
			return false, nil
		}
		m.noteFilterCursorChange(current, before)
		events.Filter.Backspace(current.ID, current.Filter)
		return true, m.sendQuery(current, "Backspace")
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false, nil
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false, nil
			}
		}
		return m.appendToFilter(current, before, string(msg.Runes))
	case tea.KeySpace:
		return m.appendToFilter(current, before, " ")
	case tea.KeyLeft:
		return m.moveFilterCursor(current, before, current.MoveFilterCursorRuneBackward), nil
	case tea.KeyRight:
		return m.moveFilterCursor(current, before, current.MoveFilterCursorRuneForward), nil
	}
	return false, nil
}

func (m *Model) appendToFilter(current *field, before int, text string) (bool, tea.Cmd) {
	if !current.InsertFilterText(text) {
		return false, nil
	}
	m.noteFilterCursorChange(current, before)
	m.forceClearInfo()
	events.Filter.Append(current.ID, current.Filter)
	runes := []rune(text)
	return true, m.sendQuery(current, string(runes[len(runes)-1]))
}

func (m *Model) moveFilterCursor(current *field, before int, move func() bool) bool {
	if !move() {
		return false
	}
	m.noteFilterCursorChange(current, before)
	events.Filter.Cursor(current.ID, current.FilterCursor)
	return true
}

// filterPrompt renders the filter of f. Only the active field shows the
// cursor.
func (m *Model) filterPrompt(f *field, active bool) string {
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	prompt := "» "
	if !active {
		prompt = "  "
	}
	if styles.FilterPrompt != nil {
		prompt = styles.FilterPrompt.Render(prompt)
	}
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
	} else {
		m.filterCursor.TextStyle = lipgloss.Style{}
	}

	text := f.Filter
	if text == "" {
		placeholder := f.Placeholder
		if placeholder == "" {
			placeholder = "(type to search)"
		}
		if !active {
			return prompt + render(styles.FilterPlaceholder, placeholder)
		}
		runes := []rune(placeholder)
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		caret := m.renderFilterCursor(string(runes[:1]))
		return prompt + caret + render(styles.FilterPlaceholder, string(runes[1:]))
	}
	if !active {
		return prompt + render(styles.Filter, text)
	}
	runes := []rune(text)
	pos := f.FilterCursorPos()
	before := render(styles.Filter, string(runes[:pos]))
	caretRune := " "
	after := ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	return prompt + before + m.renderFilterCursor(caretRune) + after
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)

	base := m.filterCursor.TextStyle.Copy()
	base = base.Inline(true)

	if m.filterCursor.Blink {
		return base.Render(char)
	}

	if styles.Cursor != nil {
		cursorStyle := styles.Cursor.Copy().Inline(true)
		base = base.Inherit(cursorStyle).Blink(false)
		return base.Render(char)
	}

	return base.Reverse(true).Render(char)
}
