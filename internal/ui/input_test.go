package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCursorMovementStaysLocal(t *testing.T) {
	h, ctrl := newTestModel(Options{})
	h.Send(snapshot(1, city()))
	h.Type("abc")
	ctrl.calls = nil

	f := h.Model().activeField()
	h.Key(tea.KeyLeft)
	if pos := f.FilterCursorPos(); pos != 2 {
		t.Fatalf("expected cursor at 2 after left, got %d", pos)
	}
	h.Key(tea.KeyCtrlA)
	if pos := f.FilterCursorPos(); pos != 0 {
		t.Fatalf("expected cursor at start, got %d", pos)
	}
	h.Key(tea.KeyRight)
	h.Key(tea.KeyCtrlE)
	if pos := f.FilterCursorPos(); pos != 3 {
		t.Fatalf("expected cursor at end, got %d", pos)
	}
	if len(ctrl.calls) != 0 {
		t.Fatalf("cursor movement must not reach the document, got %v", ctrl.ops())
	}
}

func TestInsertAtCursorAndWordDelete(t *testing.T) {
	h, ctrl := newTestModel(Options{})
	h.Send(snapshot(1, city()))
	h.Type("new york")
	h.Key(tea.KeyCtrlW)
	h.Key(tea.KeyCtrlA)
	h.Type("in ")
	last := ctrl.calls[len(ctrl.calls)-1]
	if last.text != "in new " || last.key != " " {
		t.Fatalf("unexpected last query %+v", last)
	}
	h.Key(tea.KeyCtrlU)
	assertLast(t, ctrl, `query city "new " Backspace`)
}

func assertLast(t *testing.T, ctrl *fakeController, want string) {
	t.Helper()
	ops := ctrl.ops()
	if len(ops) == 0 || ops[len(ops)-1] != want {
		t.Fatalf("expected last call %s, got %q", want, ops)
	}
}

func TestFilterPromptPlaceholder(t *testing.T) {
	h, _ := newTestModel(Options{})
	h.Send(snapshot(1, city(), tags()))
	m := h.Model()

	prompt := m.filterPrompt(m.fields[0], true)
	if !strings.Contains(prompt, "ick a city") {
		t.Fatalf("expected placeholder in prompt, got %q", prompt)
	}
	prompt = m.filterPrompt(m.fields[1], false)
	if !strings.Contains(prompt, "(type to search)") {
		t.Fatalf("expected default placeholder, got %q", prompt)
	}
}
