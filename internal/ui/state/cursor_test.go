package state

import (
	"testing"

	"github.com/atomicstack/select-autosuggest/internal/value"
)

func newTestField(labels ...string) *Field {
	items := make(value.Values, len(labels))
	for i, label := range labels {
		items[i] = value.Pair{Value: label, Label: label}
	}
	return &Field{ID: "test", Items: items, Cursor: -1}
}

func TestEnsureCursorVisibleAdjustsViewport(t *testing.T) {
	f := newTestField("a", "b", "c", "d", "e")
	f.Cursor = 4
	f.EnsureCursorVisible(2)
	if f.ViewportOffset != 3 {
		t.Fatalf("expected offset 3, got %d", f.ViewportOffset)
	}

	f.Cursor = -1
	f.EnsureCursorVisible(2)
	if f.ViewportOffset != 0 {
		t.Fatalf("expected offset reset without cursor, got %d", f.ViewportOffset)
	}

	f.ViewportOffset = 4
	f.Cursor = 2
	f.EnsureCursorVisible(0)
	if f.ViewportOffset != 0 {
		t.Fatalf("expected offset reset when maxVisible <= 0, got %d", f.ViewportOffset)
	}

	f.ViewportOffset = 4
	f.Cursor = 1
	f.EnsureCursorVisible(3)
	if f.ViewportOffset != 1 {
		t.Fatalf("expected offset aligned with cursor, got %d", f.ViewportOffset)
	}

	f.Cursor = 9
	f.EnsureCursorVisible(3)
	if f.Cursor != 4 || f.ViewportOffset != 2 {
		t.Fatalf("expected cursor clamped to 4 at offset 2, got %d/%d", f.Cursor, f.ViewportOffset)
	}
}

func TestVisibleWindow(t *testing.T) {
	f := newTestField("a", "b", "c", "d")
	f.ViewportOffset = 1
	if start, end := f.Visible(2); start != 1 || end != 3 {
		t.Fatalf("expected window 1..3, got %d..%d", start, end)
	}
	if start, end := f.Visible(0); start != 1 || end != 4 {
		t.Fatalf("expected unbounded window 1..4, got %d..%d", start, end)
	}
}
