package state

import (
	"testing"

	"github.com/atomicstack/select-autosuggest/internal/value"
)

func TestSetFilterClampsCursor(t *testing.T) {
	f := newTestField()
	f.SetFilter("two", 10)
	if f.Filter != "two" || f.FilterCursor != 3 {
		t.Fatalf("unexpected filter state %q/%d", f.Filter, f.FilterCursor)
	}
	f.SetFilter("two", -4)
	if f.FilterCursor != 0 {
		t.Fatalf("expected cursor clamped to 0, got %d", f.FilterCursor)
	}
}

func TestInsertAndDeleteFilterText(t *testing.T) {
	f := newTestField()

	if !f.InsertFilterText("ab") {
		t.Fatal("expected insert to succeed")
	}
	if f.Filter != "ab" || f.FilterCursor != 2 {
		t.Fatalf("unexpected filter state after insert %q/%d", f.Filter, f.FilterCursor)
	}
	if f.InsertFilterText("") {
		t.Fatal("expected empty insert to be ignored")
	}

	f.FilterCursor = 1
	f.InsertFilterText("é")
	if f.Filter != "aéb" || f.FilterCursor != 2 {
		t.Fatalf("expected rune-aware insert, got %q/%d", f.Filter, f.FilterCursor)
	}
	if !f.DeleteFilterRuneBackward() {
		t.Fatal("expected delete to succeed")
	}
	if f.Filter != "ab" || f.FilterCursor != 1 {
		t.Fatalf("unexpected filter state after delete %q/%d", f.Filter, f.FilterCursor)
	}

	f.SetFilter("abc def", len("abc def"))
	if !f.DeleteFilterWordBackward() {
		t.Fatal("expected word deletion to succeed")
	}
	if f.Filter != "abc " {
		t.Fatalf("expected trailing word removed, got %q", f.Filter)
	}

	f.SetFilter("abc def", 4)
	if !f.DeleteFilterToStart() {
		t.Fatal("expected delete to start to succeed")
	}
	if f.Filter != "def" || f.FilterCursor != 0 {
		t.Fatalf("unexpected filter after delete to start %q/%d", f.Filter, f.FilterCursor)
	}
	if f.DeleteFilterToStart() {
		t.Fatal("expected no deletion at start")
	}

	f.SetFilter("abc", 0)
	if f.DeleteFilterRuneBackward() {
		t.Fatal("expected delete at start to fail")
	}
}

func TestFilterCursorNavigation(t *testing.T) {
	f := newTestField()
	f.SetFilter("one two", len("one two"))

	if !f.MoveFilterCursorWordBackward() {
		t.Fatal("expected word backward movement")
	}
	if f.FilterCursor != 4 {
		t.Fatalf("expected cursor at 4, got %d", f.FilterCursor)
	}
	if !f.MoveFilterCursorWordForward() {
		t.Fatal("expected word forward movement")
	}
	if f.FilterCursor != len("one two") {
		t.Fatalf("expected cursor restored to end, got %d", f.FilterCursor)
	}
	if !f.MoveFilterCursorRuneBackward() {
		t.Fatal("expected rune backward movement")
	}
	if !f.MoveFilterCursorRuneForward() {
		t.Fatal("expected rune forward movement")
	}
	if f.MoveFilterCursorRuneForward() {
		t.Fatal("expected no movement past the end")
	}
	if !f.MoveFilterCursorStart() || f.FilterCursor != 0 {
		t.Fatalf("expected move to start, got %d", f.FilterCursor)
	}
	if f.MoveFilterCursorStart() {
		t.Fatal("expected no movement when already at start")
	}
	if !f.MoveFilterCursorEnd() {
		t.Fatal("expected move back to end")
	}
}

func TestBestMatchIndex(t *testing.T) {
	items := value.Values{
		{Value: "one", Label: "First"},
		{Value: "two", Label: "Second"},
		{Value: "three", Label: "Third"},
	}

	cases := []struct {
		query string
		want  int
	}{
		{"Second", 1},
		{"two", 1},
		{"th", 2},
		{"con", 1},
		{"scd", 1},
		{"", 0},
		{"zzz", -1},
	}
	for _, tc := range cases {
		if got := BestMatchIndex(items, tc.query); got != tc.want {
			t.Fatalf("BestMatchIndex(%q) = %d, want %d", tc.query, got, tc.want)
		}
	}
	if idx := BestMatchIndex(nil, "anything"); idx != -1 {
		t.Fatalf("expected -1 for empty slice, got %d", idx)
	}
}
