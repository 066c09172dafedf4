package state

import (
	"github.com/atomicstack/select-autosuggest/internal/backend"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// Field is the terminal state of one widget: the filter being edited plus the
// last suggestions and selections the document reported.
type Field struct {
	ID           string
	Name         string
	Multiple     bool
	Placeholder  string
	Filter       string
	FilterCursor int

	Items      value.Values
	Selections value.Values
	Expanded   bool
	Busy       bool

	Focus           backend.Focus
	Cursor          int
	SelectionCursor int
	ViewportOffset  int

	// pending counts edits sent to the document that it has not confirmed.
	// Snapshots taken before they land must not overwrite the filter.
	pending int
}

// NewField builds a field from a captured widget.
func NewField(w backend.Widget) *Field {
	f := &Field{ID: w.ID, Cursor: -1, SelectionCursor: -1}
	f.Sync(w)
	return f
}

// Sync adopts the captured widget state. The filter text follows the
// document unless local edits are still in flight.
func (f *Field) Sync(w backend.Widget) {
	f.Name = w.Name
	f.Multiple = w.Multiple
	f.Placeholder = w.Placeholder
	f.Items = w.Suggestions.Clone()
	f.Selections = w.Selections.Clone()
	f.Expanded = w.Expanded
	f.Busy = w.Busy
	f.Focus = w.Focus

	if f.pending == 0 && w.Query != f.Filter {
		f.SetFilter(w.Query, len([]rune(w.Query)))
	}

	f.SelectionCursor = -1
	switch w.Focus {
	case backend.FocusSuggestion:
		f.Cursor = w.FocusIndex
	case backend.FocusSelection:
		f.SelectionCursor = w.FocusIndex
		f.Cursor = -1
	default:
		f.Cursor = BestMatchIndex(f.Items, f.Filter)
	}
	if !f.Expanded {
		f.ViewportOffset = 0
	}
}

// BeginEdit records an edit on its way to the document.
func (f *Field) BeginEdit() { f.pending++ }

// EndEdit records that an edit reached the document.
func (f *Field) EndEdit() {
	if f.pending > 0 {
		f.pending--
	}
}

// Editing reports whether edits are in flight.
func (f *Field) Editing() bool { return f.pending > 0 }

// Focused reports whether any part of the widget holds the focus.
func (f *Field) Focused() bool { return f.Focus != backend.FocusNone }

// IsSelected reports whether the value is one of the selections.
func (f *Field) IsSelected(v string) bool {
	return f.Selections.Contains(v)
}

// CurrentItem returns the suggestion under the cursor.
func (f *Field) CurrentItem() (value.Pair, bool) {
	if f.Cursor < 0 || f.Cursor >= len(f.Items) {
		return value.Pair{}, false
	}
	return f.Items[f.Cursor], true
}
