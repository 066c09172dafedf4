package state

import (
	"strings"
	"unicode"

	"github.com/atomicstack/select-autosuggest/internal/value"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SetFilter updates the filter text and cursor position.
func (f *Field) SetFilter(query string, cursor int) {
	f.Filter = query
	runes := []rune(f.Filter)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	f.FilterCursor = cursor
}

// FilterCursorPos returns the rune offset of the filter cursor.
func (f *Field) FilterCursorPos() int {
	runes := []rune(f.Filter)
	if f.FilterCursor < 0 {
		return 0
	}
	if f.FilterCursor > len(runes) {
		return len(runes)
	}
	return f.FilterCursor
}

// InsertFilterText inserts text into the filter at the cursor position.
func (f *Field) InsertFilterText(text string) bool {
	if text == "" {
		return false
	}
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(f.Filter)
	pos := f.FilterCursorPos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	f.SetFilter(string(updated), pos+len(insert))
	return true
}

// DeleteFilterRuneBackward deletes a rune before the filter cursor.
func (f *Field) DeleteFilterRuneBackward() bool {
	runes := []rune(f.Filter)
	pos := f.FilterCursorPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	updated := append(runes[:pos-1], runes[pos:]...)
	f.SetFilter(string(updated), pos-1)
	return true
}

// DeleteFilterWordBackward deletes the word preceding the cursor.
func (f *Field) DeleteFilterWordBackward() bool {
	runes := []rune(f.Filter)
	pos := f.FilterCursorPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	updated := append(runes[:i], runes[pos:]...)
	f.SetFilter(string(updated), i)
	return true
}

// MoveFilterCursorStart moves the filter cursor to the start.
func (f *Field) MoveFilterCursorStart() bool {
	if f.FilterCursorPos() == 0 {
		return false
	}
	f.FilterCursor = 0
	return true
}

// MoveFilterCursorEnd moves the filter cursor to the end.
func (f *Field) MoveFilterCursorEnd() bool {
	end := len([]rune(f.Filter))
	if f.FilterCursorPos() == end {
		return false
	}
	f.FilterCursor = end
	return true
}

// MoveFilterCursorWordBackward moves the filter cursor one word backward.
func (f *Field) MoveFilterCursorWordBackward() bool {
	runes := []rune(f.Filter)
	pos := f.FilterCursorPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	if i == pos {
		return false
	}
	f.FilterCursor = i
	return true
}

// MoveFilterCursorWordForward moves the filter cursor one word forward.
func (f *Field) MoveFilterCursorWordForward() bool {
	runes := []rune(f.Filter)
	pos := f.FilterCursorPos()
	if pos >= len(runes) {
		return false
	}
	i := pos
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i == pos {
		return false
	}
	f.FilterCursor = i
	return true
}

// MoveFilterCursorRuneBackward moves the filter cursor one rune backward.
func (f *Field) MoveFilterCursorRuneBackward() bool {
	if f.FilterCursorPos() == 0 {
		return false
	}
	f.FilterCursor = f.FilterCursorPos() - 1
	return true
}

// MoveFilterCursorRuneForward moves the filter cursor one rune forward.
func (f *Field) MoveFilterCursorRuneForward() bool {
	runes := []rune(f.Filter)
	pos := f.FilterCursorPos()
	if pos >= len(runes) {
		return false
	}
	f.FilterCursor = pos + 1
	return true
}

// DeleteFilterToStart deletes everything before the cursor.
func (f *Field) DeleteFilterToStart() bool {
	runes := []rune(f.Filter)
	pos := f.FilterCursorPos()
	if pos == 0 {
		return false
	}
	f.SetFilter(string(runes[pos:]), 0)
	return true
}

// BestMatchIndex returns the index of the suggestion that best matches the
// query. An empty query picks the first suggestion; -1 means no match.
func BestMatchIndex(items value.Values, query string) int {
	if len(items) == 0 {
		return -1
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	tiers := []func(value.Pair) bool{
		func(p value.Pair) bool {
			return strings.EqualFold(p.Label, trimmed) || strings.EqualFold(p.Value, trimmed)
		},
		func(p value.Pair) bool { return strings.HasPrefix(strings.ToLower(p.Label), lower) },
		func(p value.Pair) bool { return strings.HasPrefix(strings.ToLower(p.Value), lower) },
		func(p value.Pair) bool { return strings.Contains(strings.ToLower(p.Label), lower) },
	}
	for _, match := range tiers {
		for i, item := range items {
			if match(item) {
				return i
			}
		}
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, items.Labels())
	if len(ranks) == 0 {
		return -1
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance ||
			(rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex) {
			best = rank
		}
	}
	return best.OriginalIndex
}
