package state

// EnsureCursorVisible adjusts the viewport offset so the cursor stays within
// maxVisible suggestions. A cursor of -1 keeps the viewport at the top.
func (f *Field) EnsureCursorVisible(maxVisible int) {
	if len(f.Items) == 0 || maxVisible <= 0 {
		f.ViewportOffset = 0
		return
	}
	if f.Cursor >= len(f.Items) {
		f.Cursor = len(f.Items) - 1
	}
	maxOffset := len(f.Items) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if f.ViewportOffset > maxOffset {
		f.ViewportOffset = maxOffset
	}
	if f.ViewportOffset < 0 || f.Cursor < 0 {
		f.ViewportOffset = 0
		return
	}
	if f.Cursor < f.ViewportOffset {
		f.ViewportOffset = f.Cursor
	}
	if upper := f.ViewportOffset + maxVisible - 1; f.Cursor > upper {
		f.ViewportOffset = f.Cursor - maxVisible + 1
	}
}

// Visible returns the window of suggestions starting at the viewport offset.
func (f *Field) Visible(maxVisible int) (start, end int) {
	start = f.ViewportOffset
	end = len(f.Items)
	if maxVisible > 0 && start+maxVisible < end {
		end = start + maxVisible
	}
	return start, end
}
