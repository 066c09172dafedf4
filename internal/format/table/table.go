package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Format pads every cell to the widest cell of its column and joins the
// cells of a row with two spaces. Widths are measured in terminal cells, so
// styled text and wide runes line up. Rows shorter than the first row are
// padded with empty cells.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	widths := make([]int, cols)
	for _, row := range rows {
		for c, cell := range row {
			if w := lipgloss.Width(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			if c > 0 {
				b.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[c]-lipgloss.Width(cell))
			if c < len(alignments) && alignments[c] == AlignRight {
				b.WriteString(pad)
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				b.WriteString(pad)
			}
		}
		out[i] = b.String()
	}
	return out
}
