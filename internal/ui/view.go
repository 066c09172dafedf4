package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/select-autosuggest/internal/backend"
	"github.com/atomicstack/select-autosuggest/internal/format/table"
)

const footerText = "tab next  ↑/↓ move  enter select  esc leave  ctrl+o click outside  ctrl+d destroy  ctrl+y copy  ctrl+c quit"

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := make([]styledLine, 0, 32)
	lines = append(lines, styledLine{text: m.header(), style: styles.Header})

	max := m.maxVisibleSuggestions()
	for i, f := range m.fields {
		lines = append(lines, styledLine{})
		lines = append(lines, m.widgetLines(f, i == m.active, max)...)
	}
	if len(m.natives) > 0 {
		lines = append(lines, styledLine{})
		lines = append(lines, nativeLines(m.natives)...)
	}
	if len(m.fields) == 0 && len(m.natives) == 0 {
		lines = append(lines, styledLine{}, styledLine{text: "(no select elements)", style: styles.Info})
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: footerText, style: styles.Footer})
	}
	lines = limitHeight(lines, m.height-1, m.width)
	lines = applyWidth(lines, m.width)

	lines = append(lines, applyWidth([]styledLine{m.statusLine()}, m.width)...)
	return renderLines(lines)
}

func (m *Model) header() string {
	switch n := len(m.fields); n {
	case 0:
		return "select-autosuggest"
	case 1:
		return "select-autosuggest · 1 widget"
	default:
		return fmt.Sprintf("select-autosuggest · %d widgets", n)
	}
}

func (m *Model) statusLine() styledLine {
	switch {
	case m.errMsg != "":
		return styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	case m.backendLastErr != "":
		return styledLine{text: fmt.Sprintf("Error: %s", m.backendLastErr), style: styles.Error}
	}
	return styledLine{}
}

func (m *Model) widgetLines(f *field, active bool, max int) []styledLine {
	lines := make([]styledLine, 0, 8)
	title := f.Name
	if f.Multiple {
		title += " (multiple)"
	}
	if f.Busy {
		title += " " + styles.Busy.Render("searching…")
	}
	titleStyle := styles.WidgetTitle
	if active {
		titleStyle = styles.ActiveWidgetTitle
	}
	lines = append(lines, styledLine{text: titleStyle.Render(title), raw: true})
	lines = append(lines, styledLine{text: m.filterPrompt(f, active), raw: true})

	if f.Expanded {
		if len(f.Items) == 0 {
			lines = append(lines, styledLine{text: "  (no suggestions)", style: styles.Info})
		}
		start, end := f.Visible(max)
		for idx := start; idx < end; idx++ {
			lines = append(lines, m.buildSuggestionLine(f, idx))
		}
		if hidden := len(f.Items) - end; hidden > 0 {
			lines = append(lines, styledLine{text: fmt.Sprintf("  … %d more", hidden), style: styles.Info})
		}
	}
	if f.Multiple && len(f.Selections) > 0 {
		lines = append(lines, styledLine{text: selectionsLine(f), raw: true})
	}
	return lines
}

func (m *Model) buildSuggestionLine(f *field, idx int) styledLine {
	indicator := "▌"
	lineStyle := styles.Suggestion
	indicatorStyle := styles.SuggestionIndicator
	if idx == f.Cursor {
		indicatorStyle = styles.FocusedIndicator
		if f.Focus == backend.FocusSuggestion {
			lineStyle = styles.FocusedSuggestion
		}
	}
	fullText := "  " + indicator + " " + f.Items[idx].Label
	if m.width > 0 {
		if pad := m.width - len([]rune(fullText)); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 3, // indent plus the ▌ character
	}
}

func selectionsLine(f *field) string {
	parts := make([]string, 0, len(f.Selections))
	for i, sel := range f.Selections {
		style := styles.Selection
		if i == f.SelectionCursor {
			style = styles.FocusedSelection
		}
		parts = append(parts, style.Render(" "+sel.Label+" × "))
	}
	return "  " + strings.Join(parts, " ")
}

// nativeLines lists plain selects, padding the names so the options line up.
func nativeLines(natives []backend.Native) []styledLine {
	rows := make([][]string, len(natives))
	for i, n := range natives {
		kind := "select"
		if n.Multiple {
			kind = "select multiple"
		}
		rows[i] = []string{kind + " " + n.Name + ":"}
	}
	heads := table.Format(rows, nil)
	lines := make([]styledLine, len(natives))
	for i, n := range natives {
		parts := make([]string, 0, len(n.Options))
		for _, opt := range n.Options {
			if opt.Selected {
				parts = append(parts, styles.NativeSelected.Render("["+opt.Label+"]"))
				continue
			}
			parts = append(parts, styles.Native.Render(opt.Label))
		}
		lines[i] = styledLine{
			text: styles.Native.Render(heads[i]+" ") + strings.Join(parts, " "),
			raw:  true,
		}
	}
	return lines
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewports()
	return nil
}

// maxVisibleSuggestions splits the rows left after the fixed lines between
// the expanded widgets. It returns -1 when the height is unknown.
func (m *Model) maxVisibleSuggestions() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // header and status line
	expanded := 0
	for _, f := range m.fields {
		used += 3 // blank, title and filter
		if f.Multiple && len(f.Selections) > 0 {
			used++
		}
		if f.Expanded {
			expanded++
			used++ // overflow marker
		}
	}
	if len(m.natives) > 0 {
		used += 1 + len(m.natives)
	}
	if m.currentInfo() != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	if expanded == 0 {
		expanded = 1
	}
	remain := (m.height - used) / expanded
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		line.text = text
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}
