package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Busy                *lipgloss.Style
	WidgetTitle         *lipgloss.Style
	ActiveWidgetTitle   *lipgloss.Style
	Suggestion          *lipgloss.Style
	SuggestionIndicator *lipgloss.Style
	FocusedIndicator    *lipgloss.Style
	FocusedSuggestion   *lipgloss.Style
	Selection           *lipgloss.Style
	FocusedSelection    *lipgloss.Style
	Native              *lipgloss.Style
	NativeSelected      *lipgloss.Style
	Error               *lipgloss.Style
	Info                *lipgloss.Style
	Header              *lipgloss.Style
	Footer              *lipgloss.Style
	Filter              *lipgloss.Style
	FilterPrompt        *lipgloss.Style
	FilterPlaceholder   *lipgloss.Style
	Cursor              *lipgloss.Style
}

var defaultStyles = Styles{
	Busy: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Italic(true),
	),
	WidgetTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	ActiveWidgetTitle: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	),
	Suggestion: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	SuggestionIndicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	),
	FocusedIndicator: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Background(lipgloss.Color("238")),
	),
	FocusedSuggestion: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	Selection: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("250")),
	),
	FocusedSelection: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("33")).Bold(true),
	),
	Native: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	),
	NativeSelected: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Filter: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	FilterPrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	FilterPlaceholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	Cursor: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("33")).Blink(true),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
