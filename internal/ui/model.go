package ui

import (
	"reflect"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/select-autosuggest/internal/backend"
	"github.com/atomicstack/select-autosuggest/internal/theme"
	"github.com/atomicstack/select-autosuggest/internal/ui/command"
	uistate "github.com/atomicstack/select-autosuggest/internal/ui/state"
)

type field = uistate.Field

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Controller performs actions on the document. backend.Controller is the
// production implementation.
type Controller interface {
	SetQuery(id, text, key string) error
	FocusWidget(id string) error
	MoveFocus(id string, delta int) error
	Activate(id string) error
	Escape(id string) error
	ClickOutside() error
	DestroyAll() error
}

// EventSource streams document snapshots.
type EventSource interface {
	Events() <-chan backend.Event
}

// Options configure a Model.
type Options struct {
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	// StaticCursor disables the blinking filter cursor.
	StaticCursor bool
	Source       EventSource
	Controller   Controller
	// Clipboard receives copied selections. Defaults to the system clipboard.
	Clipboard func(string) error
}

// Model implements the Bubble Tea model for the widget browser.
type Model struct {
	fields  []*field
	natives []backend.Native
	active  int
	seq     uint64
	synced  bool

	errMsg         string
	infoMsg        string
	infoExpire     time.Time
	width          int
	height         int
	fixedWidth     bool
	fixedHeight    bool
	showFooter     bool
	verbose        bool
	quitting       bool
	backend        EventSource
	backendLastErr string

	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler

	ctrl      Controller
	bus       *command.Bus
	queue     []command.Request
	running   bool
	clipboard func(string) error
}

// NewModel initialises the UI state.
func NewModel(opts Options) *Model {
	m := &Model{
		active:     -1,
		backend:    opts.Source,
		ctrl:       opts.Controller,
		bus:        command.New(),
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
		clipboard:  opts.Clipboard,
	}
	if m.clipboard == nil {
		m.clipboard = clipboard.WriteAll
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	if opts.StaticCursor {
		c.SetMode(cursor.CursorStatic)
	}
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):         m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):  m.handleWindowSizeMsg,
		reflect.TypeOf(command.Result{}):     m.handleCommandResultMsg,
		reflect.TypeOf(backendEventMsg{}):    m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):     m.handleBackendDoneMsg,
		reflect.TypeOf(clipboardResultMsg{}): m.handleClipboardResultMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}

// Quitting reports whether the model asked the program to exit.
func (m *Model) Quitting() bool {
	return m.quitting
}

func (m *Model) activeField() *field {
	if m.active < 0 || m.active >= len(m.fields) {
		return nil
	}
	return m.fields[m.active]
}

func (m *Model) fieldByID(id string) *field {
	for _, f := range m.fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}
