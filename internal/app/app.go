package app

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/backend"
	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
	"github.com/atomicstack/select-autosuggest/internal/loop"
	"github.com/atomicstack/select-autosuggest/internal/remote"
	"github.com/atomicstack/select-autosuggest/internal/suggestserver"
	"github.com/atomicstack/select-autosuggest/internal/ui"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

//go:embed demo.html
var demoPage string

const (
	watchInterval   = 50 * time.Millisecond
	requestTimeout  = 10 * time.Second
	shutdownTimeout = 2 * time.Second
)

// Config describes user-provided application options.
type Config struct {
	Page      string
	Endpoint  string
	Target    string
	Namespace string
	Delay     time.Duration
	Widget    autosuggest.Config
	Silent    bool
	// Serve starts the demo suggestion server on this address.
	Serve   string
	Catalog value.Values
	Dump    bool

	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Target:    autosuggest.DefaultTarget,
		Namespace: autosuggest.DefaultNamespace,
		Delay:     autosuggest.DefaultDelay,
		Widget:    autosuggest.DefaultConfig(),
	}
}

// Options converts the configuration into engine options.
func (c Config) Options() autosuggest.Options {
	return autosuggest.Options{
		Delay:     c.Delay,
		Endpoint:  c.Endpoint,
		Target:    c.Target,
		Namespace: c.Namespace,
		Silent:    c.Silent,
		Config:    c.Widget.Clone(),
	}
}

// LoadPage parses the page at path, or the built-in demo page when path is
// empty.
func LoadPage(path string) (*dom.Document, error) {
	if strings.TrimSpace(path) == "" {
		return dom.ParseString(demoPage)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", path, err)
	}
	return doc, nil
}

// Session holds the running engine and everything wired around it.
type Session struct {
	Loop       *loop.Loop
	Engine     *autosuggest.Engine
	Watcher    *backend.Watcher
	Controller *backend.Controller
	Server     *suggestserver.Server
	// BaseURL is set when the demo suggestion server runs.
	BaseURL string
	IDs     []string
}

// Start loads the page, enhances its selects and begins publishing
// snapshots. A page without matching selects still starts so its native
// controls can be shown.
func Start(cfg Config) (*Session, error) {
	logging.SetSilent(cfg.Silent)
	doc, err := LoadPage(cfg.Page)
	if err != nil {
		return nil, err
	}

	s := &Session{}
	opts := cfg.Options()
	if cfg.Serve != "" {
		s.Server = suggestserver.New(cfg.Catalog, suggestserver.Options{})
		s.BaseURL, err = s.Server.Start(cfg.Serve)
		if err != nil {
			return nil, fmt.Errorf("start suggestion server: %w", err)
		}
		if opts.Endpoint == "" {
			opts.Endpoint = s.BaseURL + "/suggest"
		}
	}

	opts.Callbacks = map[autosuggest.Hook]autosuggest.HookFunc{
		autosuggest.OnEndpointException: func(ev autosuggest.HookEvent) {
			if s.Watcher != nil {
				s.Watcher.Report(fmt.Errorf("%s: endpoint answered %v %v", ev.ID, ev.Props["status"], ev.Props["statusText"]))
			}
		},
	}

	s.Loop = loop.New()
	s.Engine = autosuggest.New(doc, s.Loop, remote.NewFetcher(&http.Client{Timeout: requestTimeout}), opts)
	s.Watcher = backend.NewWatcher(s.Loop, s.Engine, watchInterval)
	err = s.Loop.Run(func() error {
		ids, err := s.Engine.Start()
		s.IDs = ids
		s.Watcher.Attach()
		if errors.Is(err, autosuggest.ErrNoTargets) {
			return nil
		}
		return err
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Controller = backend.NewController(s.Loop, s.Engine)
	return s, nil
}

// Close stops the watcher, the engine, the loop and the server, in that
// order.
func (s *Session) Close() {
	if s.Watcher != nil {
		s.Watcher.Stop()
	}
	if s.Engine != nil && s.Loop != nil {
		_ = s.Loop.Run(func() error {
			s.Engine.Close()
			return nil
		})
	}
	if s.Loop != nil {
		s.Loop.Stop()
	}
	if s.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Server.Shutdown(ctx); err != nil {
			logging.Error(err)
		}
	}
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	return RunWithOutput(cfg, os.Stdout)
}

// RunWithOutput is Run with the document dump written to out.
func RunWithOutput(cfg Config, out io.Writer) (err error) {
	defer func() { events.App.Exit(err) }()
	s, err := Start(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	model := ui.NewModel(ui.Options{
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		Source:     s.Watcher,
		Controller: s.Controller,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	if err != nil {
		return err
	}
	if cfg.Dump {
		return Dump(s, out)
	}
	return nil
}

// Render enhances the page once and writes the resulting document to out,
// without a terminal front end.
func Render(cfg Config, out io.Writer) (err error) {
	defer func() { events.App.Exit(err) }()
	s, err := Start(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return Dump(s, out)
}

// Dump writes the current document to out.
func Dump(s *Session, out io.Writer) error {
	markup, err := s.Controller.Render()
	if err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	_, err = fmt.Fprintln(out, markup)
	return err
}
