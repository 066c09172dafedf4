package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/atomicstack/select-autosuggest/internal/app"
	"github.com/atomicstack/select-autosuggest/internal/config"
	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/logging/events"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	tty := probeTerminal(os.Stdin, os.Stdout)
	events.App.Start(startupTracePayload(runtimeCfg, tty))

	if err := run(runtimeCfg.App, tty, os.Stdout); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run starts the widget browser on an interactive terminal. When input or
// output is redirected it enhances the page once and prints the document.
func run(cfg app.Config, tty terminal, out io.Writer) error {
	if !tty.Interactive() {
		return app.Render(cfg, out)
	}
	return app.Run(cfg)
}

// terminal describes the standard streams the program was started with.
type terminal struct {
	Input  bool   `json:"stdin_is_terminal"`
	Output bool   `json:"stdout_is_terminal"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Interactive reports whether a full screen program can run.
func (t terminal) Interactive() bool {
	return t.Input && t.Output
}

func probeTerminal(in, out *os.File) terminal {
	var t terminal
	t.Input = isTerminal(in)
	t.Output = isTerminal(out)
	if !t.Output {
		return t
	}
	w, h, err := term.GetSize(int(out.Fd()))
	if err != nil {
		t.Error = err.Error()
		return t
	}
	t.Width, t.Height = w, h
	return t
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config, tty terminal) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags)+2)
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath

	mode := "interactive"
	if !tty.Interactive() {
		mode = "render"
	}
	payload := map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    flags,
		"page":     cfg.App.Page,
		"endpoint": cfg.App.Endpoint,
		"target":   cfg.App.Target,
		"mode":     mode,
		"tty":      tty,
	}
	if cfg.File != "" {
		payload["configFile"] = cfg.File
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	}
	return payload
}
