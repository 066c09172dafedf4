package config

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/select-autosuggest/internal/app"
	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	File    string
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envPage           = "SELECT_AUTOSUGGEST_PAGE"
	envEndpoint       = "SELECT_AUTOSUGGEST_ENDPOINT"
	envTarget         = "SELECT_AUTOSUGGEST_TARGET"
	envNamespace      = "SELECT_AUTOSUGGEST_NAMESPACE"
	envDelay          = "SELECT_AUTOSUGGEST_DELAY"
	envMinQuery       = "SELECT_AUTOSUGGEST_MIN_QUERY"
	envMaxSuggestions = "SELECT_AUTOSUGGEST_MAX_SUGGESTIONS"
	envMethod         = "SELECT_AUTOSUGGEST_METHOD"
	envPlaceholder    = "SELECT_AUTOSUGGEST_PLACEHOLDER"
	envMatch          = "SELECT_AUTOSUGGEST_MATCH"
	envSilent         = "SELECT_AUTOSUGGEST_SILENT"
	envConfigFile     = "SELECT_AUTOSUGGEST_CONFIG"
	envServe          = "SELECT_AUTOSUGGEST_SERVE"
	envDump           = "SELECT_AUTOSUGGEST_DUMP"
	envWidth          = "SELECT_AUTOSUGGEST_WIDTH"
	envHeight         = "SELECT_AUTOSUGGEST_HEIGHT"
	envFooter         = "SELECT_AUTOSUGGEST_FOOTER"
	envVerbose        = "SELECT_AUTOSUGGEST_VERBOSE"
	envTrace          = "SELECT_AUTOSUGGEST_TRACE"
	envLogFile        = "SELECT_AUTOSUGGEST_LOG_FILE"
)

// flagEnv maps each flag that can override the configuration file to the
// environment variable backing it.
var flagEnv = map[string]string{
	"page":            envPage,
	"endpoint":        envEndpoint,
	"target":          envTarget,
	"namespace":       envNamespace,
	"delay":           envDelay,
	"min-query":       envMinQuery,
	"max-suggestions": envMaxSuggestions,
	"method":          envMethod,
	"placeholder":     envPlaceholder,
	"match":           envMatch,
	"silent":          envSilent,
	"serve":           envServe,
	"dump":            envDump,
	"width":           envWidth,
	"height":          envHeight,
	"footer":          envFooter,
	"verbose":         envVerbose,
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values set by a
// flag or its environment variable win over the configuration file, which
// wins over the defaults.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	defaults := app.DefaultConfig()

	fs := flag.NewFlagSet("select-autosuggest", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	page := fs.String("page", envOrDefault(env, envPage, ""), "HTML page to enhance (empty uses the built-in demo page)")
	endpoint := fs.String("endpoint", envOrDefault(env, envEndpoint, ""), "suggestion endpoint URL")
	target := fs.String("target", envOrDefault(env, envTarget, defaults.Target), "CSS selector of the select elements to enhance")
	namespace := fs.String("namespace", envOrDefault(env, envNamespace, defaults.Namespace), "prefix for generated classes and attributes")
	delay := fs.Duration("delay", envOrDuration(env, envDelay, defaults.Delay), "debounce delay after the last keystroke")
	minQuery := fs.Int("min-query", envOrInt(env, envMinQuery, defaults.Widget.MinQueryLength), "shortest query sent to the endpoint")
	maxSuggestions := fs.Int("max-suggestions", envOrInt(env, envMaxSuggestions, 0), "cap on rendered suggestions (0 renders all)")
	method := fs.String("method", envOrDefault(env, envMethod, http.MethodGet), "request method, GET or POST")
	placeholder := fs.String("placeholder", envOrDefault(env, envPlaceholder, ""), "filter input placeholder")
	match := fs.String("match", envOrDefault(env, envMatch, string(autosuggest.MatchSubstring)), "local match mode, substring or fuzzy")
	silent := fs.Bool("silent", envOrBool(env, envSilent, false), "suppress informational log lines")
	file := fs.String("config", envOrDefault(env, envConfigFile, ""), "path to a YAML configuration file")
	serve := fs.String("serve", envOrDefault(env, envServe, ""), "address for the demo suggestion server, e.g. 127.0.0.1:8089")
	dump := fs.Bool("dump", envOrBool(env, envDump, false), "print the document HTML on exit")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envFooter, false), "show the key binding footer")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, false), "show the outcome of every action in the status area")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	for name, key := range flagEnv {
		if _, ok := env[key]; ok {
			explicit[name] = true
		}
	}

	appCfg := defaults
	if strings.TrimSpace(*file) != "" {
		fc, err := LoadFile(*file)
		if err != nil {
			return Config{}, err
		}
		appCfg, err = fc.Apply(appCfg)
		if err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", *file, err)
		}
	}

	set := func(name string, apply func()) {
		if explicit[name] {
			apply()
		}
	}
	set("page", func() { appCfg.Page = *page })
	set("endpoint", func() { appCfg.Endpoint = *endpoint })
	set("target", func() { appCfg.Target = *target })
	set("namespace", func() { appCfg.Namespace = *namespace })
	set("delay", func() { appCfg.Delay = *delay })
	set("min-query", func() { appCfg.Widget.MinQueryLength = *minQuery })
	set("max-suggestions", func() { appCfg.Widget.MaxSuggestions = *maxSuggestions })
	set("method", func() { appCfg.Widget.Method = *method })
	set("placeholder", func() { appCfg.Widget.Placeholder = *placeholder })
	set("match", func() { appCfg.Widget.Match = autosuggest.MatchMode(*match) })
	set("silent", func() { appCfg.Silent = *silent })
	set("serve", func() { appCfg.Serve = *serve })
	set("dump", func() { appCfg.Dump = *dump })
	set("width", func() { appCfg.Width = *width })
	set("height", func() { appCfg.Height = *height })
	set("footer", func() { appCfg.ShowFooter = *footer })
	set("verbose", func() { appCfg.Verbose = *verbose })

	cfg := Config{
		App: appCfg,
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		File: *file,
		Flags: map[string]string{
			"page":           *page,
			"endpoint":       *endpoint,
			"target":         *target,
			"namespace":      *namespace,
			"delay":          delay.String(),
			"minQuery":       strconv.Itoa(*minQuery),
			"maxSuggestions": strconv.Itoa(*maxSuggestions),
			"method":         *method,
			"placeholder":    *placeholder,
			"match":          *match,
			"silent":         strconv.FormatBool(*silent),
			"config":         *file,
			"serve":          *serve,
			"dump":           strconv.FormatBool(*dump),
			"width":          strconv.Itoa(*width),
			"height":         strconv.Itoa(*height),
			"footer":         strconv.FormatBool(*footer),
			"verbose":        strconv.FormatBool(*verbose),
			"trace":          strconv.FormatBool(*trace),
			"logFile":        *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	a := cfg.App
	if a.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	if a.Delay < 0 {
		return fmt.Errorf("delay must be >= 0 (got %s)", a.Delay)
	}
	if a.Widget.MaxSuggestions < 0 {
		return fmt.Errorf("max-suggestions must be >= 0 (got %d)", a.Widget.MaxSuggestions)
	}
	if strings.TrimSpace(a.Target) == "" {
		return fmt.Errorf("target selector must not be empty")
	}
	if _, err := autosuggest.ParseMatchMode(string(a.Widget.Match)); err != nil {
		return err
	}
	if err := a.Widget.Config.Validate(); err != nil {
		return err
	}
	if a.Page != "" {
		if _, err := os.Stat(a.Page); err != nil {
			return fmt.Errorf("page: %w", err)
		}
	}
	return nil
}

