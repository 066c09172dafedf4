package autosuggest

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/remote"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

const (
	DefaultDelay     = 200 * time.Millisecond
	DefaultTarget    = ".select-autosuggest"
	DefaultNamespace = "select-autosuggest"
)

// MatchMode selects how the local filter compares labels with the query.
type MatchMode string

const (
	MatchSubstring MatchMode = "substring"
	MatchFuzzy     MatchMode = "fuzzy"
)

// ParseMatchMode accepts the empty string as substring matching.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchFuzzy:
		return MatchFuzzy, nil
	}
	return "", fmt.Errorf("unknown match mode %q", s)
}

// Config is the request shaping plus the display limits. It decodes from the
// inline element configuration and from the YAML configuration file.
type Config struct {
	remote.Config `yaml:",inline"`

	MaxSuggestions int       `json:"maxSuggestions" yaml:"maxSuggestions"`
	Placeholder    string    `json:"placeholder" yaml:"placeholder"`
	FilterName     string    `json:"filterName" yaml:"filterName"`
	Match          MatchMode `json:"match" yaml:"match"`
}

// DefaultConfig returns GET requests, the default minimum query length and
// substring matching.
func DefaultConfig() Config {
	return Config{Config: remote.DefaultConfig(), Match: MatchSubstring}
}

// Clone deep-copies the maps held by the request configuration.
func (c Config) Clone() Config {
	out := c
	out.Config = c.Config.Clone()
	return out
}

// Hook names a lifecycle callback.
type Hook string

const (
	OnRenderComplete     Hook = "onRenderComplete"
	OnDisplaySelection   Hook = "onDisplaySelection"
	OnDisplaySelections  Hook = "onDisplaySelections"
	OnDisplaySuggestions Hook = "onDisplaySuggestions"
	OnSelect             Hook = "onSelect"
	OnDeselect           Hook = "onDeselect"
	OnFocus              Hook = "onFocus"
	OnBlur               Hook = "onBlur"
	OnClick              Hook = "onClick"
	OnKeyDown            Hook = "onKeyDown"
	OnKeyUp              Hook = "onKeyUp"
	OnFilter             Hook = "onFilter"
	OnSubmit             Hook = "onSubmit"
	OnDestroy            Hook = "onDestroy"
	OnEndpointException  Hook = "onEndpointException"
)

// HookEvent is the payload handed to callbacks. Selections and Suggestions
// are copies.
type HookEvent struct {
	ID          string
	Selections  value.Values
	Suggestions value.Values
	Query       string
	Context     *html.Node
	Props       map[string]interface{}
}

type HookFunc func(HookEvent)

// Options configure an Engine. Zero values fall back to the defaults.
type Options struct {
	Delay    time.Duration
	Endpoint string
	Target   string
	// Config without a Method counts as unset: it gets the default method
	// and a MinQueryLength of 0 becomes the default of 2. Set Method to keep
	// an explicit 0.
	Config    Config
	Callbacks map[Hook]HookFunc
	Namespace string
	Silent    bool
}

func (o Options) withDefaults() Options {
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if strings.TrimSpace(o.Target) == "" {
		o.Target = DefaultTarget
	}
	if strings.TrimSpace(o.Namespace) == "" {
		o.Namespace = DefaultNamespace
	}
	// An unset method marks a config that was never filled in.
	if o.Config.Method == "" {
		def := remote.DefaultConfig()
		o.Config.Method = def.Method
		if o.Config.MinQueryLength == 0 {
			o.Config.MinQueryLength = def.MinQueryLength
		}
	}
	if o.Config.Match == "" {
		o.Config.Match = MatchSubstring
	}
	if o.Callbacks == nil {
		o.Callbacks = map[Hook]HookFunc{}
	}
	return o
}
