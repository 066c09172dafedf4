package remote

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultMinQueryLength is the shortest query that reaches the endpoint.
	DefaultMinQueryLength = 2
	// DefaultContentType is sent with POST requests when none is configured.
	DefaultContentType = "application/x-www-form-urlencoded; charset=UTF-8"
)

// Config shapes the request sent for a filter pass. The json tags match the
// keys accepted in inline element configuration, so a copy can be overlaid
// by decoding an element's JSON on top of it.
type Config struct {
	Method         string            `json:"method" yaml:"method"`
	Parameters     map[string]string `json:"parameters" yaml:"parameters"`
	ContentType    string            `json:"contentType" yaml:"contentType"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	MinQueryLength int               `json:"minQueryLength" yaml:"minQueryLength"`
	Script         string            `json:"transform" yaml:"transform"`
	Path           string            `json:"transformPath" yaml:"transformPath"`

	// Transform overrides Script and Path when set programmatically.
	Transform Transform `json:"-" yaml:"-"`
}

// DefaultConfig returns a GET configuration with the standard minimum length.
func DefaultConfig() Config {
	return Config{Method: http.MethodGet, MinQueryLength: DefaultMinQueryLength}
}

// Clone copies the maps so the result can be mutated independently.
func (c Config) Clone() Config {
	out := c
	out.Parameters = cloneMap(c.Parameters)
	out.Headers = cloneMap(c.Headers)
	return out
}

// NormalizedMethod returns POST when configured, GET otherwise.
func (c Config) NormalizedMethod() string {
	if strings.EqualFold(strings.TrimSpace(c.Method), http.MethodPost) {
		return http.MethodPost
	}
	return http.MethodGet
}

// Validate rejects methods other than GET and POST and broken transforms.
func (c Config) Validate() error {
	switch strings.ToUpper(strings.TrimSpace(c.Method)) {
	case "", http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("unsupported method %q", c.Method)
	}
	if c.MinQueryLength < 0 {
		return fmt.Errorf("minQueryLength must be >= 0, got %d", c.MinQueryLength)
	}
	if c.Transform == nil {
		if _, err := CompileTransform(c.Script, c.Path); err != nil {
			return err
		}
	}
	return nil
}

// Resolve compiles Script and Path into Transform unless one is already set.
func (c Config) Resolve() (Config, error) {
	out := c.Clone()
	if out.Transform != nil {
		return out, nil
	}
	tr, err := CompileTransform(c.Script, c.Path)
	if err != nil {
		return out, err
	}
	out.Transform = tr
	return out, nil
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
