package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Target != autosuggest.DefaultTarget {
		t.Fatalf("expected default target, got %q", cfg.App.Target)
	}
	if cfg.App.Delay != autosuggest.DefaultDelay {
		t.Fatalf("expected default delay, got %s", cfg.App.Delay)
	}
	if cfg.App.Widget.Method != "GET" || cfg.App.Widget.MinQueryLength != 2 {
		t.Fatalf("unexpected request defaults: %+v", cfg.App.Widget.Config)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadArgsFlagsAndEnv(t *testing.T) {
	env := []string{
		"SELECT_AUTOSUGGEST_ENDPOINT=http://env.example/suggest",
		"SELECT_AUTOSUGGEST_DELAY=50ms",
		"SELECT_AUTOSUGGEST_TRACE=1",
		"garbage",
	}
	args := []string{"--method", "post", "--min-query", "3", "--match", "fuzzy", "--log-file", "/tmp/x.log"}
	cfg, err := LoadArgs(args, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Endpoint != "http://env.example/suggest" {
		t.Fatalf("expected endpoint from env, got %q", cfg.App.Endpoint)
	}
	if cfg.App.Delay != 50*time.Millisecond {
		t.Fatalf("expected 50ms delay, got %s", cfg.App.Delay)
	}
	if cfg.App.Widget.NormalizedMethod() != "POST" {
		t.Fatalf("expected POST, got %q", cfg.App.Widget.Method)
	}
	if cfg.App.Widget.MinQueryLength != 3 {
		t.Fatalf("expected min query 3, got %d", cfg.App.Widget.MinQueryLength)
	}
	if cfg.App.Widget.Match != autosuggest.MatchFuzzy {
		t.Fatalf("expected fuzzy matching, got %q", cfg.App.Widget.Match)
	}
	if !cfg.Logging.Trace || cfg.Logging.FilePath != "/tmp/x.log" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Flags["minQuery"] != "3" {
		t.Fatalf("expected minQuery flag recorded, got %q", cfg.Flags["minQuery"])
	}
	if len(cfg.Args) != len(args) {
		t.Fatalf("expected args to be recorded, got %v", cfg.Args)
	}
}

func TestLoadArgsRejectsUnknownFlag(t *testing.T) {
	if _, err := LoadArgs([]string{"--nope"}, nil); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestInvalidEnvFallsBackToDefault(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{"SELECT_AUTOSUGGEST_WIDTH=wide", "SELECT_AUTOSUGGEST_DELAY=soon"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Width != 0 {
		t.Fatalf("expected width fallback 0, got %d", cfg.App.Width)
	}
	if cfg.App.Delay != autosuggest.DefaultDelay {
		t.Fatalf("expected delay fallback, got %s", cfg.App.Delay)
	}
}

const sampleFile = `endpoint: http://file.example/suggest
delay: 120ms
serve: 127.0.0.1:0
page: pages/demo.html
widget:
  method: POST
  minQueryLength: 1
  maxSuggestions: 5
  parameters:
    lang: en
  transformPath: "items[].[id, name]"
catalog:
  - Amsterdam
  - [ber, Berlin]
  - value: cph
    label: Copenhagen
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "select-autosuggest.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigFileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, sampleFile)
	cfg, err := LoadArgs([]string{"--config", path}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := cfg.App
	if a.Endpoint != "http://file.example/suggest" || a.Delay != 120*time.Millisecond {
		t.Fatalf("file values not applied: %+v", a)
	}
	if a.Target != autosuggest.DefaultTarget {
		t.Fatalf("untouched keys should keep defaults, got target %q", a.Target)
	}
	if a.Widget.Method != "POST" || a.Widget.MinQueryLength != 1 || a.Widget.MaxSuggestions != 5 {
		t.Fatalf("widget values not applied: %+v", a.Widget)
	}
	if a.Widget.Parameters["lang"] != "en" || a.Widget.Path != "items[].[id, name]" {
		t.Fatalf("request shaping not applied: %+v", a.Widget.Config)
	}
	if want := filepath.Join(filepath.Dir(path), "pages/demo.html"); a.Page != want {
		t.Fatalf("expected page %q, got %q", want, a.Page)
	}
	want := value.Values{
		{Value: "Amsterdam", Label: "Amsterdam"},
		{Value: "ber", Label: "Berlin"},
		{Value: "cph", Label: "Copenhagen"},
	}
	if len(a.Catalog) != len(want) {
		t.Fatalf("expected %d catalog entries, got %v", len(want), a.Catalog)
	}
	for i := range want {
		if a.Catalog[i] != want[i] {
			t.Fatalf("catalog[%d] = %+v, want %+v", i, a.Catalog[i], want[i])
		}
	}
}

func TestFlagsWinOverConfigFile(t *testing.T) {
	path := writeFile(t, sampleFile)
	cfg, err := LoadArgs([]string{"--config", path, "--min-query", "4", "--endpoint", "http://flag.example"}, []string{"SELECT_AUTOSUGGEST_DELAY=10ms"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Widget.MinQueryLength != 4 {
		t.Fatalf("flag should win, got %d", cfg.App.Widget.MinQueryLength)
	}
	if cfg.App.Endpoint != "http://flag.example" {
		t.Fatalf("flag should win, got %q", cfg.App.Endpoint)
	}
	if cfg.App.Delay != 10*time.Millisecond {
		t.Fatalf("env should win over file, got %s", cfg.App.Delay)
	}
	if cfg.App.Widget.Method != "POST" {
		t.Fatalf("file value should survive, got %q", cfg.App.Widget.Method)
	}
}

func TestConfigFileRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "endpiont: http://typo.example\n")
	_, err := LoadArgs([]string{"--config", path}, nil)
	if err == nil || !strings.Contains(err.Error(), "endpiont") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestConfigFileMissing(t *testing.T) {
	if _, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"negative width", []string{"--width", "-1"}},
		{"negative delay", []string{"--delay", "-5ms"}},
		{"negative max", []string{"--max-suggestions", "-2"}},
		{"bad method", []string{"--method", "DELETE"}},
		{"bad match", []string{"--match", "regex"}},
		{"empty target", []string{"--target", " "}},
		{"missing page", []string{"--page", "/definitely/not/here.html"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadArgs(tc.args, nil)
			if err != nil {
				t.Fatalf("unexpected load error: %v", err)
			}
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected validation error for %v", tc.args)
			}
		})
	}
}
