package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atomicstack/select-autosuggest/internal/app"
	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

// File is the YAML configuration file. Keys left out keep the value they
// had before the file was applied.
type File struct {
	Page      string             `yaml:"page"`
	Endpoint  string             `yaml:"endpoint"`
	Target    string             `yaml:"target"`
	Namespace string             `yaml:"namespace"`
	Delay     time.Duration      `yaml:"delay"`
	Silent    bool               `yaml:"silent"`
	Serve     string             `yaml:"serve"`
	Widget    autosuggest.Config `yaml:"widget"`
	Catalog   []CatalogEntry     `yaml:"catalog"`

	dir string
	raw []byte
}

// CatalogEntry is one demo suggestion. It accepts a plain string, a
// [value, label] sequence or a {value, label} mapping.
type CatalogEntry value.Pair

func (c *CatalogEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		c.Value, c.Label = node.Value, node.Value
		return nil
	case yaml.SequenceNode:
		var parts []string
		if err := node.Decode(&parts); err != nil {
			return err
		}
		if len(parts) == 0 || len(parts) > 2 {
			return fmt.Errorf("line %d: catalog entry needs a value and an optional label", node.Line)
		}
		c.Value, c.Label = parts[0], parts[0]
		if len(parts) == 2 {
			c.Label = parts[1]
		}
		return nil
	case yaml.MappingNode:
		var m struct {
			Value string `yaml:"value"`
			Label string `yaml:"label"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		if m.Value == "" {
			return fmt.Errorf("line %d: catalog entry without value", node.Line)
		}
		c.Value, c.Label = m.Value, m.Label
		if c.Label == "" {
			c.Label = c.Value
		}
		return nil
	}
	return fmt.Errorf("line %d: unsupported catalog entry", node.Line)
}

// LoadFile reads and checks the YAML file at path. Unknown keys are errors.
func LoadFile(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}
	var parsed File
	if err := decodeStrict(raw, &parsed); err != nil {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	parsed.dir = filepath.Dir(path)
	parsed.raw = raw
	return parsed, nil
}

// Apply overlays the file on base. Relative page paths resolve against the
// file's directory.
func (f File) Apply(base app.Config) (app.Config, error) {
	overlay := File{
		Page:      base.Page,
		Endpoint:  base.Endpoint,
		Target:    base.Target,
		Namespace: base.Namespace,
		Delay:     base.Delay,
		Silent:    base.Silent,
		Serve:     base.Serve,
		Widget:    base.Widget.Clone(),
	}
	if err := decodeStrict(f.raw, &overlay); err != nil {
		return base, err
	}

	out := base
	out.Endpoint = overlay.Endpoint
	out.Target = overlay.Target
	out.Namespace = overlay.Namespace
	out.Delay = overlay.Delay
	out.Silent = overlay.Silent
	out.Serve = overlay.Serve
	out.Widget = overlay.Widget
	out.Page = overlay.Page
	if out.Page != base.Page && out.Page != "" && !filepath.IsAbs(out.Page) && f.dir != "" {
		out.Page = filepath.Join(f.dir, out.Page)
	}
	if len(overlay.Catalog) > 0 {
		out.Catalog = make(value.Values, 0, len(overlay.Catalog))
		for _, entry := range overlay.Catalog {
			out.Catalog = append(out.Catalog, value.Pair(entry))
		}
	}
	return out, nil
}

func decodeStrict(raw []byte, out *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}
