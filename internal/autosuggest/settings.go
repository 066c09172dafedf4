package autosuggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
	"golang.org/x/net/html"

	"github.com/atomicstack/select-autosuggest/internal/dom"
)

// resolveSettings merges the global options with the element's endpoint and
// inline configuration attributes. The element wins. A broken inline
// configuration is reported and ignored.
func (e *Engine) resolveSettings(target *html.Node) Settings {
	settings := Settings{
		Endpoint: dom.AttrOr(target, e.names.EndpointAttr, e.opts.Endpoint),
		Config:   e.opts.Config.Clone(),
	}

	if raw := strings.TrimSpace(dom.AttrOr(target, e.names.ConfigAttr, "")); raw != "" {
		merged, err := overlayConfig(settings.Config, raw)
		if err != nil {
			e.report(fmt.Errorf("ignoring %s: %w", e.names.ConfigAttr, err))
		} else {
			settings.Config = merged
		}
	}

	resolved, err := settings.Config.Resolve()
	if err != nil {
		e.report(fmt.Errorf("ignoring transform: %w", err))
		resolved.Transform = nil
	}
	settings.Config.Config = resolved
	return settings
}

// overlayConfig decodes raw, which may carry comments and trailing commas, on
// top of base.
func overlayConfig(base Config, raw string) (Config, error) {
	merged := base.Clone()
	if err := json.Unmarshal(jsonc.ToJSON([]byte(raw)), &merged); err != nil {
		return base, err
	}
	if merged.Script != base.Script || merged.Path != base.Path {
		merged.Transform = nil
	}
	mode, err := ParseMatchMode(string(merged.Match))
	if err != nil {
		return base, err
	}
	merged.Match = mode
	if err := merged.Config.Validate(); err != nil {
		return base, err
	}
	return merged, nil
}
