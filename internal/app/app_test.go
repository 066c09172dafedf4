package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/backend"
	"github.com/atomicstack/select-autosuggest/internal/logging"
)

func quietLogs(t *testing.T) {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "app.log"))
	t.Cleanup(func() { logging.Configure("") })
}

func writePage(t *testing.T, markup string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(markup), 0o600))
	return path
}

// waitFor reads snapshots until match accepts one.
func waitFor(t *testing.T, s *Session, match func(backend.Snapshot) bool) backend.Snapshot {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case evt, ok := <-s.Watcher.Events():
			require.True(t, ok, "event stream closed")
			if evt.Kind == backend.KindSnapshot && match(evt.Snapshot) {
				return evt.Snapshot
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestDefaultConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoint = "http://example.test/suggest"
	cfg.Silent = true
	cfg.Widget.MaxSuggestions = 4

	opts := cfg.Options()
	assert.Equal(t, autosuggest.DefaultTarget, opts.Target)
	assert.Equal(t, autosuggest.DefaultNamespace, opts.Namespace)
	assert.Equal(t, autosuggest.DefaultDelay, opts.Delay)
	assert.Equal(t, "http://example.test/suggest", opts.Endpoint)
	assert.True(t, opts.Silent)
	assert.Equal(t, 4, opts.Config.MaxSuggestions)
	assert.Equal(t, autosuggest.MatchSubstring, opts.Config.Match)
}

func TestLoadPageFallsBackToDemo(t *testing.T) {
	doc, err := LoadPage("")
	require.NoError(t, err)
	selects, err := doc.Select(nil, "select")
	require.NoError(t, err)
	assert.Len(t, selects, 3)

	_, err = LoadPage(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestStartEnhancesDemoPage(t *testing.T) {
	quietLogs(t)
	cfg := DefaultConfig()
	cfg.Silent = true
	s, err := Start(cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Len(t, s.IDs, 2)
	snap := waitFor(t, s, func(backend.Snapshot) bool { return true })
	require.Len(t, snap.Widgets, 2)
	assert.Equal(t, "city", snap.Widgets[0].Name)
	assert.True(t, snap.Widgets[1].Multiple)
	require.Len(t, snap.Widgets[1].Selections, 1)
	assert.Equal(t, "Food", snap.Widgets[1].Selections[0].Label)
	require.Len(t, snap.Natives, 1)
	assert.Equal(t, "class", snap.Natives[0].Name)
}

func TestStartWithoutTargetsShowsNativeSelects(t *testing.T) {
	quietLogs(t)
	cfg := DefaultConfig()
	cfg.Page = writePage(t, `<html><body><select name="plain"><option value="a" selected>A</option></select></body></html>`)
	s, err := Start(cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Empty(t, s.IDs)
	snap := waitFor(t, s, func(backend.Snapshot) bool { return true })
	assert.Empty(t, snap.Widgets)
	require.Len(t, snap.Natives, 1)
	assert.True(t, snap.Natives[0].Options[0].Selected)
}

func TestStartServesSuggestions(t *testing.T) {
	quietLogs(t)
	cfg := DefaultConfig()
	cfg.Page = writePage(t, `<html><body><form><select class="select-autosuggest" name="city"></select></form></body></html>`)
	cfg.Serve = "127.0.0.1:0"
	cfg.Delay = 5 * time.Millisecond
	s, err := Start(cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NotEmpty(t, s.BaseURL)
	require.Len(t, s.IDs, 1)
	id := s.IDs[0]

	require.NoError(t, s.Controller.SetQuery(id, "hels", "s"))
	snap := waitFor(t, s, func(snap backend.Snapshot) bool {
		w, ok := snap.Widget(id)
		return ok && len(w.Suggestions) > 0
	})
	w, _ := snap.Widget(id)
	assert.Equal(t, "Helsinki", w.Suggestions[0].Label)
	assert.Equal(t, "hels", w.Query)
}

func TestDumpWritesDocument(t *testing.T) {
	quietLogs(t)
	s, err := Start(DefaultConfig())
	require.NoError(t, err)
	defer s.Close()

	var buf bytes.Buffer
	require.NoError(t, Dump(s, &buf))
	assert.Contains(t, buf.String(), `data-select-autosuggest-id=`)
	assert.Contains(t, buf.String(), `name="class"`)
}

func TestStartRejectsMissingPage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Page = filepath.Join(t.TempDir(), "nope.html")
	_, err := Start(cfg)
	assert.Error(t, err)
}

func TestRenderWritesEnhancedPage(t *testing.T) {
	quietLogs(t)
	var buf bytes.Buffer
	require.NoError(t, Render(DefaultConfig(), &buf))
	out := buf.String()
	assert.Contains(t, out, "select-autosuggest-wrapper")
	assert.Contains(t, out, `placeholder="Search cities"`)
	assert.Contains(t, out, `name="class"`)
}
