package backend

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/select-autosuggest/internal/autosuggest"
	"github.com/atomicstack/select-autosuggest/internal/dom"
	"github.com/atomicstack/select-autosuggest/internal/logging"
	"github.com/atomicstack/select-autosuggest/internal/testutil"
	"github.com/atomicstack/select-autosuggest/internal/value"
)

const page = `<html><body><form>
<select class="select-autosuggest" id="city" name="city"><option value="ams">Amsterdam</option><option value="ber">Berlin</option></select>
<select class="select-autosuggest" id="tags" name="tags" multiple><option value="go">Go</option><option value="js">JavaScript</option></select>
<select id="plain" name="plain"><option value="x" selected>Ex</option></select>
</form></body></html>`

type inlineRunner struct{}

func (inlineRunner) Run(fn func() error) error { return fn() }

type rig struct {
	sched   *testutil.ManualScheduler
	engine  *autosuggest.Engine
	watcher *Watcher
	control *Controller
}

const interval = 10 * time.Millisecond

func newRig(t *testing.T) *rig {
	t.Helper()
	logging.Configure(filepath.Join(t.TempDir(), "backend.log"))
	t.Cleanup(func() { logging.Configure("") })

	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	sched := testutil.NewManualScheduler()
	engine := autosuggest.New(doc, sched, nil, autosuggest.Options{})
	_, err = engine.Start()
	require.NoError(t, err)

	w := NewWatcher(sched, engine, interval)
	w.Attach()
	return &rig{sched: sched, engine: engine, watcher: w, control: NewController(inlineRunner{}, engine)}
}

func (r *rig) next(t *testing.T) Snapshot {
	t.Helper()
	r.sched.Advance(interval)
	select {
	case evt := <-r.watcher.Events():
		require.Equal(t, KindSnapshot, evt.Kind)
		return evt.Snapshot
	default:
		t.Fatal("expected a snapshot")
	}
	return Snapshot{}
}

func TestAttachPublishesDocumentOrder(t *testing.T) {
	r := newRig(t)
	evt := <-r.watcher.Events()
	snap := evt.Snapshot
	require.Len(t, snap.Widgets, 2)
	assert.Equal(t, "city", snap.Widgets[0].ID)
	assert.Equal(t, "tags", snap.Widgets[1].ID)
	assert.True(t, snap.Widgets[1].Multiple)
	assert.False(t, snap.Widgets[0].Expanded)
	assert.Equal(t, FocusNone, snap.Widgets[0].Focus)

	require.Len(t, snap.Natives, 1)
	assert.Equal(t, "plain", snap.Natives[0].Name)
	assert.Equal(t, []Option{{Value: "x", Label: "Ex", Selected: true}}, snap.Natives[0].Options)
}

func TestChangesCoalesceIntoOneSnapshot(t *testing.T) {
	r := newRig(t)
	<-r.watcher.Events()

	require.NoError(t, r.control.SetQuery("city", "b", "b"))
	require.NoError(t, r.control.SetQuery("city", "be", "e"))
	assert.Equal(t, 2, r.sched.Armed(), "one debounce and one publish timer")

	r.sched.Advance(autosuggest.DefaultDelay + interval)
	snap := (<-r.watcher.Events()).Snapshot
	w, ok := snap.Widget("city")
	require.True(t, ok)
	assert.Equal(t, "be", w.Query)
	assert.Equal(t, FocusFilter, w.Focus)
	assert.True(t, w.Expanded)
	assert.Equal(t, value.Values{{Value: "ber", Label: "Berlin"}}, w.Suggestions)

	select {
	case evt := <-r.watcher.Events():
		t.Fatalf("unexpected extra event %+v", evt)
	default:
	}
}

func TestMoveFocusAndActivate(t *testing.T) {
	r := newRig(t)
	<-r.watcher.Events()

	require.NoError(t, r.control.FocusWidget("tags"))
	snap := r.next(t)
	w, _ := snap.Widget("tags")
	assert.Equal(t, FocusFilter, w.Focus)
	require.Len(t, w.Suggestions, 2)

	require.NoError(t, r.control.MoveFocus("tags", 1))
	require.NoError(t, r.control.MoveFocus("tags", 1))
	require.NoError(t, r.control.MoveFocus("tags", 5))
	snap = r.next(t)
	w, _ = snap.Widget("tags")
	assert.Equal(t, FocusSuggestion, w.Focus)
	assert.Equal(t, 1, w.FocusIndex)

	require.NoError(t, r.control.Activate("tags"))
	snap = r.next(t)
	w, _ = snap.Widget("tags")
	assert.Equal(t, value.Values{{Value: "js", Label: "JavaScript"}}, w.Selections)
	assert.Equal(t, FocusSuggestion, w.Focus)
	assert.Equal(t, 0, w.FocusIndex)

	sel, err := r.control.Selections("tags")
	require.NoError(t, err)
	assert.Equal(t, w.Selections, sel)

	require.NoError(t, r.control.MoveFocus("tags", -10))
	snap = r.next(t)
	w, _ = snap.Widget("tags")
	assert.Equal(t, FocusFilter, w.Focus)
}

func TestActivateOnFilterSelectsFirstMatch(t *testing.T) {
	r := newRig(t)
	<-r.watcher.Events()

	require.NoError(t, r.control.SetQuery("city", "ams", "s"))
	require.NoError(t, r.control.Activate("city"))
	snap := r.next(t)
	w, _ := snap.Widget("city")
	assert.Equal(t, value.Values{{Value: "ams", Label: "Amsterdam"}}, w.Selections)
	assert.Equal(t, "Amsterdam", w.Query)
}

func TestClickOutsideCollapses(t *testing.T) {
	r := newRig(t)
	<-r.watcher.Events()

	require.NoError(t, r.control.FocusWidget("city"))
	w, _ := r.next(t).Widget("city")
	require.True(t, w.Expanded)

	require.NoError(t, r.control.ClickOutside())
	w, _ = r.next(t).Widget("city")
	assert.False(t, w.Expanded)
	assert.Equal(t, FocusNone, w.Focus)
}

func TestEscapeLeavesFilter(t *testing.T) {
	r := newRig(t)
	<-r.watcher.Events()

	require.NoError(t, r.control.FocusWidget("city"))
	require.NoError(t, r.control.Escape("city"))
	w, _ := r.next(t).Widget("city")
	assert.Equal(t, FocusNone, w.Focus)
}

func TestDestroyAllShowsNativeSelects(t *testing.T) {
	r := newRig(t)
	<-r.watcher.Events()

	require.NoError(t, r.control.FocusWidget("city"))
	require.NoError(t, r.control.MoveFocus("city", 2))
	require.NoError(t, r.control.Activate("city"))
	require.NoError(t, r.control.DestroyAll())

	snap := r.next(t)
	assert.Empty(t, snap.Widgets)
	require.Len(t, snap.Natives, 3)
	assert.Equal(t, "city", snap.Natives[0].Name)
	assert.Equal(t, []Option{
		{Value: "ber", Label: "Berlin", Selected: true},
		{Value: "ams", Label: "Amsterdam"},
	}, snap.Natives[0].Options)

	assert.ErrorIs(t, r.control.FocusWidget("city"), autosuggest.ErrUnknownInstance)

	html, err := r.control.Render()
	require.NoError(t, err)
	assert.NotContains(t, html, "select-autosuggest-wrapper")
}

func TestStopClosesEvents(t *testing.T) {
	r := newRig(t)
	<-r.watcher.Events()
	r.watcher.Stop()
	r.sched.Flush()
	_, ok := <-r.watcher.Events()
	assert.False(t, ok)

	r.watcher.Report(assert.AnError)
	r.engine.Destroy("")
	r.sched.Advance(time.Second)
}
