package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<html><body>
<form id="f"><div id="box"><select id="s" class="pick"><option value="a">Alpha</option></select><input id="q" value="seed"></div></form>
</body></html>`

func mustParse(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(page)
	require.NoError(t, err)
	return doc
}

func byID(t *testing.T, doc *Document, id string) *html.Node {
	t.Helper()
	nodes := doc.FindByAttr(nil, "id", id)
	require.Len(t, nodes, 1, "id %q", id)
	return nodes[0]
}

func TestSelectAndFindByAttr(t *testing.T) {
	doc := mustParse(t)
	nodes, err := doc.Select(nil, "select.pick")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "s", AttrOr(nodes[0], "id", ""))

	_, err = doc.Select(nil, "select[")
	assert.Error(t, err)

	assert.Len(t, doc.FindByAttr(nil, "value", "a"), 1)
	assert.Empty(t, doc.FindByAttr(nil, "value", `it's`))
}

func TestValueIsIndependentOfAttribute(t *testing.T) {
	doc := mustParse(t)
	q := byID(t, doc, "q")
	assert.Equal(t, "seed", doc.Value(q))
	doc.SetValue(q, "typed")
	assert.Equal(t, "typed", doc.Value(q))
	assert.Equal(t, "seed", AttrOr(q, "value", ""))
}

func TestDispatchBubblesAndHonoursPreventDefault(t *testing.T) {
	doc := mustParse(t)
	q := byID(t, doc, "q")
	box := byID(t, doc, "box")

	var order []string
	doc.AddEventListener(q, "keyup", func(*Event) { order = append(order, "input") })
	doc.AddEventListener(box, "keyup", func(ev *Event) {
		order = append(order, "box")
		ev.PreventDefault()
	})
	doc.AddEventListener(doc.Root(), "keyup", func(ev *Event) {
		order = append(order, "root")
		assert.Same(t, q, ev.Target)
	})

	ok := doc.Dispatch(q, KeyEvent("keyup", "a"))
	assert.False(t, ok)
	assert.Equal(t, []string{"input", "box", "root"}, order)
}

func TestDispatchPathSurvivesDetach(t *testing.T) {
	doc := mustParse(t)
	q := byID(t, doc, "q")
	reached := false
	doc.AddEventListener(q, "click", func(*Event) { doc.Remove(q) })
	doc.AddEventListener(doc.Root(), "click", func(*Event) { reached = true })
	doc.Dispatch(q, NewEvent("click"))
	assert.True(t, reached)
	assert.False(t, doc.Contains(q))
}

func TestRemoveEventListener(t *testing.T) {
	doc := mustParse(t)
	q := byID(t, doc, "q")
	calls := 0
	l := doc.AddEventListener(q, "change", func(*Event) { calls++ })
	require.Equal(t, 1, doc.ListenerCount())
	doc.RemoveEventListener(l)
	doc.RemoveEventListener(l)
	doc.Dispatch(q, NewEvent("change"))
	assert.Zero(t, calls)
	assert.Zero(t, doc.ListenerCount())
}

func TestFocusSequence(t *testing.T) {
	doc := mustParse(t)
	q := byID(t, doc, "q")
	s := byID(t, doc, "s")

	var seen []string
	doc.AddEventListener(q, "blur", func(ev *Event) {
		seen = append(seen, "blur")
		assert.Same(t, s, ev.RelatedTarget)
	})
	doc.AddEventListener(s, "focus", func(*Event) { seen = append(seen, "focus") })
	doc.AddEventListener(doc.Root(), "focus", func(*Event) { seen = append(seen, "root") })

	doc.Focus(q)
	doc.Focus(s)
	assert.Equal(t, []string{"blur", "focus"}, seen)
	assert.Same(t, s, doc.ActiveElement())
}

func TestFocusInAndOutBubble(t *testing.T) {
	doc := mustParse(t)
	q := byID(t, doc, "q")

	var seen []string
	doc.AddEventListener(doc.Root(), "focusin", func(ev *Event) {
		seen = append(seen, "in")
		assert.Same(t, q, ev.Target)
	})
	doc.AddEventListener(doc.Root(), "focusout", func(*Event) { seen = append(seen, "out") })

	doc.Focus(q)
	doc.Focus(q)
	doc.Blur(q)
	assert.Equal(t, []string{"in", "out"}, seen)
	assert.Nil(t, doc.ActiveElement())
}

func TestTreeHelpers(t *testing.T) {
	doc := mustParse(t)
	s := byID(t, doc, "s")
	box := byID(t, doc, "box")
	wrapper := doc.CreateElement("DIV")
	InsertAfter(s, wrapper)
	Append(wrapper, s)
	assert.True(t, Contains(box, s))
	assert.Same(t, wrapper, s.Parent)
	assert.Equal(t, "f", AttrOr(Closest(s, "form"), "id", ""))

	AddClass(wrapper, "w")
	AddClass(wrapper, "w")
	assert.Equal(t, "w", AttrOr(wrapper, "class", ""))

	SetText(wrapper, "hi")
	assert.Equal(t, "hi", Text(wrapper))
	assert.Empty(t, Children(wrapper))
}
