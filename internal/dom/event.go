package dom

import "golang.org/x/net/html"

// Event mirrors the subset of DOM event state the engine reads.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	RelatedTarget *html.Node
	Key           string
	Shift         bool

	bubbles   bool
	prevented bool
	stopped   bool
}

// NewEvent builds an event. focus and blur do not bubble, everything else does.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, bubbles: typ != "focus" && typ != "blur"}
}

// KeyEvent builds a keydown or keyup event for the given key name.
func KeyEvent(typ, key string) *Event {
	ev := NewEvent(typ)
	ev.Key = key
	return ev
}

// Bubbles reports whether the event propagates to ancestors.
func (e *Event) Bubbles() bool { return e.bubbles }

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether a listener cancelled the default action.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// StopPropagation halts bubbling after the current node.
func (e *Event) StopPropagation() { e.stopped = true }

// Listener is a registration handle returned by AddEventListener.
type Listener struct {
	node    *html.Node
	typ     string
	fn      func(*Event)
	removed bool
}

// AddEventListener registers fn for events of typ reaching n.
func (d *Document) AddEventListener(n *html.Node, typ string, fn func(*Event)) *Listener {
	l := &Listener{node: n, typ: typ, fn: fn}
	byType, ok := d.listeners[n]
	if !ok {
		byType = make(map[string][]*Listener)
		d.listeners[n] = byType
	}
	byType[typ] = append(byType[typ], l)
	return l
}

// RemoveEventListener unregisters l. Removing twice is a no-op.
func (d *Document) RemoveEventListener(l *Listener) {
	if l == nil || l.removed {
		return
	}
	l.removed = true
	byType := d.listeners[l.node]
	list := byType[l.typ]
	for i, cur := range list {
		if cur == l {
			byType[l.typ] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(byType[l.typ]) == 0 {
		delete(byType, l.typ)
	}
	if len(byType) == 0 {
		delete(d.listeners, l.node)
	}
}

// ListenerCount returns the number of live registrations.
func (d *Document) ListenerCount() int {
	total := 0
	for _, byType := range d.listeners {
		for _, list := range byType {
			total += len(list)
		}
	}
	return total
}

// Dispatch delivers ev to target and, for bubbling events, to each ancestor.
// The propagation path is fixed before the first listener runs, so a listener
// that detaches the target does not cut the path short. It returns false when
// a listener called PreventDefault.
func (d *Document) Dispatch(target *html.Node, ev *Event) bool {
	if target == nil || ev == nil {
		return true
	}
	ev.Target = target
	path := []*html.Node{target}
	if ev.bubbles {
		for p := target.Parent; p != nil; p = p.Parent {
			path = append(path, p)
		}
	}
	for _, n := range path {
		ev.CurrentTarget = n
		list := d.listeners[n][ev.Type]
		snapshot := make([]*Listener, len(list))
		copy(snapshot, list)
		for _, l := range snapshot {
			if l.removed {
				continue
			}
			l.fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return !ev.prevented
}

// ActiveElement returns the focused element, or nil.
func (d *Document) ActiveElement() *html.Node {
	return d.active
}

// Focus moves focus to n. The previous element receives blur with n as its
// related target, then n receives focus and a bubbling focusin.
func (d *Document) Focus(n *html.Node) {
	if n == nil || d.active == n {
		return
	}
	prev := d.active
	d.active = n
	if prev != nil {
		blur := NewEvent("blur")
		blur.RelatedTarget = n
		d.Dispatch(prev, blur)
	}
	if d.active != n {
		return
	}
	focus := NewEvent("focus")
	focus.RelatedTarget = prev
	d.Dispatch(n, focus)
	if d.active == n {
		focusIn := NewEvent("focusin")
		focusIn.RelatedTarget = prev
		d.Dispatch(n, focusIn)
	}
}

// Blur drops focus from n without giving it to anything else. A bubbling
// focusout follows the blur.
func (d *Document) Blur(n *html.Node) {
	if n == nil || d.active != n {
		return
	}
	d.active = nil
	d.Dispatch(n, NewEvent("blur"))
	d.Dispatch(n, NewEvent("focusout"))
}
