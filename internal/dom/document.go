// Package dom is the small document model the autosuggest engine mutates. It
// keeps golang.org/x/net/html nodes as elements and adds what a static tree
// lacks: live input values, event listeners with bubbling, and focus.
//
// A Document is not safe for concurrent use. Every call is expected to happen
// on the event loop that owns it.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

const emptyPage = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document owns a node tree plus the runtime state attached to its elements.
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]*Listener
	values    map[*html.Node]string
	active    *html.Node
}

// NewDocument returns an empty page with head and body.
func NewDocument() *Document {
	doc, err := ParseString(emptyPage)
	if err != nil {
		panic(fmt.Sprintf("dom: parse empty page: %v", err))
	}
	return doc
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]*Listener),
		values:    make(map[*html.Node]string),
	}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the document node. Listeners registered on it observe every
// bubbling event of the page.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the body element.
func (d *Document) Body() *html.Node {
	return htmlquery.FindOne(d.root, "//body")
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) *html.Node {
	return newElement(strings.ToLower(tag))
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *html.Node) bool {
	return Contains(d.root, n)
}

// Select returns every element under root matching the CSS selector group.
func (d *Document) Select(root *html.Node, selector string) ([]*html.Node, error) {
	if root == nil {
		root = d.root
	}
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return cascadia.QueryAll(root, group), nil
}

// FindByAttr returns the elements under root whose attribute key equals val.
func (d *Document) FindByAttr(root *html.Node, key, val string) []*html.Node {
	if root == nil {
		root = d.root
	}
	if strings.ContainsAny(val, `'"`) || strings.ContainsAny(key, `'"[]/ `) {
		return findByAttrWalk(root, key, val)
	}
	nodes, err := htmlquery.QueryAll(root, fmt.Sprintf(".//*[@%s='%s']", key, val))
	if err != nil {
		return findByAttrWalk(root, key, val)
	}
	return nodes
}

func findByAttrWalk(root *html.Node, key, val string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if v, ok := Attr(c, key); ok && v == val {
					out = append(out, c)
				}
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// Value returns the live value of an input, falling back to its attribute.
func (d *Document) Value(n *html.Node) string {
	if v, ok := d.values[n]; ok {
		return v
	}
	return AttrOr(n, "value", "")
}

// SetValue changes the live value without touching the attribute and without
// dispatching events, like assigning to input.value.
func (d *Document) SetValue(n *html.Node, v string) {
	if n == nil {
		return
	}
	d.values[n] = v
}

// Remove detaches n and drops the focus if it lived inside n.
func (d *Document) Remove(n *html.Node) {
	if n == nil {
		return
	}
	if d.active != nil && Contains(n, d.active) {
		d.active = nil
	}
	Detach(n)
}

// Empty removes every child of n, dropping the focus if it lived inside.
func (d *Document) Empty(n *html.Node) {
	if n == nil {
		return
	}
	if d.active != nil && d.active != n && Contains(n, d.active) {
		d.active = nil
	}
	ClearChildren(n)
}

// Render writes the HTML serialisation of n, or of the whole page when n is nil.
func (d *Document) Render(w io.Writer, n *html.Node) error {
	if n == nil {
		n = d.root
	}
	return html.Render(w, n)
}

// OuterHTML renders n to a string.
func (d *Document) OuterHTML(n *html.Node) string {
	var b strings.Builder
	if err := d.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}
