package dom

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or fallback when it is missing or empty.
func AttrOr(n *html.Node, key, fallback string) string {
	if v, ok := Attr(n, key); ok && v != "" {
		return v
	}
	return fallback
}

// HasAttr reports whether the attribute is present.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr creates or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the class list contains name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(AttrOr(n, "class", "")) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the class list once.
func AddClass(n *html.Node, name string) {
	if HasClass(n, name) {
		return
	}
	classes := strings.Fields(AttrOr(n, "class", ""))
	SetAttr(n, "class", strings.Join(append(classes, name), " "))
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return htmlquery.InnerText(n)
}

// SetText replaces every child of n with a single text node.
func SetText(n *html.Node, text string) {
	ClearChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// ClearChildren removes every child of n.
func ClearChildren(n *html.Node) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Children returns the element children of n in order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Append moves child to the end of parent's children.
func Append(parent, child *html.Node) {
	Detach(child)
	parent.AppendChild(child)
}

// InsertBefore moves n so that it directly precedes ref.
func InsertBefore(ref, n *html.Node) {
	if ref == nil || ref.Parent == nil {
		return
	}
	Detach(n)
	ref.Parent.InsertBefore(n, ref)
}

// InsertAfter moves n so that it directly follows ref.
func InsertAfter(ref, n *html.Node) {
	if ref == nil || ref.Parent == nil {
		return
	}
	Detach(n)
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Contains reports whether n is ancestor or n itself.
func Contains(ancestor, n *html.Node) bool {
	if ancestor == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor (excluding n) with the given tag.
func Closest(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if IsElement(cur, tag) {
			return cur
		}
	}
	return nil
}

func newElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}
