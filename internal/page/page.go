// Package page wraps an HTML snapshot of a host page behind small query
// helpers. The host DOM is externally controlled: callers re-parse a fresh
// snapshot on every scan tick instead of assuming change notifications.
package page

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Document is one parsed snapshot of a host page.
type Document struct {
	root *html.Node
	url  string
}

// Parse reads an HTML document. pageURL is the address the snapshot was
// taken from; it is used for link resolution fallbacks.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{root: root, url: pageURL}, nil
}

// ParseString parses an in-memory HTML snapshot.
func ParseString(s, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(s), pageURL)
}

// URL returns the address the snapshot was taken from.
func (d *Document) URL() string { return d.url }

// Element is one element node of a document.
type Element struct {
	node *html.Node
}

// Matcher selects elements during traversal.
type Matcher func(e *Element) bool

// Find returns the first element matching m in document order, or nil.
func (d *Document) Find(m Matcher) *Element {
	var found *Element
	walk(d.root, func(e *Element) bool {
		found = e
		return false // stop
	}, m)
	return found
}

// FindAll returns every element matching m in document order.
func (d *Document) FindAll(m Matcher) []*Element {
	var out []*Element
	walk(d.root, func(e *Element) bool {
		out = append(out, e)
		return true
	}, m)
	return out
}

// walk visits element nodes depth-first; visit returns false to stop.
func walk(n *html.Node, visit func(e *Element) bool, m Matcher) bool {
	if n.Type == html.ElementNode {
		e := &Element{node: n}
		if m(e) && !visit(e) {
			return false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit, m) {
			return false
		}
	}
	return true
}

// Tag returns the lowercase element tag name.
func (e *Element) Tag() string { return e.node.Data }

// Attr returns an attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// AttrContains reports whether the attribute exists and contains sub.
func (e *Element) AttrContains(name, sub string) bool {
	v := e.Attr(name)
	return v != "" && strings.Contains(v, sub)
}

// IntAttr parses an integer attribute; 0 when absent or malformed.
func (e *Element) IntAttr(name string) int {
	n, _ := strconv.Atoi(e.Attr(name))
	return n
}

// Text returns the element's concatenated text content, whitespace-trimmed.
func (e *Element) Text() string {
	var b strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(e.node)
	return strings.TrimSpace(b.String())
}

// Parent returns the parent element, or nil at the document root.
func (e *Element) Parent() *Element {
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return &Element{node: p}
		}
	}
	return nil
}

// Closest returns the first of the element itself and its ancestors that
// matches m, or nil.
func (e *Element) Closest(m Matcher) *Element {
	for cur := e; cur != nil; cur = cur.Parent() {
		if m(cur) {
			return cur
		}
	}
	return nil
}

// FindDescendant returns the first descendant matching m, or nil.
func (e *Element) FindDescendant(m Matcher) *Element {
	var found *Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, func(el *Element) bool {
			found = el
			return false
		}, m) {
			break
		}
	}
	return found
}

// Key returns a stable identity for the element within its snapshot: the
// path of element-child indexes from the root. Re-parsing an unchanged
// page yields the same key for the same element, which is what makes
// repeated scan ticks idempotent.
func (e *Element) Key() string {
	var parts []string
	for n := e.node; n != nil && n.Parent != nil; n = n.Parent {
		idx := 0
		for sib := n.Parent.FirstChild; sib != nil && sib != n; sib = sib.NextSibling {
			if sib.Type == html.ElementNode {
				idx++
			}
		}
		parts = append(parts, strconv.Itoa(idx))
	}
	// Reverse into root-to-leaf order.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) Matcher {
	return func(e *Element) bool { return e.Tag() == tag }
}

// AnchorWithHref matches <a> elements whose href contains sub.
func AnchorWithHref(sub string) Matcher {
	return func(e *Element) bool {
		return e.Tag() == "a" && e.AttrContains("href", sub)
	}
}

// ImgWithSrc matches <img> elements whose src contains sub.
func ImgWithSrc(sub string) Matcher {
	return func(e *Element) bool {
		return e.Tag() == "img" && e.AttrContains("src", sub)
	}
}
