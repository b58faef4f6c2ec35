// Package dom adapts a parsed HTML document to the element interfaces used by
// the enhancer package, so page behaviour can run against real markup
// outside a browser.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ghiac/ephdash/enhancer"
)

// scrollTopAttr stores the scroll position on the element itself so it
// survives a Render round trip.
const scrollTopAttr = "data-scroll-top"

// Document is a parsed HTML tree. All reads and writes through its elements
// hold the document lock, so a running countdown can update the tree while
// other goroutines render it.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render serializes the current tree.
func (d *Document) Render() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return buf.String(), nil
}

// QuerySelector returns the first element matching sel in document order, or
// nil. Supported forms are tag, .class, #id and combinations such as
// pre.logpane or select#repo.
func (d *Document) QuerySelector(sel string) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := parseSelector(sel)
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if m.matches(n) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return &Element{doc: d, node: found}
}

// QuerySelectorAll returns every element matching sel in document order.
func (d *Document) QuerySelectorAll(sel string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := parseSelector(sel)
	var out []*Element
	walk(d.root, func(n *html.Node) bool {
		if m.matches(n) {
			out = append(out, &Element{doc: d, node: n})
		}
		return true
	})
	return out
}

// Page collects the enhancer's elements from the document. Absent elements
// leave their field nil.
func (d *Document) Page(loc enhancer.Location) enhancer.Page {
	var p enhancer.Page
	if el := d.QuerySelector("." + enhancer.ClassLogPane); el != nil {
		p.LogPane = el
	}
	if el := d.QuerySelector("." + enhancer.ClassExpiration); el != nil {
		p.Expiration = el
	}
	if el := d.QuerySelector("." + enhancer.ClassCountdown); el != nil {
		p.Countdown = el
	}
	if el := d.QuerySelector("#" + enhancer.IDRepo); el != nil {
		p.Repo = el
	}
	if el := d.QuerySelector("#" + enhancer.IDBranch); el != nil {
		p.Branch = el
	}
	if el := d.QuerySelector("#" + enhancer.IDPath); el != nil {
		p.Path = el
	}
	if loc != nil {
		p.Location = loc
	}
	return p
}

// walk visits n and its descendants depth first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(sel string) selector {
	var s selector
	sel = strings.TrimSpace(sel)
	for sel != "" {
		i := strings.IndexAny(sel[1:], ".#") + 1
		if i == 0 {
			i = len(sel)
		}
		part := sel[:i]
		sel = sel[i:]
		switch part[0] {
		case '.':
			s.classes = append(s.classes, part[1:])
		case '#':
			s.id = part[1:]
		default:
			s.tag = strings.ToLower(part)
		}
	}
	return s
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag == "" && s.id == "" && len(s.classes) == 0 {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && attr(n, "id") != s.id {
		return false
	}
	if len(s.classes) > 0 {
		have := strings.Fields(attr(n, "class"))
		for _, want := range s.classes {
			if !contains(have, want) {
				return false
			}
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func isTag(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
