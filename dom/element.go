package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a node of a Document. It satisfies the enhancer's ScrollPane,
// TextSource, TextSink and Selector interfaces.
type Element struct {
	doc  *Document
	node *html.Node
}

// Tag returns the element name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of an attribute, or "".
func (e *Element) Attr(key string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attr(e.node, key)
}

// Text returns the concatenated text of the element's subtree.
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return textContent(e.node)
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// Lines splits the element's text into lines. A trailing newline does not
// produce an empty last line.
func (e *Element) Lines() []string {
	text := strings.TrimRight(e.Text(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ScrollHeight is the number of text lines in the element.
func (e *Element) ScrollHeight() int {
	return len(e.Lines())
}

// ScrollTop returns the stored scroll position in lines.
func (e *Element) ScrollTop() int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return parseInt(attr(e.node, scrollTopAttr))
}

// SetScrollTop stores a scroll position, clamped to [0, ScrollHeight].
func (e *Element) SetScrollTop(top int) {
	height := e.ScrollHeight()
	if top > height {
		top = height
	}
	if top < 0 {
		top = 0
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, scrollTopAttr, strconv.Itoa(top))
}

// Visible returns up to rows lines ending at the scroll position, the way a
// viewport of that height scrolled to ScrollTop would show them.
func (e *Element) Visible(rows int) []string {
	lines := e.Lines()
	end := e.ScrollTop()
	if end > len(lines) {
		end = len(lines)
	}
	start := end - rows
	if start < 0 || rows <= 0 {
		start = 0
	}
	return lines[start:end]
}

// Value returns the current value of a form control. For a select it is the
// selected option's value, falling back to the first option.
func (e *Element) Value() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if !isTag(e.node, atom.Select) {
		return attr(e.node, "value")
	}
	opts := options(e.node)
	for _, o := range opts {
		if hasAttr(o, "selected") {
			return optionValue(o)
		}
	}
	if len(opts) > 0 {
		return optionValue(opts[0])
	}
	return ""
}

// SetValue selects the option with the given value, or sets the value
// attribute of a non-select control.
func (e *Element) SetValue(value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if !isTag(e.node, atom.Select) {
		setAttr(e.node, "value", value)
		return nil
	}

	var match *html.Node
	opts := options(e.node)
	for _, o := range opts {
		if optionValue(o) == value {
			match = o
			break
		}
	}
	if match == nil {
		return fmt.Errorf("no option %q in select #%s", value, attr(e.node, "id"))
	}
	for _, o := range opts {
		removeAttr(o, "selected")
	}
	setAttr(match, "selected", "")
	return nil
}

// Options lists the option values of a select.
func (e *Element) Options() []string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var out []string
	for _, o := range options(e.node) {
		out = append(out, optionValue(o))
	}
	return out
}

func options(n *html.Node) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		if isTag(c, atom.Option) {
			out = append(out, c)
		}
		return true
	})
	return out
}

func optionValue(o *html.Node) string {
	if hasAttr(o, "value") {
		return attr(o, "value")
	}
	return strings.TrimSpace(textContent(o))
}
