// Package htmldoc is the static page backend: an HTML document parsed with
// golang.org/x/net/html and queried through goquery. Declarative shadow roots
// (<template shadowrootmode="open|closed">) are treated as isolated sub-trees.
// Writes mutate the parsed tree and append to an event log so that callers can
// inspect what a live page would have observed.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/spigell/applyfill/internal/dom"
)

// Event is a dispatched event recorded by the document.
type Event struct {
	Handle dom.Handle
	Type   string
}

// HandlerFunc imitates a change handler kept privately by page scripts.
type HandlerFunc func(event, value string)

// Document is a parsed, mutable HTML page.
type Document struct {
	url      string
	node     *html.Node
	handles  map[*html.Node]dom.Handle
	seq      int
	focused  *html.Node
	events   []Event
	handlers map[*html.Node]HandlerFunc
}

var _ dom.Document = (*Document)(nil)

// Parse reads an HTML page. pageURL is reported by URL and may be empty.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &Document{
		url:      pageURL,
		node:     node,
		handles:  make(map[*html.Node]dom.Handle),
		handlers: make(map[*html.Node]HandlerFunc),
	}, nil
}

// ParseString is Parse over a string.
func ParseString(s, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(s), pageURL)
}

func (d *Document) URL() string { return d.url }

// Root returns the <html> element.
func (d *Document) Root() dom.Element {
	for c := d.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Find returns the first element matching selector anywhere in the page,
// shadow roots included.
func (d *Document) Find(selector string) dom.Element {
	found := dom.QueryDeep(d.Root(), selector)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// Events returns the events dispatched so far.
func (d *Document) Events() []Event {
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// EventsFor returns the event types dispatched on one element, in order.
func (d *Document) EventsFor(el dom.Element) []string {
	var types []string
	for _, e := range d.events {
		if e.Handle == el.Handle() {
			types = append(types, e.Type)
		}
	}
	return types
}

// ResetEvents clears the event log.
func (d *Document) ResetEvents() {
	d.events = nil
}

// AttachHandler registers a private change handler on the element.
func (d *Document) AttachHandler(el dom.Element, fn HandlerFunc) {
	e, ok := el.(*element)
	if !ok || e.doc != d {
		return
	}
	d.handlers[e.node] = fn
}

// Remove detaches the element from the tree, as page scripts may do.
func (d *Document) Remove(el dom.Element) {
	e, ok := el.(*element)
	if !ok || e.node.Parent == nil {
		return
	}
	e.node.Parent.RemoveChild(e.node)
}

// HTML renders the current state of the page.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Document) handle(n *html.Node) dom.Handle {
	if h, ok := d.handles[n]; ok {
		return h
	}
	d.seq++
	h := dom.Handle(fmt.Sprintf("node-%d", d.seq))
	d.handles[n] = h
	return h
}

func (d *Document) record(n *html.Node, event string) {
	d.events = append(d.events, Event{Handle: d.handle(n), Type: event})
}

// wrap returns a nil interface for a nil node.
func (d *Document) wrap(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return &element{doc: d, node: n}
}

func (d *Document) wrapShadow(n *html.Node) dom.Element {
	if n == nil {
		return nil
	}
	return &element{doc: d, node: n, shadow: true}
}
