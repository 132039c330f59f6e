package htmldoc

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/spigell/applyfill/internal/dom"
)

type element struct {
	doc  *Document
	node *html.Node
	// shadow marks the wrapper of a declarative shadow root template.
	shadow bool
}

var _ dom.Element = (*element)(nil)

func (e *element) Handle() dom.Handle {
	h := e.doc.handle(e.node)
	if e.shadow {
		return h + "#shadow-root"
	}
	return h
}

func (e *element) Tag() string {
	if e.shadow {
		return "#shadow-root"
	}
	return strings.ToLower(e.node.Data)
}

func (e *element) Attr(name string) (string, bool) {
	if e.shadow {
		return "", false
	}
	return attr(e.node, name)
}

func (e *element) Text() string {
	var b strings.Builder
	collectText(e.node, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func (e *element) Parent() dom.Element {
	if e.shadow {
		return nil
	}
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode || isShadowRoot(p) {
		return nil
	}
	return e.doc.wrap(p)
}

func (e *element) PrevSibling() dom.Element {
	if e.shadow {
		return nil
	}
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && !isShadowRoot(s) {
			return e.doc.wrap(s)
		}
	}
	return nil
}

func (e *element) Root() dom.Element {
	if e.shadow {
		return e
	}
	for p := e.node.Parent; p != nil; p = p.Parent {
		if isShadowRoot(p) {
			return e.doc.wrapShadow(p)
		}
	}
	return e.doc.Root()
}

func (e *element) QueryAll(selector string) []dom.Element {
	var out []dom.Element
	goquery.NewDocumentFromNode(e.node).Find(selector).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if insideNestedShadow(n, e.node) {
			return
		}
		out = append(out, e.doc.wrap(n))
	})
	return out
}

func (e *element) Matches(selector string) bool {
	if e.shadow {
		return false
	}
	return goquery.NewDocumentFromNode(e.node).Is(selector)
}

func (e *element) ShadowRoot() dom.Element {
	if e.shadow {
		return nil
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if isShadowRoot(c) {
			return e.doc.wrapShadow(c)
		}
	}
	return nil
}

func (e *element) ShadowHosts() []dom.Element {
	var hosts []dom.Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || isShadowRoot(c) {
				continue
			}
			if hasShadowRoot(c) {
				hosts = append(hosts, e.doc.wrap(c))
			}
			walk(c)
		}
	}
	walk(e.node)
	return hosts
}

func (e *element) Visible() bool {
	if !e.Connected() {
		return false
	}
	if strings.EqualFold(attrOr(e.node, "type"), "hidden") && e.Tag() == "input" {
		return false
	}
	if sized := parseStyle(attrOr(e.node, "style")); sized["width"] == "0" || sized["width"] == "0px" ||
		sized["height"] == "0" || sized["height"] == "0px" {
		return false
	}

	for n := e.node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if isShadowRoot(n) {
			continue
		}
		if n.Data == "template" {
			return false
		}
		if _, ok := attr(n, "hidden"); ok {
			return false
		}
		if hiddenByStyle(attrOr(n, "style")) {
			return false
		}
	}
	return true
}

func (e *element) Connected() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.node {
			return true
		}
	}
	return false
}

func (e *element) Focused() bool {
	return !e.shadow && e.doc.focused == e.node
}

func (e *element) Value() string {
	switch e.Tag() {
	case "textarea":
		var b strings.Builder
		for c := e.node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
		return b.String()
	case "select":
		var selected []string
		opts := e.Options()
		for _, o := range opts {
			if o.Selected {
				selected = append(selected, o.Value)
			}
		}
		if len(selected) == 0 && len(opts) > 0 && !e.multiple() {
			return opts[0].Value
		}
		return strings.Join(selected, ", ")
	case "input":
		v, ok := attr(e.node, "value")
		if !ok && isToggle(e.node) {
			return "on"
		}
		return v
	}
	return attrOr(e.node, "value")
}

func (e *element) Checked() bool {
	_, ok := attr(e.node, "checked")
	return ok && !e.shadow
}

func (e *element) Options() []dom.Option {
	if e.Tag() != "select" {
		return nil
	}
	var opts []dom.Option
	for _, n := range e.optionNodes() {
		text := strings.Join(strings.Fields(nodeText(n)), " ")
		value, ok := attr(n, "value")
		if !ok {
			value = text
		}
		_, selected := attr(n, "selected")
		_, disabled := attr(n, "disabled")
		if p := n.Parent; p != nil && p.Data == "optgroup" {
			if _, ok := attr(p, "disabled"); ok {
				disabled = true
			}
		}
		opts = append(opts, dom.Option{Value: value, Text: text, Selected: selected, Disabled: disabled})
	}
	return opts
}

func (e *element) SetNativeValue(value string) error {
	if err := e.writable(); err != nil {
		return err
	}

	switch e.Tag() {
	case "textarea":
		for c := e.node.FirstChild; c != nil; {
			next := c.NextSibling
			e.node.RemoveChild(c)
			c = next
		}
		if value != "" {
			e.node.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		}
	case "select":
		for _, n := range e.optionNodes() {
			v, ok := attr(n, "value")
			if !ok {
				v = strings.Join(strings.Fields(nodeText(n)), " ")
			}
			setAttr(n, "selected", v == value && value != "")
		}
	default:
		setAttrValue(e.node, "value", value)
	}
	return nil
}

func (e *element) SetChecked(checked bool) error {
	if err := e.writable(); err != nil {
		return err
	}

	if checked && strings.EqualFold(attrOr(e.node, "type"), "radio") {
		if name := attrOr(e.node, "name"); name != "" {
			for _, other := range e.Root().QueryAll("input[type=radio][name=" + dom.QuoteAttr(name) + "]") {
				o, ok := other.(*element)
				if ok && o.node != e.node {
					setAttr(o.node, "checked", false)
				}
			}
		}
	}
	setAttr(e.node, "checked", checked)
	return nil
}

func (e *element) SelectOptions(indexes []int) error {
	if err := e.writable(); err != nil {
		return err
	}

	want := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		want[i] = true
	}
	for i, n := range e.optionNodes() {
		setAttr(n, "selected", want[i])
	}
	return nil
}

func (e *element) Focus() error {
	if err := e.writable(); err != nil {
		return err
	}
	e.doc.focused = e.node
	e.doc.record(e.node, dom.EventFocus)
	return nil
}

func (e *element) Dispatch(event string) error {
	if err := e.writable(); err != nil {
		return err
	}
	if event == dom.EventBlur && e.doc.focused == e.node {
		e.doc.focused = nil
	}
	e.doc.record(e.node, event)
	return nil
}

func (e *element) InvokeFrameworkHandler(event string) (bool, error) {
	if err := e.writable(); err != nil {
		return false, err
	}
	fn, ok := e.doc.handlers[e.node]
	if !ok {
		return false, nil
	}
	fn(event, e.Value())
	e.doc.record(e.node, "handler:"+event)
	return true, nil
}

func (e *element) writable() error {
	if e.shadow || !e.Connected() {
		return dom.ErrDetached
	}
	return nil
}

func (e *element) multiple() bool {
	_, ok := attr(e.node, "multiple")
	return ok
}

func (e *element) optionNodes() []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "option":
				out = append(out, c)
			case "optgroup":
				walk(c)
			}
		}
	}
	walk(e.node)
	return out
}

func isShadowRoot(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.Data != "template" {
		return false
	}
	_, ok := attr(n, "shadowrootmode")
	return ok
}

func hasShadowRoot(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isShadowRoot(c) {
			return true
		}
	}
	return false
}

// insideNestedShadow reports whether a shadow root sits between n and top.
func insideNestedShadow(n, top *html.Node) bool {
	for p := n.Parent; p != nil && p != top; p = p.Parent {
		if isShadowRoot(p) {
			return true
		}
	}
	return false
}

func isToggle(n *html.Node) bool {
	t := strings.ToLower(attrOr(n, "type"))
	return t == "checkbox" || t == "radio"
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func attrOr(n *html.Node, name string) string {
	v, _ := attr(n, name)
	return v
}

// setAttr toggles a boolean attribute.
func setAttr(n *html.Node, name string, on bool) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if !strings.EqualFold(a.Key, name) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
	if on {
		n.Attr = append(n.Attr, html.Attribute{Key: name})
	}
}

func setAttrValue(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

// collectText gathers text content without entering nested shadow roots.
func collectText(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			b.WriteString(c.Data)
			b.WriteByte(' ')
		case c.Type != html.ElementNode:
		case c.Data == "script" || c.Data == "style":
		case isShadowRoot(c):
		default:
			collectText(c, b)
		}
	}
}

func parseStyle(style string) map[string]string {
	decls := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.ToLower(strings.TrimSpace(v))
		v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
		decls[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return decls
}

func hiddenByStyle(style string) bool {
	if style == "" {
		return false
	}
	decls := parseStyle(style)
	if decls["display"] == "none" || decls["visibility"] == "hidden" {
		return true
	}
	if op, ok := decls["opacity"]; ok {
		if f, err := strconv.ParseFloat(op, 64); err == nil && f == 0 {
			return true
		}
	}
	return false
}
