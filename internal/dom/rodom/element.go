package rodom

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"

	"github.com/spigell/applyfill/internal/dom"
)

type element struct {
	doc *Document
	el  *rod.Element

	once   sync.Once
	handle dom.Handle
}

// Handle is derived from the backend node id, which stays stable for the
// lifetime of the node across element objects.
func (e *element) Handle() dom.Handle {
	e.once.Do(func() {
		node, err := e.el.Describe(0, false)
		if err != nil || node == nil {
			e.handle = dom.Handle(fmt.Sprintf("object-%s", e.el.Object.ObjectID))
			return
		}
		e.handle = dom.Handle(fmt.Sprintf("node-%d", node.BackendNodeID))
	})
	return e.handle
}

func (e *element) str(js string, args ...interface{}) string {
	res, err := e.el.Eval(js, args...)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *element) flag(js string, args ...interface{}) bool {
	res, err := e.el.Eval(js, args...)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

func (e *element) Tag() string {
	return e.str(`function() {
		return this.nodeType === 11 ? '#shadow-root' : this.tagName.toLowerCase()
	}`)
}

func (e *element) Attr(name string) (string, bool) {
	res, err := e.el.Eval(`function(n) {
		return this.nodeType === 1 && this.hasAttribute(n) ? [this.getAttribute(n)] : []
	}`, name)
	if err != nil {
		return "", false
	}
	arr := res.Value.Arr()
	if len(arr) == 0 {
		return "", false
	}
	return arr[0].Str(), true
}

func (e *element) Text() string {
	return strings.Join(strings.Fields(e.str(`function() { return this.textContent || '' }`)), " ")
}

func (e *element) Parent() dom.Element {
	return e.doc.object(e.el, `function() { return this.parentElement }`)
}

func (e *element) PrevSibling() dom.Element {
	return e.doc.object(e.el, `function() { return this.previousElementSibling || null }`)
}

func (e *element) Root() dom.Element {
	return e.doc.object(e.el, `function() {
		const r = this.getRootNode();
		return r.nodeType === 9 ? r.documentElement : r
	}`)
}

func (e *element) QueryAll(selector string) []dom.Element {
	return e.doc.list(e.el, `function(s) {
		try { return Array.from(this.querySelectorAll(s)) } catch (e) { return [] }
	}`, selector)
}

func (e *element) Matches(selector string) bool {
	return e.flag(`function(s) {
		try { return this.nodeType === 1 && this.matches(s) } catch (e) { return false }
	}`, selector)
}

func (e *element) ShadowRoot() dom.Element {
	return e.doc.object(e.el, `function() { return this.shadowRoot || null }`)
}

func (e *element) ShadowHosts() []dom.Element {
	return e.doc.list(e.el, `function() {
		return Array.from(this.querySelectorAll('*')).filter(n => n.shadowRoot)
	}`)
}

func (e *element) Visible() bool {
	return e.flag(visibleJS)
}

func (e *element) Connected() bool {
	return e.flag(`function() { return this.isConnected }`)
}

func (e *element) Focused() bool {
	return e.flag(`function() { return this.getRootNode().activeElement === this }`)
}

func (e *element) Value() string {
	return e.str(`function() {
		if (this instanceof HTMLSelectElement) {
			return Array.from(this.selectedOptions).map(o => o.value).join(', ')
		}
		if (this.type === 'checkbox' || this.type === 'radio') {
			return this.value || 'on'
		}
		return this.value == null ? '' : String(this.value)
	}`)
}

func (e *element) Checked() bool {
	return e.flag(`function() { return !!this.checked }`)
}

func (e *element) Options() []dom.Option {
	res, err := e.el.Eval(`function() {
		if (!(this instanceof HTMLSelectElement)) return [];
		return Array.from(this.options).map(o => ({
			value: o.value, text: o.text, selected: o.selected, disabled: o.disabled
		}))
	}`)
	if err != nil {
		return nil
	}

	var out []dom.Option
	for _, o := range res.Value.Arr() {
		out = append(out, dom.Option{
			Value:    o.Get("value").Str(),
			Text:     strings.Join(strings.Fields(o.Get("text").Str()), " "),
			Selected: o.Get("selected").Bool(),
			Disabled: o.Get("disabled").Bool(),
		})
	}
	return out
}

func (e *element) SetNativeValue(value string) error {
	return e.write(setValueJS, value)
}

func (e *element) SetChecked(checked bool) error {
	return e.write(`function(c) {
		const d = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'checked');
		d.set.call(this, c);
	}`, checked)
}

func (e *element) SelectOptions(indexes []int) error {
	if indexes == nil {
		indexes = []int{}
	}
	return e.write(`function(idx) {
		const want = new Set(idx);
		const d = Object.getOwnPropertyDescriptor(HTMLOptionElement.prototype, 'selected');
		Array.from(this.options).forEach((o, i) => d.set.call(o, want.has(i)));
	}`, indexes)
}

func (e *element) Focus() error {
	return e.write(`function() {
		this.focus({preventScroll: true});
		if (this.getRootNode().activeElement !== this) {
			this.dispatchEvent(new FocusEvent('focus', {bubbles: true, composed: true}));
		}
	}`)
}

func (e *element) Dispatch(event string) error {
	return e.write(dispatchJS, event)
}

func (e *element) InvokeFrameworkHandler(event string) (bool, error) {
	if !e.Connected() {
		return false, dom.ErrDetached
	}
	res, err := e.el.Eval(handlerJS, event)
	if err != nil {
		return false, fmt.Errorf("rodom: %s handler: %w", event, err)
	}
	return res.Value.Bool(), nil
}

func (e *element) write(js string, args ...interface{}) error {
	if !e.Connected() {
		return dom.ErrDetached
	}
	if _, err := e.el.Eval(js, args...); err != nil {
		return fmt.Errorf("rodom: %w", err)
	}
	return nil
}
