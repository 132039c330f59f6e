// Package dom defines the element handle model shared by the static and live
// page backends. An Element is a non-owning reference into a host page: the
// page decides its lifetime, so callers re-check Connected before acting on a
// handle they obtained earlier.
package dom

import (
	"errors"
	"strings"
)

// Handle is the comparable identity of an element. Two Element values that
// refer to the same node return the same Handle.
type Handle string

// Event names dispatched by the field writer.
const (
	EventFocus  = "focus"
	EventInput  = "input"
	EventChange = "change"
	EventBlur   = "blur"
)

// ErrDetached is returned by write operations on an element that is no longer
// attached to its document.
var ErrDetached = errors.New("element is detached from the document")

// Option is a single entry of a select element.
type Option struct {
	Value    string
	Text     string
	Selected bool
	Disabled bool
}

// Element is a node of a host page.
//
// Read methods never fail: a node that vanished or an attribute that cannot be
// read yields a zero value. Write methods return an error.
type Element interface {
	Handle() Handle
	// Tag returns the lower-case tag name.
	Tag() string
	Attr(name string) (string, bool)
	// Text returns the whitespace-collapsed text content.
	Text() string
	Parent() Element
	// PrevSibling returns the previous element sibling.
	PrevSibling() Element
	// Root returns the tree root containing the element: the document element
	// or the shadow root the element lives in.
	Root() Element
	// QueryAll returns descendants matching a CSS selector without entering
	// shadow roots.
	QueryAll(selector string) []Element
	Matches(selector string) bool
	// ShadowRoot returns the isolated sub-tree attached to the element, if any.
	ShadowRoot() Element
	// ShadowHosts returns descendants (light tree only) that carry a shadow root.
	ShadowHosts() []Element
	Visible() bool
	Connected() bool
	Focused() bool
	Value() string
	Checked() bool
	Options() []Option

	// SetNativeValue writes the value through the platform-level property
	// setter, bypassing any setter override installed by page scripts.
	SetNativeValue(value string) error
	SetChecked(checked bool) error
	// SelectOptions marks exactly the options at the given indexes as selected.
	SelectOptions(indexes []int) error
	Focus() error
	// Dispatch fires a bubbling event of the given type on the element.
	Dispatch(event string) error
	// InvokeFrameworkHandler calls a change handler that page scripts keep as
	// a private property of the element. It reports whether one was found.
	InvokeFrameworkHandler(event string) (bool, error)
}

// Document is a host page.
type Document interface {
	URL() string
	Root() Element
}

// AttrOr returns the trimmed attribute value or an empty string. It tolerates
// a nil element.
func AttrOr(el Element, name string) string {
	if el == nil {
		return ""
	}
	v, _ := el.Attr(name)
	return strings.TrimSpace(v)
}

// HasAttr reports whether the element carries the attribute.
func HasAttr(el Element, name string) bool {
	if el == nil {
		return false
	}
	_, ok := el.Attr(name)
	return ok
}

// QueryDeep returns descendants of root matching selector, entering every
// shadow root found along the way. Results from the light tree come first.
func QueryDeep(root Element, selector string) []Element {
	if root == nil {
		return nil
	}

	found := root.QueryAll(selector)
	if shadow := root.ShadowRoot(); shadow != nil {
		found = append(found, QueryDeep(shadow, selector)...)
	}
	for _, host := range root.ShadowHosts() {
		if shadow := host.ShadowRoot(); shadow != nil {
			found = append(found, QueryDeep(shadow, selector)...)
		}
	}
	return found
}

// Closest walks up from el (inclusive) and returns the first element matching
// selector, stopping at the tree root.
func Closest(el Element, selector string) Element {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.Matches(selector) {
			return cur
		}
	}
	return nil
}

// QuoteAttr quotes a value for use inside a CSS attribute selector.
func QuoteAttr(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
