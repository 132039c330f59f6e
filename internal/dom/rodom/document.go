// Package rodom implements the dom model over a live Chrome tab driven by rod.
// Every read and write runs a small function inside the page, so the page's
// own scripts observe writes exactly as they observe a user.
package rodom

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/spigell/applyfill/internal/dom"
)

// Document is a live page.
type Document struct {
	page *rod.Page
}

// New wraps page.
func New(page *rod.Page) *Document {
	return &Document{page: page}
}

// URL returns the address the page currently shows.
func (d *Document) URL() string {
	info, err := d.page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

func (d *Document) Root() dom.Element {
	el, err := d.page.ElementByJS(rod.Eval(`function() { return document.documentElement }`))
	if err != nil {
		return nil
	}
	return d.Wrap(el)
}

// HTML serialises the current document, open shadow roots excluded.
func (d *Document) HTML() (string, error) {
	res, err := d.page.Eval(`function() { return document.documentElement.outerHTML }`)
	if err != nil {
		return "", fmt.Errorf("rodom: read document: %w", err)
	}
	return res.Value.Str(), nil
}

// Wrap turns a rod element into a dom element. A nil element yields nil.
func (d *Document) Wrap(el *rod.Element) dom.Element {
	if el == nil {
		return nil
	}
	return &element{doc: d, el: el}
}

// object resolves a JS expression evaluated against el to an element, or nil
// when it yields null.
func (d *Document) object(el *rod.Element, js string, args ...interface{}) dom.Element {
	obj, err := el.Evaluate(rod.Eval(js, args...).ByObject())
	if err != nil || obj == nil || obj.ObjectID == "" || obj.Subtype == proto.RuntimeRemoteObjectSubtypeNull {
		return nil
	}
	found, err := d.page.ElementFromObject(obj)
	if err != nil {
		return nil
	}
	return d.Wrap(found)
}

func (d *Document) list(el *rod.Element, js string, args ...interface{}) []dom.Element {
	found, err := el.ElementsByJS(rod.Eval(js, args...))
	if err != nil {
		return nil
	}
	out := make([]dom.Element, 0, len(found))
	for _, f := range found {
		out = append(out, d.Wrap(f))
	}
	return out
}
