package fields

import (
	"strings"

	"github.com/spigell/applyfill/internal/dom"
	"github.com/spigell/applyfill/internal/platform"
)

// maxSiblingLabel bounds text taken from a neighbouring element, longer text is
// a paragraph rather than a label.
const maxSiblingLabel = 120

// labelOf resolves the visible label of an input and reports whether it
// carries a required marker. The placeholder is the last resort and is handled
// by the caller.
func labelOf(el dom.Element, conventions []platform.Convention) (string, bool) {
	if inputType(el) == "radio" {
		if raw := groupLabel(el); clean(raw) != "" {
			return clean(raw), markedRequired(raw)
		}
	}

	resolvers := []func() string{
		func() string { return explicitLabel(el) },
		func() string { return enclosingLabel(el) },
		func() string { return dom.AttrOr(el, "aria-label") },
		func() string { return labelledBy(el, dom.AttrOr(el, "aria-labelledby")) },
		func() string { return conventionLabel(el, conventions) },
	}
	for _, resolve := range resolvers {
		raw := resolve()
		if l := clean(raw); l != "" {
			return l, markedRequired(raw)
		}
	}
	return "", false
}

// explicitLabel finds <label for=id> in the element's own tree.
func explicitLabel(el dom.Element) string {
	id := dom.AttrOr(el, "id")
	if id == "" {
		return ""
	}
	root := el.Root()
	if root == nil {
		return ""
	}
	for _, l := range root.QueryAll("label[for=" + dom.QuoteAttr(id) + "]") {
		if t := l.Text(); t != "" {
			return t
		}
	}
	return ""
}

func enclosingLabel(el dom.Element) string {
	label := dom.Closest(el.Parent(), "label")
	if label == nil {
		return ""
	}
	text := label.Text()
	// A wrapped select contributes its option texts to the label text.
	if own := el.Text(); own != "" {
		text = strings.Replace(text, own, "", 1)
	}
	return text
}

func labelledBy(el dom.Element, ids string) string {
	if ids == "" {
		return ""
	}
	root := el.Root()
	if root == nil {
		return ""
	}

	var parts []string
	for _, id := range strings.Fields(ids) {
		for _, ref := range root.QueryAll("[id=" + dom.QuoteAttr(id) + "]") {
			if t := ref.Text(); t != "" {
				parts = append(parts, t)
				break
			}
		}
	}
	return strings.Join(parts, " ")
}

// conventionLabel applies the platform's structural conventions, then the
// generic previous-sibling convention.
func conventionLabel(el dom.Element, conventions []platform.Convention) string {
	for _, c := range conventions {
		anc := dom.Closest(el.Parent(), c.Ancestor)
		if anc == nil {
			continue
		}
		for _, l := range anc.QueryAll(c.Label) {
			if t := l.Text(); t != "" && len(t) <= maxSiblingLabel {
				return t
			}
		}
	}

	for _, cur := range []dom.Element{el, el.Parent()} {
		if cur == nil {
			continue
		}
		prev := cur.PrevSibling()
		if prev == nil || isControl(prev) || len(prev.QueryAll(controls+", button")) > 0 {
			continue
		}
		if t := prev.Text(); t != "" && len(t) <= maxSiblingLabel {
			return t
		}
	}
	return ""
}

// groupLabel returns the question text of a radio group.
func groupLabel(el dom.Element) string {
	if group := dom.Closest(el.Parent(), `[role="radiogroup"]`); group != nil {
		if l := dom.AttrOr(group, "aria-label"); l != "" {
			return l
		}
		if l := labelledBy(group, dom.AttrOr(group, "aria-labelledby")); l != "" {
			return l
		}
	}
	if fs := dom.Closest(el.Parent(), "fieldset"); fs != nil {
		for _, legend := range fs.QueryAll("legend") {
			if t := legend.Text(); t != "" {
				return t
			}
		}
	}
	return ""
}

func isControl(el dom.Element) bool {
	switch el.Tag() {
	case "input", "select", "textarea", "button":
		return true
	}
	return false
}

// clean collapses whitespace and drops a trailing required marker or colon.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	for {
		trimmed := strings.TrimSpace(strings.TrimRight(s, "*:"))
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// markedRequired reports whether raw label text ends with an asterisk.
func markedRequired(s string) bool {
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ":"))
	return strings.HasSuffix(s, "*")
}
