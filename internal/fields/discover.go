package fields

import (
	"strings"

	"github.com/spigell/applyfill/internal/dom"
	"github.com/spigell/applyfill/internal/platform"
)

const controls = "input, select, textarea"

// Options tunes discovery.
type Options struct {
	// Conventions are the structural label conventions of the detected
	// platform.
	Conventions []platform.Convention
	// IncludeHidden keeps invisible controls. Used by diagnostics only.
	IncludeHidden bool
}

// Discover enumerates the fillable controls of container in document order,
// light tree first and then every shadow root reachable from it. Hidden,
// disabled, read-only and button-like controls are skipped.
func Discover(container dom.Element, opts Options) []Field {
	if container == nil {
		return nil
	}

	var (
		out  []Field
		seen = make(map[dom.Handle]bool)
	)
	for _, el := range dom.QueryDeep(container, controls) {
		if seen[el.Handle()] || !usable(el, opts) {
			continue
		}
		seen[el.Handle()] = true
		out = append(out, describe(el, opts))
	}
	return out
}

func usable(el dom.Element, opts Options) bool {
	if !el.Connected() {
		return false
	}
	if el.Tag() == "input" && skippedTypes[inputType(el)] {
		return false
	}
	if dom.HasAttr(el, "disabled") || dom.HasAttr(el, "readonly") {
		return false
	}
	if strings.EqualFold(dom.AttrOr(el, "aria-disabled"), "true") {
		return false
	}
	return opts.IncludeHidden || el.Visible()
}

func describe(el dom.Element, opts Options) Field {
	f := Field{
		Element:     el,
		Placeholder: clean(dom.AttrOr(el, "placeholder")),
		Name:        dom.AttrOr(el, "name"),
		ID:          dom.AttrOr(el, "id"),
		AriaLabel:   clean(dom.AttrOr(el, "aria-label")),
	}

	label, starred := labelOf(el, opts.Conventions)
	if label == "" {
		label = f.Placeholder
	}
	f.Label = label
	f.Kind = kindOf(el, f.Label, f.Name, f.ID)
	f.Required = starred || dom.HasAttr(el, "required") ||
		strings.EqualFold(dom.AttrOr(el, "aria-required"), "true")

	switch f.Kind {
	case KindCheckbox, KindRadio:
		if el.Checked() {
			f.Value = el.Value()
		}
	case KindSelect:
		f.Options = el.Options()
		f.Value = chosen(f.Options)
	default:
		f.Value = el.Value()
	}
	return f
}

// chosen joins the values of the selected options. The first option only
// counts when it is not the default placeholder entry.
func chosen(opts []dom.Option) string {
	var values []string
	for i, o := range opts {
		if !o.Selected || (i == 0 && (o.Value == "" || len(opts) > 1)) {
			continue
		}
		values = append(values, o.Value)
	}
	return strings.Join(values, ", ")
}
