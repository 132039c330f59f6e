// Package fields discovers the fillable inputs of a form container and
// extracts what identifies each of them.
package fields

import (
	"github.com/spigell/applyfill/internal/dom"
)

// Kind is the input category a field is written as.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
	KindURL      Kind = "url"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindTextarea Kind = "textarea"
	KindCheckbox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindFile     Kind = "file"
)

// TextLike reports whether values are written as free text.
func (k Kind) TextLike() bool {
	switch k {
	case KindText, KindEmail, KindPhone, KindURL, KindDate, KindTextarea:
		return true
	}
	return false
}

// Field is one discovered input.
type Field struct {
	Element     dom.Element
	Kind        Kind
	Label       string
	Placeholder string
	Name        string
	ID          string
	AriaLabel   string
	Required    bool
	// Value is the value the element held at discovery time.
	Value   string
	Options []dom.Option
}

// Handle returns the identity of the underlying element.
func (f Field) Handle() dom.Handle {
	if f.Element == nil {
		return ""
	}
	return f.Element.Handle()
}

// Describe returns the most readable identifier of the field for logs and
// reports.
func (f Field) Describe() string {
	for _, s := range []string{f.Label, f.AriaLabel, f.Placeholder, f.Name, f.ID} {
		if s != "" {
			return s
		}
	}
	return "<" + string(f.Kind) + ">"
}
