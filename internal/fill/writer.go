// Package fill writes values into page fields the way a user would, so the
// page's own scripts observe every change, and keeps the history needed to
// revert those writes.
package fill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/dom"
	"github.com/spigell/applyfill/internal/fields"
)

var (
	ErrValidation    = errors.New("value rejected by validation")
	ErrNoOptionMatch = errors.New("no option matches the value")
	ErrRadioMismatch = errors.New("radio value does not match")
	ErrFileInput     = errors.New("file inputs cannot be filled programmatically")
	ErrDetached      = dom.ErrDetached
)

// Skipped reports whether err means the field was left untouched on purpose
// rather than failing mid-write.
func Skipped(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNoOptionMatch) ||
		errors.Is(err, ErrRadioMismatch) || errors.Is(err, ErrFileInput)
}

// Writer performs type-aware writes and replays the events a page expects:
// focus (when not focused yet), input, change, the private change handler if
// the page keeps one, and blur.
type Writer struct {
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Fill validates value for the field kind and writes it. An empty value
// clears the field without validation.
func (w *Writer) Fill(ctx context.Context, f fields.Field, value string) error {
	return w.write(ctx, f, value)
}

// Restore writes back a value captured by Current. Toggles take "true" or
// "false"; everything else goes through Fill, so an original the field kind
// rejects is not written back.
func (w *Writer) Restore(ctx context.Context, f fields.Field, original string) error {
	if f.Kind == fields.KindCheckbox || f.Kind == fields.KindRadio {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := live(f.Element); err != nil {
			return err
		}
		return w.replay(f.Element, func() error { return f.Element.SetChecked(original == "true") })
	}
	return w.write(ctx, f, original)
}

// Current captures the state of a field in the form Restore accepts.
func Current(f fields.Field) string {
	if f.Element == nil {
		return ""
	}
	switch f.Kind {
	case fields.KindCheckbox, fields.KindRadio:
		if f.Element.Checked() {
			return "true"
		}
		return "false"
	}
	return f.Element.Value()
}

func (w *Writer) write(ctx context.Context, f fields.Field, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Kind == fields.KindFile {
		return ErrFileInput
	}
	el := f.Element
	if err := live(el); err != nil {
		return err
	}

	var set func() error
	switch f.Kind {
	case fields.KindCheckbox:
		checked := truthy(value)
		set = func() error { return el.SetChecked(checked) }
	case fields.KindRadio:
		if value != "" && el.Value() != value {
			return fmt.Errorf("%w: element value %q, wanted %q", ErrRadioMismatch, el.Value(), value)
		}
		checked := value != ""
		set = func() error { return el.SetChecked(checked) }
	case fields.KindSelect:
		indexes, err := chooseOptions(el, value)
		if err != nil {
			return err
		}
		set = func() error { return el.SelectOptions(indexes) }
	default:
		if value != "" {
			if err := Validate(f.Kind, value); err != nil {
				return err
			}
		}
		if f.Kind == fields.KindDate {
			value = nativeDate(strings.ToLower(dom.AttrOr(el, "type")), value)
		}
		set = func() error { return el.SetNativeValue(value) }
	}

	if err := w.replay(el, set); err != nil {
		return err
	}
	w.logger.Debug("field written", zap.String("field", f.Describe()), zap.String("kind", string(f.Kind)))
	return nil
}

func (w *Writer) replay(el dom.Element, set func() error) error {
	if !el.Focused() {
		if err := el.Focus(); err != nil {
			return fmt.Errorf("focusing field: %w", err)
		}
	}
	if err := set(); err != nil {
		return fmt.Errorf("setting value: %w", err)
	}
	for _, event := range []string{dom.EventInput, dom.EventChange} {
		if err := el.Dispatch(event); err != nil {
			return fmt.Errorf("dispatching %s: %w", event, err)
		}
	}
	found, err := el.InvokeFrameworkHandler(dom.EventChange)
	if err != nil {
		return fmt.Errorf("invoking page change handler: %w", err)
	}
	if found {
		w.logger.Debug("page change handler invoked")
	}
	if err := el.Dispatch(dom.EventBlur); err != nil {
		return fmt.Errorf("dispatching %s: %w", dom.EventBlur, err)
	}
	return nil
}

func live(el dom.Element) error {
	if el == nil || !el.Connected() {
		return ErrDetached
	}
	return nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on", "checked":
		return true
	}
	return false
}

// chooseOptions picks the options to select for value. Multi-selects take a
// comma separated list. Every wanted entry must match an enabled option.
func chooseOptions(el dom.Element, value string) ([]int, error) {
	opts := el.Options()
	value = strings.TrimSpace(value)

	if value == "" {
		for i, o := range opts {
			if o.Value == "" {
				return []int{i}, nil
			}
		}
		return nil, nil
	}

	wants := []string{value}
	if dom.HasAttr(el, "multiple") {
		wants = wants[:0]
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				wants = append(wants, part)
			}
		}
	}

	indexes := make([]int, 0, len(wants))
	for _, want := range wants {
		i := findOption(opts, want)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoOptionMatch, want)
		}
		indexes = append(indexes, i)
	}
	return indexes, nil
}

// findOption matches an option by exact value or text first, then by a
// case-insensitive substring of its text or value.
func findOption(opts []dom.Option, want string) int {
	for i, o := range opts {
		if !o.Disabled && (o.Value == want || o.Text == want) {
			return i
		}
	}

	lw := strings.ToLower(want)
	for i, o := range opts {
		if o.Disabled {
			continue
		}
		if strings.Contains(strings.ToLower(o.Text), lw) || strings.Contains(strings.ToLower(o.Value), lw) {
			return i
		}
	}
	return -1
}
