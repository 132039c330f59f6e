package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/matching"
)

const (
	AutoFillName      = "auto_fill"
	MinConfidenceName = "min_confidence"
	ExcludedPathsName = "excluded_paths"
	PrefilledName     = "prefilled"

	overwriteFlagSetMsg = "overwrite flag is set"
)

// Default returns the filters of an autofill run in order.
func Default(overwrite bool) []Filter {
	return []Filter{
		NewAutoFill(),
		NewMinConfidence(),
		NewExcludedPaths(),
		NewPrefilled(overwrite),
	}
}

type autoFillFilter struct{}

// NewAutoFill creates a filter that keeps only mappings cleared for automatic
// filling.
func NewAutoFill() Filter {
	return &autoFillFilter{}
}

func (f *autoFillFilter) Name() string { return AutoFillName }

func (f *autoFillFilter) Disable(string) {}

func (f *autoFillFilter) IsEnabled() bool { return true }

func (f *autoFillFilter) Validate(*Config) error { return nil }

func (f *autoFillFilter) Apply(_ context.Context, _ Deps, in []matching.Mapping) ([]matching.Mapping, []Dropped, Step, error) {
	kept, dropped, step := partition(f.Name(), in, func(m matching.Mapping) (bool, string) {
		if m.AutoFill {
			return true, ""
		}
		if m.Reason != "" {
			return false, m.Reason
		}
		return false, "not cleared for auto fill"
	})
	return kept, dropped, step, nil
}

type minConfidenceFilter struct {
	disabled bool
	reason   string
	min      int
}

// NewMinConfidence creates a filter that removes mappings scoring below the
// caller supplied minimum.
func NewMinConfidence() Filter {
	return &minConfidenceFilter{}
}

func (f *minConfidenceFilter) Name() string { return MinConfidenceName }

func (f *minConfidenceFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minConfidenceFilter) IsEnabled() bool { return !f.disabled }

func (f *minConfidenceFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg != nil {
		f.min = cfg.MinConfidence
	}
	if f.min < 0 || f.min > 100 {
		return fmt.Errorf("minimum confidence %d is out of the 0-100 range", f.min)
	}
	return nil
}

func (f *minConfidenceFilter) Apply(_ context.Context, deps Deps, in []matching.Mapping) ([]matching.Mapping, []Dropped, Step, error) {
	kept, dropped, step := partition(f.Name(), in, func(m matching.Mapping) (bool, string) {
		if m.Confidence >= f.min {
			return true, ""
		}
		return false, fmt.Sprintf("confidence %d is below the requested minimum %d", m.Confidence, f.min)
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding fields below the minimum confidence",
			zap.Int("min_confidence", f.min),
			zap.Int("fields_left", len(kept)),
		)
	}
	return kept, dropped, step, nil
}

func (f *minConfidenceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_confidence": strconv.Itoa(f.min)},
	}
}

type excludedPathsFilter struct {
	paths []string
}

// NewExcludedPaths creates a filter that removes mappings to profile paths the
// user never wants filled automatically.
func NewExcludedPaths() Filter {
	return &excludedPathsFilter{}
}

func (f *excludedPathsFilter) Name() string { return ExcludedPathsName }

func (f *excludedPathsFilter) Disable(string) {}

func (f *excludedPathsFilter) IsEnabled() bool { return true }

func (f *excludedPathsFilter) Validate(cfg *Config) error {
	f.paths = nil
	if cfg == nil {
		return nil
	}
	for _, p := range cfg.ExcludedPaths {
		if p = strings.TrimSpace(p); p != "" {
			f.paths = append(f.paths, p)
		}
	}
	return nil
}

func (f *excludedPathsFilter) Apply(_ context.Context, deps Deps, in []matching.Mapping) ([]matching.Mapping, []Dropped, Step, error) {
	if len(f.paths) == 0 {
		return in, nil, Step{Initial: len(in), Dropped: 0, Left: len(in)}, nil
	}

	kept, dropped, step := partition(f.Name(), in, func(m matching.Mapping) (bool, string) {
		for _, p := range f.paths {
			if m.Path == p || strings.HasPrefix(m.Path, p+".") {
				return false, fmt.Sprintf("profile path %s is excluded", m.Path)
			}
		}
		return true, ""
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding fields by profile path",
			zap.Strings("excluded_paths", f.paths),
			zap.Int("fields_left", len(kept)),
		)
	}
	return kept, dropped, step, nil
}

func (f *excludedPathsFilter) Status() Status {
	details := map[string]string{}
	if len(f.paths) > 0 {
		details["paths"] = strings.Join(f.paths, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type prefilledFilter struct {
	overwrite bool
}

// NewPrefilled creates a filter that leaves fields the page or the user already
// filled with a different value untouched.
func NewPrefilled(overwrite bool) Filter {
	return &prefilledFilter{overwrite: overwrite}
}

func (f *prefilledFilter) Name() string { return PrefilledName }

func (f *prefilledFilter) Disable(string) {}

func (f *prefilledFilter) IsEnabled() bool { return true }

func (f *prefilledFilter) Validate(*Config) error { return nil }

func (f *prefilledFilter) Apply(_ context.Context, deps Deps, in []matching.Mapping) ([]matching.Mapping, []Dropped, Step, error) {
	if f.overwrite {
		if deps.Logger != nil {
			deps.Logger.Debug("overwriting prefilled fields", zap.String("reason", overwriteFlagSetMsg))
		}
		return in, nil, Step{Initial: len(in), Dropped: 0, Left: len(in)}, nil
	}

	kept, dropped, step := partition(f.Name(), in, func(m matching.Mapping) (bool, string) {
		current := strings.TrimSpace(m.Field.Value)
		if current == "" || strings.EqualFold(current, strings.TrimSpace(m.Value)) {
			return true, ""
		}
		return false, "field already holds a value"
	})
	return kept, dropped, step, nil
}

func (f *prefilledFilter) Status() Status {
	details := map[string]string{
		"overwrite": strconv.FormatBool(f.overwrite),
	}
	reason := ""
	if f.overwrite {
		reason = "overwrite requested via flag"
	}
	return Status{Name: f.Name(), Enabled: true, Reason: reason, Details: details}
}
