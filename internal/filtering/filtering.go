package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/matching"
)

// Filter represents a single filtering step applied to field mappings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, in []matching.Mapping) ([]matching.Mapping, []Dropped, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Dropped is a mapping removed by a filter.
type Dropped struct {
	Mapping matching.Mapping
	Filter  string
	Reason  string
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinConfidence int
	ExcludedPaths []string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially, returning the mappings left
// and every mapping dropped on the way.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, mappings []matching.Mapping) ([]matching.Mapping, []Dropped, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	var dropped []Dropped
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, out, info, err := step.Apply(ctx, deps, mappings)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		mappings = next
		dropped = append(dropped, out...)
	}

	return mappings, dropped, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// partition splits mappings by keep, recording a reason for every dropped one.
func partition(name string, in []matching.Mapping, keep func(matching.Mapping) (bool, string)) ([]matching.Mapping, []Dropped, Step) {
	kept := make([]matching.Mapping, 0, len(in))
	var dropped []Dropped
	for _, m := range in {
		ok, reason := keep(m)
		if ok {
			kept = append(kept, m)
			continue
		}
		dropped = append(dropped, Dropped{Mapping: m, Filter: name, Reason: reason})
	}
	return kept, dropped, Step{Initial: len(in), Dropped: len(dropped), Left: len(kept)}
}
