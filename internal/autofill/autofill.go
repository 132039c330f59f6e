// Package autofill wires detection, mapping, filtering and writing into one
// operation over a page.
package autofill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/dom"
	"github.com/spigell/applyfill/internal/fields"
	"github.com/spigell/applyfill/internal/fill"
	"github.com/spigell/applyfill/internal/filtering"
	"github.com/spigell/applyfill/internal/logger"
	"github.com/spigell/applyfill/internal/matching"
	"github.com/spigell/applyfill/internal/platform"
	"github.com/spigell/applyfill/internal/profile"
	"github.com/spigell/applyfill/internal/utils"
)

// ErrNotConfigured is returned by Autofill when no profile was set.
var ErrNotConfigured = errors.New("autofill: no profile configured")

// Config tunes an Autofiller. Zero values select the defaults.
type Config struct {
	Detection     platform.Config
	Thresholds    matching.Thresholds
	Targets       []matching.Target
	UndoCap       int
	ExcludedPaths []string
}

// Options tunes one Autofill run.
type Options struct {
	// MinConfidence drops mappings scoring below it. Zero selects the medium
	// threshold.
	MinConfidence int
	// Overwrite lets the run replace values the page already holds.
	Overwrite bool
	// Delay is waited between two writes.
	Delay time.Duration
	// Filters replaces the default filter pipeline.
	Filters []filtering.Filter

	OnProgress    func(current, total int)
	OnFieldFilled func(m matching.Mapping)
}

// Issue explains why a field was not filled.
type Issue struct {
	Field  string `json:"field"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason"`
}

// Result summarises one Autofill run.
type Result struct {
	RunID    string
	Platform *platform.Candidate
	Success  bool
	Filled   int
	Skipped  int
	Errors   []error
	Issues   []Issue
	// Review holds the mappings a person should confirm before they are
	// written with FillMapping.
	Review []matching.Mapping
}

// Plan is the dry-run view of a page: the detected platform and the mapping of
// every discovered field.
type Plan struct {
	Platform *platform.Candidate
	Mapping  *matching.Result
}

// Autofiller holds the profile and the undo ledger of one page lifetime.
type Autofiller struct {
	mu      sync.RWMutex
	profile *profile.Profile

	detector *platform.Detector
	mapper   *matching.Mapper
	writer   *fill.Writer
	ledger   *fill.Ledger
	excluded []string
	logger   *zap.Logger
}

// New builds an Autofiller. A profile must be set before Autofill runs.
func New(cfg Config, log *zap.Logger) *Autofiller {
	log = logger.WithFields(log)
	writer := fill.NewWriter(log)

	var scorer *matching.Scorer
	if cfg.Targets != nil {
		scorer = matching.NewScorer(cfg.Targets)
	}

	return &Autofiller{
		detector: platform.NewDetector(cfg.Detection, log),
		mapper:   matching.NewMapper(scorer, cfg.Thresholds, log),
		writer:   writer,
		ledger:   fill.NewLedger(writer, cfg.UndoCap, log),
		excluded: cfg.ExcludedPaths,
		logger:   log,
	}
}

// SetProfile replaces the profile used by later runs.
func (a *Autofiller) SetProfile(p *profile.Profile) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profile = p
}

func (a *Autofiller) currentProfile() *profile.Profile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profile
}

func (a *Autofiller) Detector() *platform.Detector { return a.detector }

func (a *Autofiller) Ledger() *fill.Ledger { return a.ledger }

// Map detects the platform and maps every field of its containers without
// writing anything.
func (a *Autofiller) Map(doc dom.Document) (*Plan, error) {
	p := a.currentProfile()
	if p == nil {
		return nil, ErrNotConfigured
	}
	if doc == nil {
		return nil, fmt.Errorf("autofill: no document")
	}

	candidate, found := a.Discover(doc, fields.Options{})
	return &Plan{Platform: candidate, Mapping: a.mapper.MapFields(p, found)}, nil
}

// Discover detects the platform and enumerates the fields of its containers.
// Conventions of the detected platform replace opts.Conventions.
func (a *Autofiller) Discover(doc dom.Document, opts fields.Options) (*platform.Candidate, []fields.Field) {
	if doc == nil {
		return nil, nil
	}
	candidate := a.detector.Detect(doc.URL(), doc)

	opts.Conventions = nil
	if candidate != nil {
		if pl, ok := a.detector.Platform(candidate.Platform); ok {
			opts.Conventions = pl.Conventions()
		}
	}

	var (
		found []fields.Field
		seen  = make(map[dom.Handle]bool)
	)
	for _, c := range a.detector.Containers(candidate, doc) {
		for _, f := range fields.Discover(c, opts) {
			if seen[f.Handle()] {
				continue
			}
			seen[f.Handle()] = true
			found = append(found, f)
		}
	}
	return candidate, found
}

// Autofill fills every mapping that survives the filters, one field at a time.
// Field failures are collected in the result; only a missing profile or a
// cancelled context end the run early.
func (a *Autofiller) Autofill(ctx context.Context, doc dom.Document, opts Options) (*Result, error) {
	plan, err := a.Map(doc)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString(), Platform: plan.Platform}
	platformName := ""
	if plan.Platform != nil {
		platformName = plan.Platform.Platform.String()
	}
	log := logger.WithRun(a.logger, res.RunID, platformName, doc.URL())

	minConfidence := opts.MinConfidence
	if minConfidence == 0 {
		minConfidence = a.mapper.Thresholds().Medium
	}
	steps := opts.Filters
	if steps == nil {
		steps = filtering.Default(opts.Overwrite)
	}

	kept, dropped, err := filtering.Run(ctx,
		&filtering.Config{MinConfidence: minConfidence, ExcludedPaths: a.excluded},
		filtering.Deps{Logger: log},
		steps,
		plan.Mapping.Mappings,
	)
	if err != nil {
		return nil, fmt.Errorf("filtering mappings: %w", err)
	}
	for _, m := range plan.Mapping.Mappings {
		if m.NeedsReview {
			res.Review = append(res.Review, m)
		}
	}
	for _, d := range dropped {
		res.Skipped++
		res.Issues = append(res.Issues, Issue{Field: d.Mapping.Field.Describe(), Path: d.Mapping.Path, Reason: d.Reason})
	}

	log.Info("autofill started",
		zap.Int("fields", len(plan.Mapping.Mappings)),
		zap.Int("to_fill", len(kept)),
		zap.Int("min_confidence", minConfidence),
	)

	for i, m := range kept {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			log.Warn("autofill interrupted", zap.Int("done", i), zap.Error(err))
			return res, err
		}
		if i > 0 {
			if err := utils.WaitFor(ctx, opts.Delay); err != nil {
				res.Errors = append(res.Errors, err)
				return res, err
			}
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(kept))
		}

		err := a.fill(ctx, m)
		switch {
		case err == nil:
			res.Filled++
			if opts.OnFieldFilled != nil {
				opts.OnFieldFilled(m)
			}
		case fill.Skipped(err):
			res.Skipped++
			res.Issues = append(res.Issues, Issue{Field: m.Field.Describe(), Path: m.Path, Reason: err.Error()})
			log.Debug("field skipped", zap.String("field", m.Field.Describe()), zap.Error(err))
		default:
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", m.Field.Describe(), err))
			log.Warn("field fill failed", zap.String("field", m.Field.Describe()), zap.Error(err))
		}
	}

	res.Success = len(res.Errors) == 0
	log.Info("autofill finished",
		zap.Int("filled", res.Filled),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// FillMapping writes one mapping the user confirmed by hand, typically one
// flagged for review.
func (a *Autofiller) FillMapping(ctx context.Context, m matching.Mapping) error {
	if m.Value == "" {
		return fmt.Errorf("%s: nothing to fill", m.Field.Describe())
	}
	return a.fill(ctx, m)
}

// fill captures the value the page holds, writes, and records the write.
func (a *Autofiller) fill(ctx context.Context, m matching.Mapping) error {
	original := fill.Current(m.Field)
	if err := a.writer.Fill(ctx, m.Field, m.Value); err != nil {
		return err
	}
	a.ledger.Record(m.Field, original, m.Value)
	return nil
}

// Undo restores one filled element.
func (a *Autofiller) Undo(ctx context.Context, el dom.Element) (bool, error) {
	return a.ledger.Undo(ctx, el)
}

// UndoAll restores every filled element.
func (a *Autofiller) UndoAll(ctx context.Context) (int, error) {
	return a.ledger.UndoAll(ctx)
}
