package matching

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/dom"
	"github.com/spigell/applyfill/internal/fields"
	"github.com/spigell/applyfill/internal/profile"
)

// Thresholds are the confidence bands of a mapping, on a 0-100 scale.
type Thresholds struct {
	Low    int `mapstructure:"low"`
	Medium int `mapstructure:"medium"`
	High   int `mapstructure:"high"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Low: 50, Medium: 70, High: 80}
}

// Band names the band a score falls in.
func (t Thresholds) Band(score int) string {
	switch {
	case score >= t.High:
		return "high"
	case score >= t.Medium:
		return "medium"
	case score >= t.Low:
		return "low"
	}
	return "none"
}

// Mapping is the decision taken for one field. Path and Value are empty when
// nothing was matched or resolved.
type Mapping struct {
	Field       fields.Field
	Path        string
	Value       string
	Confidence  int
	AutoFill    bool
	NeedsReview bool
	Reason      string
}

// Result is the outcome of mapping a container.
type Result struct {
	Mappings          []Mapping
	OverallConfidence float64
	Fillable          int
	Review            int
}

// Mapper maps discovered fields to profile values.
type Mapper struct {
	scorer     *Scorer
	thresholds Thresholds
	logger     *zap.Logger
}

// NewMapper builds a mapper. A nil scorer selects the default keyword table;
// zero thresholds select the defaults.
func NewMapper(scorer *Scorer, thresholds Thresholds, logger *zap.Logger) *Mapper {
	if scorer == nil {
		scorer = NewScorer(nil)
	}
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{scorer: scorer, thresholds: thresholds, logger: logger}
}

// Thresholds returns the bands the mapper decides with.
func (m *Mapper) Thresholds() Thresholds { return m.thresholds }

// Map discovers the fields of container and maps them.
func (m *Mapper) Map(p *profile.Profile, container dom.Element, opts fields.Options) *Result {
	return m.MapFields(p, fields.Discover(container, opts))
}

// MapFields maps already discovered fields.
func (m *Mapper) MapFields(p *profile.Profile, found []fields.Field) *Result {
	res := &Result{Mappings: make([]Mapping, 0, len(found))}

	total := 0
	for _, f := range found {
		mp := m.mapField(p, f)
		total += mp.Confidence
		if mp.AutoFill {
			res.Fillable++
		}
		if mp.NeedsReview {
			res.Review++
		}
		res.Mappings = append(res.Mappings, mp)

		m.logger.Debug("field mapped",
			zap.String("field", f.Describe()),
			zap.String("path", mp.Path),
			zap.Int("confidence", mp.Confidence),
			zap.Bool("auto_fill", mp.AutoFill),
		)
	}

	if len(found) > 0 {
		res.OverallConfidence = float64(total) / float64(len(found))
	}
	return res
}

func (m *Mapper) mapField(p *profile.Profile, f fields.Field) Mapping {
	mp := Mapping{Field: f}

	path, score := m.scorer.BestMatch(f)
	if score == 0 {
		mp.Reason = "no profile field matches"
		return mp
	}
	mp.Path = path
	mp.Confidence = score

	mp.Value = p.Resolve(path)
	if mp.Value == "" {
		mp.Reason = fmt.Sprintf("profile has no value for %s", path)
		return mp
	}

	switch {
	case score >= m.thresholds.Medium:
		mp.AutoFill = true
	case score >= m.thresholds.Low:
		mp.NeedsReview = true
		mp.Reason = fmt.Sprintf("confidence %d needs review", score)
	default:
		mp.Reason = fmt.Sprintf("confidence %d is below %d", score, m.thresholds.Low)
	}
	return mp
}
