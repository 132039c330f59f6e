// Package platform detects which hiring platform renders a page and where its
// application form lives.
package platform

import (
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/dom"
)

// MaxConfidence caps a platform score.
const MaxConfidence = 100

// Weights is the contribution of one matching signal of each class.
type Weights struct {
	URL       int `mapstructure:"url"`
	Structure int `mapstructure:"structure"`
	Attribute int `mapstructure:"attribute"`
	Shadow    int `mapstructure:"shadow"`
}

// DefaultWeights returns the standard split of a 100 point score.
func DefaultWeights() Weights {
	return Weights{URL: 30, Structure: 40, Attribute: 20, Shadow: 10}
}

// Config tunes a Detector.
type Config struct {
	Weights       Weights
	MinConfidence int
	// Platforms are evaluated in order; the first one reaching the highest
	// score wins.
	Platforms []Platform
}

// DefaultConfig returns the detection policy used by the CLI.
func DefaultConfig() Config {
	return Config{
		Weights:       DefaultWeights(),
		MinConfidence: 40,
		Platforms:     Known(),
	}
}

// Candidate is the outcome of scoring one platform against a page.
type Candidate struct {
	Platform   Variant
	Confidence int
	Signals    []string
}

// Detector picks the platform rendering a page. It holds no per-page state.
type Detector struct {
	cfg    Config
	logger *zap.Logger
}

// NewDetector builds a detector. Zero-value fields of cfg fall back to the
// defaults.
func NewDetector(cfg Config, logger *zap.Logger) *Detector {
	def := DefaultConfig()
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if len(cfg.Platforms) == 0 {
		cfg.Platforms = def.Platforms
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{cfg: cfg, logger: logger}
}

// DetectAll scores every configured platform, in configuration order.
func (d *Detector) DetectAll(rawURL string, doc dom.Document) []Candidate {
	out := make([]Candidate, 0, len(d.cfg.Platforms))
	for _, p := range d.cfg.Platforms {
		score, signals := p.Score(rawURL, doc, d.cfg.Weights)
		if score > MaxConfidence {
			score = MaxConfidence
		}
		out = append(out, Candidate{Platform: p.Variant(), Confidence: score, Signals: signals})
	}
	return out
}

// Detect returns the best scoring platform, or nil when no platform reaches
// the minimum confidence.
func (d *Detector) Detect(rawURL string, doc dom.Document) *Candidate {
	var best *Candidate
	for _, c := range d.DetectAll(rawURL, doc) {
		if best == nil || c.Confidence > best.Confidence {
			c := c
			best = &c
		}
	}

	if best == nil || best.Confidence < d.cfg.MinConfidence {
		d.logger.Debug("no platform detected", zap.String("url", rawURL))
		return nil
	}

	d.logger.Debug("platform detected",
		zap.String("platform", best.Platform.String()),
		zap.Int("confidence", best.Confidence),
		zap.Strings("signals", best.Signals),
	)
	return best
}

// Platform returns the configured platform for a variant.
func (d *Detector) Platform(v Variant) (Platform, bool) {
	for _, p := range d.cfg.Platforms {
		if p.Variant() == v {
			return p, true
		}
	}
	return nil, false
}

// Containers returns the form containers for a detection result; a nil
// candidate yields the generic containers.
func (d *Detector) Containers(c *Candidate, doc dom.Document) []dom.Element {
	if c != nil {
		if p, ok := d.Platform(c.Platform); ok {
			return p.FindContainers(doc)
		}
	}
	return DefaultContainers(doc)
}
