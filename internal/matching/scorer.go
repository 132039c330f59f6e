// Package matching scores discovered fields against profile paths and maps
// every field to the value it should receive.
package matching

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/spigell/applyfill/internal/fields"
	"github.com/spigell/applyfill/internal/utils"
)

// Signal weights, strongest first.
const (
	weightLabel       = 1.0
	weightAria        = 0.9
	weightPlaceholder = 0.7
	weightName        = 0.5
	weightID          = 0.3
)

// maxEditDistance caps the tolerated typo distance for long phrases.
const maxEditDistance = 3

// minCoverage is the share of a signal's words a keyword must span to count
// as a strong containment match.
const minCoverage = 0.5

type phrase struct {
	tokens []string
	text   string
	packed string
}

func newPhrase(s string) phrase {
	var tokens []string
	for _, tok := range utils.Tokens(s) {
		if !filler[tok] {
			tokens = append(tokens, tok)
		}
	}
	text := strings.Join(tokens, " ")
	return phrase{tokens: tokens, text: text, packed: strings.ReplaceAll(text, " ", "")}
}

type target struct {
	path     string
	keywords []phrase
}

// Scorer rates how well a field asks for a profile path.
type Scorer struct {
	targets []target
}

// NewScorer prepares the keyword table. A nil table selects DefaultTargets.
func NewScorer(targets []Target) *Scorer {
	if targets == nil {
		targets = DefaultTargets()
	}

	s := &Scorer{targets: make([]target, 0, len(targets))}
	for _, t := range targets {
		tt := target{path: t.Path}
		for _, kw := range t.Keywords {
			if p := newPhrase(kw); p.text != "" {
				tt.keywords = append(tt.keywords, p)
			}
		}
		s.targets = append(s.targets, tt)
	}
	return s
}

// Paths lists the scored profile paths in evaluation order.
func (s *Scorer) Paths() []string {
	out := make([]string, 0, len(s.targets))
	for _, t := range s.targets {
		out = append(out, t.path)
	}
	return out
}

// Score rates field against path on a 0-100 scale. Unknown paths score 0.
func (s *Scorer) Score(f fields.Field, path string) int {
	for _, t := range s.targets {
		if t.path == path {
			return score(signals(f), t.keywords)
		}
	}
	return 0
}

// BestMatch returns the highest scoring path. A later path must score strictly
// higher to replace an earlier one. A field matching nothing yields "", 0.
func (s *Scorer) BestMatch(f fields.Field) (string, int) {
	sig := signals(f)

	var (
		bestPath  string
		bestScore int
	)
	for _, t := range s.targets {
		if sc := score(sig, t.keywords); sc > bestScore {
			bestPath, bestScore = t.path, sc
		}
	}
	return bestPath, bestScore
}

type signal struct {
	phrase phrase
	weight float64
}

func signals(f fields.Field) []signal {
	raw := []struct {
		text   string
		weight float64
	}{
		{f.Label, weightLabel},
		{f.AriaLabel, weightAria},
		{f.Placeholder, weightPlaceholder},
		{f.Name, weightName},
		{f.ID, weightID},
	}

	out := make([]signal, 0, len(raw))
	for _, r := range raw {
		if p := newPhrase(r.text); p.text != "" {
			out = append(out, signal{phrase: p, weight: r.weight})
		}
	}
	return out
}

// score averages the similarity of every non-empty signal by weight, so a
// signal that matches nothing pulls the score down. The average is scaled by
// the strongest matching signal, so a name-only match never outranks the same
// match on the label.
func score(sig []signal, keywords []phrase) int {
	var sumW, sumWS, maxW float64
	for _, s := range sig {
		best := 0.0
		for _, kw := range keywords {
			if sim := similarity(s.phrase, kw); sim > best {
				best = sim
			}
		}
		sumW += s.weight
		if best == 0 {
			continue
		}
		sumWS += s.weight * best
		maxW = math.Max(maxW, s.weight)
	}
	if sumWS == 0 {
		return 0
	}

	v := sumWS / sumW * (0.7 + 0.3*maxW) * 100
	return int(math.Round(math.Min(v, 100)))
}

// similarity compares a field signal with a keyword on a 0-1 scale.
func similarity(sig, kw phrase) float64 {
	switch {
	case sig.text == kw.text:
		return 1
	case sig.packed == kw.packed:
		return 0.95
	}

	if span := containsRun(sig.tokens, kw.packed); span > 0 {
		coverage := float64(span) / float64(len(sig.tokens))
		if coverage < minCoverage {
			// A keyword buried in a sentence is a question about it, not a
			// request for it.
			return coverage
		}
		return 0.75 + 0.25*coverage
	}

	limit := len(kw.packed) / 4
	if limit > maxEditDistance {
		limit = maxEditDistance
	}
	if limit == 0 {
		return 0
	}
	if d := levenshtein.ComputeDistance(sig.text, kw.text); d <= limit {
		return 0.9 - 0.3*float64(d-1)/float64(limit)
	}
	return 0
}

// containsRun looks for a contiguous run of tokens in hay that spells packed
// once joined, so "linked in profile" contains "linkedin". It returns the
// length of the run, or 0.
func containsRun(hay []string, packed string) int {
	if packed == "" {
		return 0
	}
	for i := range hay {
		joined := ""
		for j := i; j < len(hay) && len(joined) < len(packed); j++ {
			joined += hay[j]
			if joined == packed {
				return j - i + 1
			}
		}
	}
	return 0
}
