// Package report renders detection and mapping results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/spigell/applyfill/internal/autofill"
	"github.com/spigell/applyfill/internal/fields"
	"github.com/spigell/applyfill/internal/matching"
	"github.com/spigell/applyfill/internal/platform"
	"github.com/spigell/applyfill/internal/utils"
)

const maxCell = 40

// Printer writes colored tables.
type Printer struct {
	w      io.Writer
	colors map[string]*color.Color
}

// New creates a printer. noColor disables colors for every printer in the
// process.
func New(w io.Writer, noColor bool) *Printer {
	if noColor {
		color.NoColor = true
	}
	return &Printer{
		w: w,
		colors: map[string]*color.Color{
			"high":   color.New(color.FgGreen),
			"medium": color.New(color.FgCyan),
			"low":    color.New(color.FgYellow),
			"none":   color.New(color.FgRed),
			"title":  color.New(color.FgWhite, color.Bold),
		},
	}
}

// Platforms prints every platform score with the winner marked.
func (p *Printer) Platforms(candidates []platform.Candidate, best *platform.Candidate, floor int) {
	p.colors["title"].Fprintln(p.w, "Platform detection")

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  PLATFORM\tSCORE\tSIGNALS")
	for _, c := range candidates {
		mark := " "
		if best != nil && best.Platform == c.Platform {
			mark = "*"
		}
		band := "none"
		if c.Confidence >= floor {
			band = "high"
		} else if c.Confidence > 0 {
			band = "low"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, c.Platform,
			p.colors[band].Sprintf("%3d", c.Confidence), strings.Join(c.Signals, ", "))
	}
	tw.Flush()

	if best == nil {
		fmt.Fprintf(p.w, "no platform reached %d, generic form lookup applies\n", floor)
	}
	fmt.Fprintln(p.w)
}

// Fields prints discovered fields.
func (p *Printer) Fields(found []fields.Field) {
	p.colors["title"].Fprintf(p.w, "Fields (%d)\n", len(found))

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  KIND\tLABEL\tNAME\tREQUIRED\tVALUE")
	for _, f := range found {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%t\t%s\n", f.Kind,
			cell(f.Label), cell(f.Name), f.Required, cell(f.Value))
	}
	tw.Flush()
	fmt.Fprintln(p.w)
}

// Mappings prints the mapping of every field with its confidence band.
func (p *Printer) Mappings(res *matching.Result, t matching.Thresholds) {
	p.colors["title"].Fprintf(p.w, "Mappings (%d fillable, %d to review, overall %.1f)\n",
		res.Fillable, res.Review, res.OverallConfidence)

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  FIELD\tPATH\tSCORE\tVALUE\tDECISION")
	for _, m := range res.Mappings {
		band := t.Band(m.Confidence)
		decision := "fill"
		switch {
		case m.NeedsReview:
			decision = "review"
		case !m.AutoFill:
			decision = "skip: " + m.Reason
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			cell(m.Field.Describe()), orDash(m.Path),
			p.colors[band].Sprintf("%3d %-6s", m.Confidence, band),
			cell(m.Value), decision)
	}
	tw.Flush()
	fmt.Fprintln(p.w)
}

// Summary prints the outcome of an autofill run.
func (p *Printer) Summary(res *autofill.Result) {
	platformName := "unknown"
	if res.Platform != nil {
		platformName = fmt.Sprintf("%s (%d)", res.Platform.Platform, res.Platform.Confidence)
	}

	p.colors["title"].Fprintf(p.w, "Run %s on %s\n", res.RunID, platformName)
	fmt.Fprintf(p.w, "  filled:  %s\n", p.colors["high"].Sprint(res.Filled))
	fmt.Fprintf(p.w, "  skipped: %s\n", p.colors["low"].Sprint(res.Skipped))
	fmt.Fprintf(p.w, "  errors:  %s\n", p.colors["none"].Sprint(len(res.Errors)))

	for _, is := range res.Issues {
		fmt.Fprintf(p.w, "  - %s: %s\n", cell(is.Field), is.Reason)
	}
	for _, err := range res.Errors {
		fmt.Fprintf(p.w, "  ! %s\n", err)
	}
	fmt.Fprintln(p.w)
}

func cell(s string) string {
	return orDash(utils.TruncateForLog(strings.Join(strings.Fields(s), " "), maxCell))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
