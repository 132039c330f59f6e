package report

import (
	"encoding/json"
	"os"

	"github.com/spigell/applyfill/internal/autofill"
)

type dump struct {
	RunID      string           `json:"run_id"`
	Platform   string           `json:"platform,omitempty"`
	Confidence int              `json:"platform_confidence,omitempty"`
	Filled     int              `json:"filled"`
	Skipped    int              `json:"skipped"`
	Errors     []string         `json:"errors,omitempty"`
	Issues     []autofill.Issue `json:"issues,omitempty"`
	Review     []reviewed       `json:"review,omitempty"`
}

type reviewed struct {
	Field      string `json:"field"`
	Path       string `json:"path"`
	Confidence int    `json:"confidence"`
}

// DumpToTmpFile writes the outcome of a run as indented json to a new
// temporary file and returns its name. Profile values are left out.
func DumpToTmpFile(res *autofill.Result) (string, error) {
	d := dump{
		RunID:   res.RunID,
		Filled:  res.Filled,
		Skipped: res.Skipped,
		Issues:  res.Issues,
	}
	if res.Platform != nil {
		d.Platform = res.Platform.Platform.String()
		d.Confidence = res.Platform.Confidence
	}
	for _, err := range res.Errors {
		d.Errors = append(d.Errors, err.Error())
	}
	for _, m := range res.Review {
		d.Review = append(d.Review, reviewed{Field: m.Field.Describe(), Path: m.Path, Confidence: m.Confidence})
	}

	file, err := os.CreateTemp("", "applyfill_run_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return "", err
	}
	return file.Name(), nil
}
