package report

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/applyfill/internal/autofill"
	"github.com/spigell/applyfill/internal/fields"
	"github.com/spigell/applyfill/internal/matching"
	"github.com/spigell/applyfill/internal/platform"
)

func TestPlatforms(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	candidates := []platform.Candidate{
		{Platform: platform.Workday},
		{Platform: platform.Lever, Confidence: 70, Signals: []string{"url:lever.co", "marker:.application-form"}},
	}
	p.Platforms(candidates, &candidates[1], 40)

	out := buf.String()
	assert.Contains(t, out, "* lever")
	assert.Contains(t, out, "url:lever.co, marker:.application-form")
	assert.NotContains(t, out, "no platform reached")

	buf.Reset()
	p.Platforms(candidates[:1], nil, 40)
	assert.Contains(t, buf.String(), "no platform reached 40")
}

func TestMappings(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	res := &matching.Result{
		Mappings: []matching.Mapping{
			{Field: fields.Field{Label: "Email"}, Path: "personal.email", Value: "john@example.com", Confidence: 100, AutoFill: true},
			{Field: fields.Field{Name: "alt_email"}, Path: "personal.email", Value: "john@example.com", Confidence: 60, NeedsReview: true},
			{Field: fields.Field{Label: "Comments"}, Reason: "no profile field matches"},
		},
		Fillable:          1,
		Review:            1,
		OverallConfidence: 53.3,
	}
	p.Mappings(res, matching.DefaultThresholds())

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines[0], "1 fillable, 1 to review, overall 53.3")
	assert.Contains(t, lines[2], "high")
	assert.Contains(t, lines[2], "fill")
	assert.Contains(t, lines[3], "review")
	assert.Contains(t, lines[4], "skip: no profile field matches")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Summary(&autofill.Result{
		RunID:   "run-1",
		Filled:  2,
		Skipped: 1,
		Errors:  []error{errors.New("Phone: element is detached from the document")},
		Issues:  []autofill.Issue{{Field: "Resume", Reason: "file inputs cannot be filled"}},
	})

	out := buf.String()
	assert.Contains(t, out, "Run run-1 on unknown")
	assert.Contains(t, out, "filled:  2")
	assert.Contains(t, out, "- Resume: file inputs cannot be filled")
	assert.Contains(t, out, "! Phone: element is detached")
}

func TestCell(t *testing.T) {
	assert.Equal(t, "-", cell("  "))
	assert.Equal(t, "a b", cell("a\n  b"))
	assert.Equal(t, strings.Repeat("x", maxCell)+"...", cell(strings.Repeat("x", 50)))
}

func TestDumpToTmpFile(t *testing.T) {
	res := &autofill.Result{
		RunID:    "run-2",
		Platform: &platform.Candidate{Platform: platform.Greenhouse, Confidence: 90},
		Filled:   3,
		Errors:   []error{errors.New("boom")},
		Review: []matching.Mapping{
			{Field: fields.Field{Label: "Alt email"}, Path: "personal.email", Value: "john@example.com", Confidence: 60, NeedsReview: true},
		},
	}

	name, err := DumpToTmpFile(res)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"run_id": "run-2"`)
	assert.Contains(t, out, `"platform": "greenhouse"`)
	assert.Contains(t, out, `"errors": [`)
	assert.Contains(t, out, `"field": "Alt email"`)
	assert.NotContains(t, out, "john@example.com")
}
