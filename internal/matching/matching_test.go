package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/applyfill/internal/dom/htmldoc"
	"github.com/spigell/applyfill/internal/fields"
	"github.com/spigell/applyfill/internal/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		Personal: profile.Personal{
			FirstName: "John",
			LastName:  "Doe",
			FullName:  "John Doe",
			Email:     "john@example.com",
			Phone:     "+1 415 555 0100",
		},
		WorkHistory: []profile.Work{{Company: "Acme", Title: "Engineer"}, {Company: "Initech"}},
		Skills:      []profile.Skill{{Name: "Go"}, {Name: "SQL"}},
		Links:       profile.Links{LinkedIn: "https://linkedin.com/in/jd"},
	}
}

func TestScoreEmailAddressLabel(t *testing.T) {
	t.Parallel()
	s := NewScorer(nil)

	f := fields.Field{Label: "Email Address", Kind: fields.KindEmail}
	assert.GreaterOrEqual(t, s.Score(f, "personal.email"), 80)

	path, score := s.BestMatch(f)
	assert.Equal(t, "personal.email", path)
	assert.GreaterOrEqual(t, score, 80)
}

func TestLabelOutranksName(t *testing.T) {
	t.Parallel()
	s := NewScorer(nil)

	for _, kw := range []string{"email", "phone", "city", "linkedin"} {
		byLabel, _ := s.BestMatch(fields.Field{Label: kw})
		labelScore := s.Score(fields.Field{Label: kw}, byLabel)
		nameScore := s.Score(fields.Field{Name: kw}, byLabel)
		assert.GreaterOrEqual(t, labelScore, nameScore, kw)
	}
}

func TestScoreUnrelatedField(t *testing.T) {
	t.Parallel()
	s := NewScorer(nil)

	path, score := s.BestMatch(fields.Field{Label: "Comments", Kind: fields.KindTextarea})
	assert.Less(t, score, DefaultThresholds().Low)
	assert.Equal(t, 0, s.Score(fields.Field{Label: "Comments"}, "personal.email"))
	assert.Equal(t, "", path)

	assert.Equal(t, 0, s.Score(fields.Field{}, "personal.email"))
	assert.Equal(t, 0, s.Score(fields.Field{Label: "Email"}, "no.such.path"))
}

func TestQuestionLabelsStayBelowMedium(t *testing.T) {
	t.Parallel()
	s := NewScorer(nil)

	tests := []struct {
		label string
		name  string
	}{
		{label: "Why do you want to work at our company?"},
		{label: "Describe a time you disagreed with your manager at a previous company"},
		{label: "How did you hear about us? Please list the website"},
		{label: "Why are you interested in this role?", name: "question_4012"},
		{label: "Tell us about a project you are proud of and the skills it required", name: "cover_note"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			f := fields.Field{Label: tt.label, Name: tt.name, Kind: fields.KindTextarea}
			path, score := s.BestMatch(f)
			assert.Less(t, score, DefaultThresholds().Medium, path)
		})
	}
}

func TestNonMatchingSignalsLowerScore(t *testing.T) {
	t.Parallel()
	s := NewScorer(nil)

	alone := s.Score(fields.Field{Label: "Current employer"}, "workHistory.company")
	withOpaqueID := s.Score(fields.Field{Label: "Current employer", Name: "q_17", ID: "q_17"}, "workHistory.company")
	assert.Equal(t, 100, alone)
	assert.Less(t, withOpaqueID, alone)
	assert.Greater(t, withOpaqueID, 0)
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sig  string
		kw   string
		min  float64
		max  float64
	}{
		{"exact", "Email", "email", 1, 1},
		{"spacing", "E-mail", "email", 0.95, 0.95},
		{"containment", "Your LinkedIn profile URL", "linkedin", 0.8, 0.9},
		{"keyword buried in a sentence", "Why do you want to work at our company?", "company", 0.1, 0.2},
		{"typo", "Phone numbr", "phone number", 0.6, 0.9},
		{"unrelated", "Comments", "company", 0, 0},
		{"short keywords are exact only", "zap", "zip", 0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := similarity(newPhrase(tt.sig), newPhrase(tt.kw))
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestBestMatchTieKeepsFirstPath(t *testing.T) {
	t.Parallel()
	s := NewScorer([]Target{
		{Path: "a", Keywords: []string{"code"}},
		{Path: "b", Keywords: []string{"code"}},
	})

	path, _ := s.BestMatch(fields.Field{Label: "Code"})
	assert.Equal(t, "a", path)
	assert.Equal(t, []string{"a", "b"}, s.Paths())
}

const form = `<html><body><form>
  <label for="e">Email Address</label><input id="e" name="email">
  <label for="n">Full name</label><input id="n" name="name">
  <label for="c">Comments</label><textarea id="c" name="comments"></textarea>
  <label for="co">Current employer</label><input id="co" name="employer">
  <label for="s">Skills</label><input id="s" name="skills">
  <label for="g">GitHub</label><input id="g" name="gh">
  <label for="w">Work location city</label><input id="w" name="where">
</form></body></html>`

func TestMapperMap(t *testing.T) {
	t.Parallel()
	doc, err := htmldoc.ParseString(form, "")
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	m := NewMapper(nil, Thresholds{}, zap.New(core))

	res := m.Map(testProfile(), doc.Find("form"), fields.Options{})
	require.Len(t, res.Mappings, 7)
	assert.Len(t, logs.FilterMessage("field mapped").All(), 7)

	byName := make(map[string]Mapping)
	for _, mp := range res.Mappings {
		byName[mp.Field.Name] = mp
	}

	email := byName["email"]
	assert.Equal(t, "personal.email", email.Path)
	assert.Equal(t, "john@example.com", email.Value)
	assert.True(t, email.AutoFill)
	assert.GreaterOrEqual(t, email.Confidence, 80)

	assert.Equal(t, "John Doe", byName["name"].Value)
	assert.Equal(t, "Acme", byName["employer"].Value)
	assert.Equal(t, "Go, SQL", byName["skills"].Value)

	comments := byName["comments"]
	assert.False(t, comments.AutoFill)
	assert.Equal(t, "", comments.Path)
	assert.NotEmpty(t, comments.Reason)

	github := byName["gh"]
	assert.Equal(t, "links.github", github.Path)
	assert.False(t, github.AutoFill)
	assert.Contains(t, github.Reason, "no value")

	for _, mp := range res.Mappings {
		if mp.AutoFill {
			assert.GreaterOrEqual(t, mp.Confidence, DefaultThresholds().Medium)
			assert.NotEmpty(t, mp.Value)
		}
	}
	assert.Greater(t, res.OverallConfidence, 0.0)
	assert.GreaterOrEqual(t, res.Fillable, 4)
}

func TestMapperReviewBand(t *testing.T) {
	t.Parallel()
	m := NewMapper(nil, DefaultThresholds(), nil)

	// A partial label match next to an opaque name lands between the low and
	// medium thresholds.
	f := fields.Field{Label: "Contact email", Name: "field_17"}
	res := m.MapFields(testProfile(), []fields.Field{f})
	require.Len(t, res.Mappings, 1)

	mp := res.Mappings[0]
	assert.Equal(t, "personal.email", mp.Path)
	assert.Less(t, mp.Confidence, 70)
	assert.GreaterOrEqual(t, mp.Confidence, 50)
	assert.True(t, mp.NeedsReview)
	assert.False(t, mp.AutoFill)
	assert.Equal(t, 1, res.Review)
}

func TestMapperEmptyContainer(t *testing.T) {
	t.Parallel()
	doc, err := htmldoc.ParseString(`<div id="c"><input type="hidden" name="t"></div>`, "")
	require.NoError(t, err)

	res := NewMapper(nil, Thresholds{}, nil).Map(testProfile(), doc.Find("#c"), fields.Options{})
	assert.Empty(t, res.Mappings)
	assert.Equal(t, 0, res.Fillable)
	assert.Equal(t, 0.0, res.OverallConfidence)
}

func TestThresholdBand(t *testing.T) {
	t.Parallel()
	th := DefaultThresholds()

	assert.Equal(t, "high", th.Band(80))
	assert.Equal(t, "medium", th.Band(70))
	assert.Equal(t, "low", th.Band(50))
	assert.Equal(t, "none", th.Band(49))
}
