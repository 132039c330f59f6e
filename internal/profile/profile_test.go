package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
personal:
  firstName: John
  lastName: Doe
  email: john@example.com
  phone: 4155550100
  city: San Francisco
workHistory:
  - company: Acme
    title: Staff Engineer
    startDate: 2021-03-01
    current: true
  - company: Initech
    title: Engineer
education:
  - school: State University
    degree: BSc
    field: Computer Science
    graduationDate: 2015-06-01
skills:
  - Go
  - name: Kubernetes
    level: expert
links:
  linkedin: https://www.linkedin.com/in/johndoe
extras:
  salaryExpectation: 150000
  remote: true
  languages:
    - name: English
    - name: German
  references:
    - person: Jane
      phone: "555"
`

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "John Doe", p.Personal.FullName)
	assert.Equal(t, "4155550100", p.Personal.Phone)
	require.Len(t, p.WorkHistory, 2)
	assert.Equal(t, "2021-03-01", p.WorkHistory[0].StartDate)
	assert.True(t, p.WorkHistory[0].Current)
	assert.Equal(t, []Skill{{Name: "Go"}, {Name: "Kubernetes", Level: "expert"}}, p.Skills)
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(`{"personal": {"fullName": "Ada Lovelace", "email": "ada@example.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Personal.FirstName)
	assert.Equal(t, "Lovelace", p.Personal.LastName)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse([]byte("personal: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("workHistory: 12"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(sample))
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"personal.email", "john@example.com"},
		{"personal.fullName", "John Doe"},
		{"workHistory.company", "Acme"},
		{"workHistory.title", "Staff Engineer"},
		{"workHistory.current", "true"},
		{"education.school", "State University"},
		{"skills", "Go, Kubernetes"},
		{"links.linkedin", "https://www.linkedin.com/in/johndoe"},
		{"links.github", ""},
		{"extras.salaryExpectation", "150000"},
		{"extras.remote", "true"},
		{"extras.languages", "English, German"},
		{"extras.references", `[{"person":"Jane","phone":"555"}]`},
		{"extras.missing", ""},
		{"personal.nope.deeper", ""},
		{"", ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.Resolve(tt.path))
		})
	}
}

func TestResolveEmptyLists(t *testing.T) {
	t.Parallel()

	p := &Profile{}
	assert.Equal(t, "", p.Resolve("workHistory.company"))
	assert.Equal(t, "", p.Resolve("skills"))

	var nilProfile *Profile
	assert.Equal(t, "", nilProfile.Resolve("personal.email"))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.WorkHistory[0].Company)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
