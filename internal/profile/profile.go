// Package profile holds the applicant record that forms are filled from. The
// record is owned by the user; this package only loads and reads it.
package profile

import "strings"

// Profile is the applicant record. WorkHistory and Education are ordered most
// recent first.
type Profile struct {
	Personal    Personal       `mapstructure:"personal" json:"personal"`
	WorkHistory []Work         `mapstructure:"workHistory" json:"workHistory"`
	Education   []Education    `mapstructure:"education" json:"education"`
	Skills      []Skill        `mapstructure:"skills" json:"skills"`
	Links       Links          `mapstructure:"links" json:"links"`
	Extras      map[string]any `mapstructure:"extras" json:"extras,omitempty"`
}

type Personal struct {
	FirstName  string `mapstructure:"firstName" json:"firstName"`
	LastName   string `mapstructure:"lastName" json:"lastName"`
	FullName   string `mapstructure:"fullName" json:"fullName"`
	Email      string `mapstructure:"email" json:"email"`
	Phone      string `mapstructure:"phone" json:"phone"`
	Street     string `mapstructure:"street" json:"street"`
	City       string `mapstructure:"city" json:"city"`
	State      string `mapstructure:"state" json:"state"`
	PostalCode string `mapstructure:"postalCode" json:"postalCode"`
	Country    string `mapstructure:"country" json:"country"`
}

type Work struct {
	Company     string `mapstructure:"company" json:"company"`
	Title       string `mapstructure:"title" json:"title"`
	Location    string `mapstructure:"location" json:"location"`
	StartDate   string `mapstructure:"startDate" json:"startDate"`
	EndDate     string `mapstructure:"endDate" json:"endDate"`
	Current     bool   `mapstructure:"current" json:"current"`
	Description string `mapstructure:"description" json:"description"`
}

type Education struct {
	School         string `mapstructure:"school" json:"school"`
	Degree         string `mapstructure:"degree" json:"degree"`
	Field          string `mapstructure:"field" json:"field"`
	StartDate      string `mapstructure:"startDate" json:"startDate"`
	GraduationDate string `mapstructure:"graduationDate" json:"graduationDate"`
	GPA            string `mapstructure:"gpa" json:"gpa"`
}

// Skill is one entry of the skill list. A bare string in the profile file
// becomes a Skill with only a name.
type Skill struct {
	Name  string `mapstructure:"name" json:"name"`
	Level string `mapstructure:"level" json:"level,omitempty"`
}

type Links struct {
	LinkedIn  string `mapstructure:"linkedin" json:"linkedin"`
	GitHub    string `mapstructure:"github" json:"github"`
	Portfolio string `mapstructure:"portfolio" json:"portfolio"`
	Website   string `mapstructure:"website" json:"website"`
	Twitter   string `mapstructure:"twitter" json:"twitter"`
}

// normalize fills derived values.
func (p *Profile) normalize() {
	if p.Personal.FullName == "" {
		p.Personal.FullName = strings.TrimSpace(p.Personal.FirstName + " " + p.Personal.LastName)
	}
	if p.Personal.FirstName == "" && p.Personal.LastName == "" && p.Personal.FullName != "" {
		first, last, _ := strings.Cut(p.Personal.FullName, " ")
		p.Personal.FirstName = first
		p.Personal.LastName = strings.TrimSpace(last)
	}
}
