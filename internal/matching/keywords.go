package matching

// Target is a profile path together with the phrases a form uses to ask for
// it.
type Target struct {
	Path     string
	Keywords []string
}

// DefaultTargets returns the known profile paths in evaluation order. On equal
// scores the earlier path wins.
func DefaultTargets() []Target {
	return []Target{
		{"personal.firstName", []string{"first name", "given name", "forename", "fname", "first"}},
		{"personal.lastName", []string{"last name", "family name", "surname", "lname", "last"}},
		{"personal.fullName", []string{"full name", "name", "legal name", "candidate name"}},
		{"personal.email", []string{"email", "email address", "e-mail"}},
		{"personal.phone", []string{"phone", "phone number", "mobile", "mobile number", "telephone", "cell phone", "tel"}},
		{"personal.street", []string{"address", "street address", "street", "address line 1"}},
		{"personal.city", []string{"city", "town"}},
		{"personal.state", []string{"state", "province", "region", "state province"}},
		{"personal.postalCode", []string{"zip", "zip code", "postal code", "postcode"}},
		{"personal.country", []string{"country", "country of residence"}},

		{"links.linkedin", []string{"linkedin", "linkedin profile", "linkedin url"}},
		{"links.github", []string{"github", "github profile", "github url"}},
		{"links.portfolio", []string{"portfolio", "portfolio url"}},
		{"links.website", []string{"website", "personal website", "homepage", "url"}},
		{"links.twitter", []string{"twitter", "twitter handle", "x handle"}},

		{"workHistory.company", []string{"current company", "company", "employer", "current employer", "company name", "organization"}},
		{"workHistory.title", []string{"current title", "job title", "title", "position", "current position", "role"}},

		{"education.school", []string{"school", "university", "college", "institution", "school name"}},
		{"education.degree", []string{"degree", "degree type", "qualification"}},
		{"education.field", []string{"field of study", "major", "discipline", "area of study"}},
		{"education.graduationDate", []string{"graduation date", "graduation year", "year of graduation"}},
		{"education.gpa", []string{"gpa", "grade point average"}},

		{"skills", []string{"skills", "key skills", "technical skills", "technologies"}},

		{"extras.salaryExpectation", []string{"salary expectation", "expected salary", "desired salary", "salary", "compensation expectations"}},
		{"extras.noticePeriod", []string{"notice period"}},
		{"extras.startDate", []string{"start date", "earliest start date", "available start date", "availability"}},
		{"extras.workAuthorization", []string{"work authorization", "authorized to work", "legally authorized", "work permit"}},
		{"extras.requiresSponsorship", []string{"sponsorship", "visa sponsorship", "require sponsorship"}},
		{"extras.yearsOfExperience", []string{"years of experience", "experience years"}},
		{"extras.willingToRelocate", []string{"relocate", "willing to relocate", "relocation"}},
		{"extras.pronouns", []string{"pronouns"}},
	}
}

// filler words carry no meaning for matching.
var filler = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "to": true,
	"your": true, "my": true, "you": true, "please": true, "enter": true,
	"provide": true, "what": true, "is": true, "are": true, "do": true,
	"optional": true, "required": true,
}
