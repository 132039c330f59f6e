package observe

import "strings"

// Record is one DOM mutation reported by the page.
type Record struct {
	// Type is childList, attributes, characterData or shadow.
	Type      string   `json:"type"`
	Target    string   `json:"target"`
	Attribute string   `json:"attribute"`
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
}

const recordShadow = "shadow"

var formTags = map[string]bool{
	"input":    true,
	"select":   true,
	"textarea": true,
	"form":     true,
	"label":    true,
	"fieldset": true,
	"option":   true,
}

var formAttributes = map[string]bool{
	"type":        true,
	"name":        true,
	"id":          true,
	"for":         true,
	"placeholder": true,
	"required":    true,
	"disabled":    true,
	"hidden":      true,
	"style":       true,
	"value":       true,
}

// Relevant reports whether a mutation can change what the form looks like to
// detection or discovery.
func Relevant(r Record) bool {
	if r.Type == recordShadow {
		return true
	}
	if formTags[r.Target] {
		return true
	}
	for _, tags := range [][]string{r.Added, r.Removed} {
		for _, t := range tags {
			if formTags[t] {
				return true
			}
		}
	}
	if r.Type == "attributes" {
		a := strings.ToLower(r.Attribute)
		return formAttributes[a] || strings.HasPrefix(a, "aria-")
	}
	return false
}
