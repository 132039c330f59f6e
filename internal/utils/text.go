package utils

import (
	"strings"
	"unicode"
)

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Tokens splits free text and identifiers into lower-case words. camelCase,
// snake_case, kebab-case and punctuation all act as separators, so
// "job_application[firstName]" yields [job application first name].
func Tokens(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if len(cur) > 0 && boundary(runes, i) {
				flush()
			}
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()

	return words
}

// boundary reports whether a new word starts at runes[i]: a lower-to-upper
// step ("firstName"), the last capital of an acronym ("URLField") or a switch
// between letters and digits ("address2").
func boundary(runes []rune, i int) bool {
	prev, r := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(r):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
		return true
	case unicode.IsDigit(prev) != unicode.IsDigit(r):
		return true
	}
	return false
}
