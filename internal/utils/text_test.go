package utils

import (
	"reflect"
	"testing"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect []string
	}{
		{input: "Email Address", expect: []string{"email", "address"}},
		{input: "job_application[firstName]", expect: []string{"job", "application", "first", "name"}},
		{input: "linkedin-profile-url", expect: []string{"linkedin", "profile", "url"}},
		{input: "URLField", expect: []string{"url", "field"}},
		{input: "address2", expect: []string{"address", "2"}},
		{input: "  *  ", expect: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := Tokens(tt.input); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
