package fill

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/spigell/applyfill/internal/fields"
)

const minPhoneDigits = 7

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006-01",
	"01/2006",
	"January 2006",
	"Jan 2006",
	"2006",
}

// Validate checks value against the rules of kind. Kinds without rules accept
// any value.
func Validate(kind fields.Kind, value string) error {
	v := strings.TrimSpace(value)

	switch kind {
	case fields.KindEmail:
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v || !strings.Contains(v[strings.LastIndex(v, "@")+1:], ".") {
			return fmt.Errorf("%w: %q is not an email address", ErrValidation, value)
		}
	case fields.KindPhone:
		digits := 0
		for _, r := range v {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < minPhoneDigits {
			return fmt.Errorf("%w: %q has fewer than %d digits", ErrValidation, value, minPhoneDigits)
		}
	case fields.KindURL:
		if _, err := parseURL(v); err != nil {
			return fmt.Errorf("%w: %q is not a URL", ErrValidation, value)
		}
	case fields.KindDate:
		if _, _, err := parseDate(v); err != nil {
			return fmt.Errorf("%w: %q is not a date", ErrValidation, value)
		}
	}
	return nil
}

// parseURL accepts absolute http(s) URLs and bare hosts such as
// "github.com/jd".
func parseURL(v string) (*url.URL, error) {
	if v == "" || strings.ContainsAny(v, " \t\n") {
		return nil, fmt.Errorf("empty or spaced url")
	}
	raw := v
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !strings.Contains(u.Hostname(), ".") && u.Hostname() != "localhost" {
		return nil, fmt.Errorf("host %q is not qualified", u.Hostname())
	}
	return u, nil
}

// parseDate returns the parsed date and the layout that matched.
func parseDate(v string) (time.Time, string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unknown date format")
}

// nativeDate converts a date to the wire format of a native date-like input
// type. Other types keep the value as written.
func nativeDate(inputType, value string) string {
	t, _, err := parseDate(strings.TrimSpace(value))
	if err != nil {
		return value
	}
	switch inputType {
	case "date":
		return t.Format("2006-01-02")
	case "month":
		return t.Format("2006-01")
	case "datetime-local":
		return t.Format("2006-01-02T15:04")
	}
	return value
}
