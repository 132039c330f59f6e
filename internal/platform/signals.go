package platform

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/spigell/applyfill/internal/dom"
)

// URLPattern matches a page address. Domain is compared with the registrable
// domain of the page host; Path and Query narrow the match further. An empty
// Domain matches any host.
type URLPattern struct {
	Domain string
	Path   *regexp.Regexp
	Query  string
}

func (p URLPattern) String() string {
	s := p.Domain
	if p.Path != nil {
		s += p.Path.String()
	}
	if p.Query != "" {
		s += "?" + p.Query
	}
	return s
}

// Match reports whether u satisfies every part of the pattern.
func (p URLPattern) Match(u *url.URL) bool {
	if u == nil {
		return false
	}
	if p.Domain != "" && RegistrableDomain(u.Hostname()) != p.Domain {
		return false
	}
	if p.Path != nil && !p.Path.MatchString(u.EscapedPath()) {
		return false
	}
	if p.Query != "" && !u.Query().Has(p.Query) {
		return false
	}
	return p.Domain != "" || p.Path != nil || p.Query != ""
}

// ParseURL parses a page address, tolerating a missing scheme. It returns nil
// when nothing usable is left.
func ParseURL(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, "://") && strings.Contains(raw, ".") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}

// RegistrableDomain returns the domain one label below the public suffix,
// e.g. "acme.wd5.myworkdayjobs.com" -> "myworkdayjobs.com". Hosts that cannot be
// reduced are returned lower-cased as is.
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if !strings.Contains(host, ".") {
		return host
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return host
	}
	return domain
}

// HasMarker reports whether any element of the page, shadow roots included,
// matches selector.
func HasMarker(doc dom.Document, selector string) bool {
	if doc == nil {
		return false
	}
	return len(dom.QueryDeep(doc.Root(), selector)) > 0
}

// HasShadowHost reports whether the page contains an element whose tag starts
// with prefix and that carries an attached shadow root.
func HasShadowHost(doc dom.Document, prefix string) bool {
	if doc == nil {
		return false
	}
	for _, host := range ShadowHosts(doc.Root()) {
		if strings.HasPrefix(host.Tag(), prefix) {
			return true
		}
	}
	return false
}

// ShadowHosts returns every element under root that carries a shadow root,
// including hosts nested inside other shadow roots.
func ShadowHosts(root dom.Element) []dom.Element {
	if root == nil {
		return nil
	}
	var out []dom.Element
	var walk func(tree dom.Element)
	walk = func(tree dom.Element) {
		for _, host := range tree.ShadowHosts() {
			out = append(out, host)
			if shadow := host.ShadowRoot(); shadow != nil {
				walk(shadow)
			}
		}
	}
	if shadow := root.ShadowRoot(); shadow != nil {
		out = append(out, root)
		walk(shadow)
	}
	walk(root)
	return out
}
