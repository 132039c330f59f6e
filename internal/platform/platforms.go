package platform

import (
	"regexp"

	"github.com/spigell/applyfill/internal/dom"
)

// Variant names one supported hiring platform.
type Variant string

const (
	Workday         Variant = "workday"
	Greenhouse      Variant = "greenhouse"
	Lever           Variant = "lever"
	Ashby           Variant = "ashby"
	ICIMS           Variant = "icims"
	SmartRecruiters Variant = "smartrecruiters"
)

func (v Variant) String() string { return string(v) }

// Convention describes where a platform puts a field's visible label when it
// is not associated with the input: the closest Ancestor of the input holds a
// Label element.
type Convention struct {
	Ancestor string
	Label    string
}

// Platform is the capability every supported variant provides.
type Platform interface {
	Variant() Variant
	// Score sums the weights of every signal that matches the page and names
	// the contributing signals.
	Score(rawURL string, doc dom.Document, w Weights) (int, []string)
	// FindContainers returns the form containers of the page.
	FindContainers(doc dom.Document) []dom.Element
	Conventions() []Convention
}

type definition struct {
	variant     Variant
	urls        []URLPattern
	markers     []string
	attributes  []string
	shadowHosts []string
	containers  []string
	conventions []Convention
}

var _ Platform = (*definition)(nil)

func (d *definition) Variant() Variant           { return d.variant }
func (d *definition) Conventions() []Convention { return d.conventions }

// Isolating reports whether the platform renders its form inside shadow roots.
func (d *definition) Isolating() bool { return len(d.shadowHosts) > 0 }

func (d *definition) Score(rawURL string, doc dom.Document, w Weights) (int, []string) {
	var (
		score   int
		signals []string
	)

	if u := ParseURL(rawURL); u != nil {
		for _, p := range d.urls {
			if p.Match(u) {
				score += w.URL
				signals = append(signals, "url:"+p.String())
			}
		}
	}
	for _, sel := range d.markers {
		if HasMarker(doc, sel) {
			score += w.Structure
			signals = append(signals, "marker:"+sel)
		}
	}
	for _, sel := range d.attributes {
		if HasMarker(doc, sel) {
			score += w.Attribute
			signals = append(signals, "attr:"+sel)
		}
	}
	for _, prefix := range d.shadowHosts {
		if HasShadowHost(doc, prefix) {
			score += w.Shadow
			signals = append(signals, "shadow:"+prefix+"*")
		}
	}

	return score, signals
}

func (d *definition) FindContainers(doc dom.Document) []dom.Element {
	if doc == nil || doc.Root() == nil {
		return nil
	}
	for _, sel := range d.containers {
		if found := outermost(dom.QueryDeep(doc.Root(), sel)); len(found) > 0 {
			return found
		}
	}
	return DefaultContainers(doc)
}

// DefaultContainers returns the page's forms, or the document root when it has
// none.
func DefaultContainers(doc dom.Document) []dom.Element {
	if doc == nil || doc.Root() == nil {
		return nil
	}
	if forms := outermost(dom.QueryDeep(doc.Root(), "form")); len(forms) > 0 {
		return forms
	}
	return []dom.Element{doc.Root()}
}

// outermost drops elements nested inside another element of the list.
func outermost(els []dom.Element) []dom.Element {
	in := make(map[dom.Handle]bool, len(els))
	for _, el := range els {
		in[el.Handle()] = true
	}

	var out []dom.Element
	seen := make(map[dom.Handle]bool, len(els))
	for _, el := range els {
		if seen[el.Handle()] {
			continue
		}
		seen[el.Handle()] = true

		nested := false
		for p := el.Parent(); p != nil; p = p.Parent() {
			if in[p.Handle()] {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, el)
		}
	}
	return out
}

// Known returns every supported platform in detection order.
func Known() []Platform {
	return []Platform{
		workday(), greenhouse(), lever(), ashby(), icims(), smartRecruiters(),
	}
}

// Lookup returns the platform for a variant.
func Lookup(v Variant) (Platform, bool) {
	for _, p := range Known() {
		if p.Variant() == v {
			return p, true
		}
	}
	return nil, false
}

func workday() *definition {
	return &definition{
		variant: Workday,
		urls: []URLPattern{
			{Domain: "myworkdayjobs.com"},
			{Domain: "myworkdaysite.com"},
			{Path: regexp.MustCompile(`/job/[^/]+/[^/]+_[A-Z]*-?\d+(/apply)?`)},
		},
		markers: []string{
			`[data-automation-id="applyFlowPage"]`,
			`[data-automation-id="jobPostingPage"]`,
		},
		attributes: []string{
			`[data-automation-id^="formField-"]`,
			`input[data-automation-id]`,
		},
		containers: []string{
			`[data-automation-id="applyFlowPage"]`,
			`[data-automation-id^="applyFlow"]`,
		},
		conventions: []Convention{
			{Ancestor: `[data-automation-id^="formField-"]`, Label: "label"},
		},
	}
}

func greenhouse() *definition {
	return &definition{
		variant: Greenhouse,
		urls: []URLPattern{
			{Domain: "greenhouse.io"},
			{Domain: "greenhouse.io", Path: regexp.MustCompile(`^/[^/]+/jobs/\d+`)},
			{Query: "gh_jid"},
		},
		markers: []string{
			"#application_form",
			"#application-form",
			"#grnhse_app",
		},
		attributes: []string{
			`input[name^="job_application["]`,
			`[id^="job_application_"]`,
		},
		containers: []string{
			"#application_form",
			"#application-form",
			"#grnhse_app",
		},
		conventions: []Convention{
			{Ancestor: ".field", Label: "label"},
		},
	}
}

func lever() *definition {
	return &definition{
		variant: Lever,
		urls: []URLPattern{
			{Domain: "lever.co"},
			{Domain: "lever.co", Path: regexp.MustCompile(`^/[^/]+/[0-9a-f-]{36}(/apply)?`)},
		},
		markers: []string{
			"form.application-form",
			".application-question",
		},
		attributes: []string{
			`input[name^="urls["]`,
			`[data-qa="btn-submit"]`,
		},
		containers: []string{
			"form.application-form",
			`form[action*="/apply"]`,
		},
		conventions: []Convention{
			{Ancestor: ".application-question", Label: ".application-label"},
		},
	}
}

func ashby() *definition {
	return &definition{
		variant: Ashby,
		urls: []URLPattern{
			{Domain: "ashbyhq.com"},
			{Domain: "ashbyhq.com", Path: regexp.MustCompile(`/application/?$`)},
		},
		markers: []string{
			`[class*="ashby-application-form-container"]`,
			`[class*="ashby-job-posting"]`,
		},
		attributes: []string{
			`input[name^="_systemfield_"]`,
			`[class*="ashby-application-form-field-entry"]`,
		},
		containers: []string{
			`[class*="ashby-application-form-container"]`,
		},
		conventions: []Convention{
			{Ancestor: `[class*="ashby-application-form-field-entry"]`, Label: "label"},
		},
	}
}

func icims() *definition {
	return &definition{
		variant: ICIMS,
		urls: []URLPattern{
			{Domain: "icims.com"},
			{Domain: "icims.com", Path: regexp.MustCompile(`^/jobs/\d+`)},
		},
		markers: []string{
			"#iCIMS_MainWrapper",
			"#iCIMS_Content",
		},
		attributes: []string{
			`[class*="iCIMS_"]`,
			`[id^="icims_"]`,
		},
		containers: []string{
			"#iCIMS_MainWrapper form",
			"#iCIMS_MainWrapper",
		},
		conventions: []Convention{
			{Ancestor: ".iCIMS_TableRow", Label: ".iCIMS_InfoField"},
			{Ancestor: ".iCIMS_FieldRow", Label: "label"},
		},
	}
}

func smartRecruiters() *definition {
	return &definition{
		variant: SmartRecruiters,
		urls: []URLPattern{
			{Domain: "smartrecruiters.com"},
			{Domain: "smartrecruiters.com", Path: regexp.MustCompile(`/oneclick-ui/`)},
		},
		markers: []string{
			"oc-oneclick-form",
			"spl-form",
		},
		attributes: []string{
			`[data-test^="oc-"]`,
		},
		shadowHosts: []string{"spl-", "oc-"},
		containers: []string{
			"oc-oneclick-form",
			"spl-form",
		},
		conventions: []Convention{
			{Ancestor: "spl-form-field", Label: "label"},
		},
	}
}
