package fields

import (
	"strings"

	"github.com/spigell/applyfill/internal/dom"
	"github.com/spigell/applyfill/internal/utils"
)

// skippedTypes are input types that never carry user data.
var skippedTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

var nativeKinds = map[string]Kind{
	"email":          KindEmail,
	"tel":            KindPhone,
	"url":            KindURL,
	"date":           KindDate,
	"month":          KindDate,
	"week":           KindDate,
	"datetime-local": KindDate,
	"checkbox":       KindCheckbox,
	"radio":          KindRadio,
	"file":           KindFile,
}

// inferred kinds in priority order; a word matches a whole token, a stem
// matches inside a token ("mobilePhone", "emailaddress").
var inferred = []struct {
	kind  Kind
	stems []string
	words []string
}{
	{kind: KindEmail, stems: []string{"email", "e-mail"}, words: []string{"mail"}},
	{kind: KindPhone, stems: []string{"phone", "mobile", "telephone"}, words: []string{"tel", "cell"}},
	{kind: KindURL, words: []string{"url", "website", "link", "links"}},
	{kind: KindDate, words: []string{"date", "year", "dob", "birthday"}},
}

func inputType(el dom.Element) string {
	t := strings.ToLower(dom.AttrOr(el, "type"))
	if t == "" {
		return "text"
	}
	return t
}

// kindOf reads the kind from the element, inferring it from identifying text
// when the native type is a generic text input.
func kindOf(el dom.Element, text ...string) Kind {
	switch el.Tag() {
	case "select":
		return KindSelect
	case "textarea":
		return KindTextarea
	}

	if k, ok := nativeKinds[inputType(el)]; ok {
		return k
	}
	return inferKind(strings.Join(text, " "))
}

func inferKind(text string) Kind {
	tokens := utils.Tokens(text)
	joined := strings.ToLower(text)

	for _, rule := range inferred {
		for _, stem := range rule.stems {
			if strings.Contains(joined, stem) {
				return rule.kind
			}
		}
		for _, w := range rule.words {
			for _, tok := range tokens {
				if tok == w {
					return rule.kind
				}
			}
		}
	}
	return KindText
}
