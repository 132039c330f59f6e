package profile

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Resolve returns the value at a dotted path such as "personal.email" or
// "workHistory.company". Lists ordered most recent first resolve to the first
// entry's sub-field, a list of names or scalars is joined with commas and any
// other list is returned as compact JSON. Missing paths resolve to "".
func (p *Profile) Resolve(path string) string {
	if p == nil || path == "" {
		return ""
	}
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return ResolveJSON(data, path)
}

// ResolveJSON walks path over a JSON document with the same rules as
// Profile.Resolve.
func ResolveJSON(data []byte, path string) string {
	return walk(gjson.ParseBytes(data), strings.Split(path, "."))
}

func walk(cur gjson.Result, parts []string) string {
	for i, part := range parts {
		cur = cur.Get(escape(part))
		if !cur.Exists() {
			return ""
		}
		if cur.IsArray() {
			return fromList(cur, parts[i+1:])
		}
	}
	return scalar(cur)
}

func fromList(list gjson.Result, rest []string) string {
	items := list.Array()
	if len(items) == 0 {
		return ""
	}
	if len(rest) > 0 {
		return walk(items[0], rest)
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case it.Type == gjson.String || it.Type == gjson.Number:
			names = append(names, it.String())
		case it.IsObject() && it.Get("name").Type == gjson.String:
			names = append(names, it.Get("name").String())
		default:
			return list.Raw
		}
	}
	return strings.Join(names, ", ")
}

func scalar(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.JSON:
		return r.Raw
	}
	return strings.TrimSpace(r.String())
}

var escaper = strings.NewReplacer(
	`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`,
)

// escape makes a single key safe for gjson path syntax.
func escape(key string) string {
	return escaper.Replace(key)
}
