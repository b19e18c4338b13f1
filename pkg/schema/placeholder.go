package schema

import "regexp"

// placeholderRe matches {{field}} with optional inner spaces.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Placeholders returns the field names referenced by {{field}} placeholders
// in s, in order of appearance. Duplicates are kept.
func Placeholders(s string) []string {
	matches := placeholderRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return names
}

// Expand replaces every {{field}} placeholder in s using lookup. The first
// field lookup cannot resolve is returned as missing, with s partially
// expanded.
func Expand(s string, lookup func(field string) (string, bool)) (out string, missing string) {
	out = placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		v, ok := lookup(name)
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return v
	})
	return out, missing
}

// templateFields walks a decoded JSON template and collects every
// placeholder referenced from its keys and string values.
func templateFields(node interface{}, into map[string]bool) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, child := range v {
			for _, f := range Placeholders(k) {
				into[f] = true
			}
			templateFields(child, into)
		}
	case []interface{}:
		for _, child := range v {
			templateFields(child, into)
		}
	case string:
		for _, f := range Placeholders(v) {
			into[f] = true
		}
	}
}
