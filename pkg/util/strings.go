package util

import (
	"sort"
	"strings"
)

// SplitCommaSeparated splits a comma-separated string and trims whitespace from each element.
// Empty input returns nil.
func SplitCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// IsBlank reports whether a cell value is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsEnabled reports whether a boolean-like cell value is switched on.
// Accepts "enabled", "true" and "yes" in any case.
func IsEnabled(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enabled", "true", "yes":
		return true
	}
	return false
}

// AddToCSV adds a value to a comma-separated list if not already present.
// Returns the value itself if the list is empty.
func AddToCSV(list, value string) string {
	if list == "" {
		return value
	}
	parts := strings.Split(list, ",")
	for _, p := range parts {
		if strings.TrimSpace(p) == value {
			return list // Already in list
		}
	}
	return list + "," + value
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CoalesceString returns the first non-empty string.
func CoalesceString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
