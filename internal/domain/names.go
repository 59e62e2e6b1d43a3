package domain

import "strings"

// CanonicalName is the form used for uniqueness comparison of product and
// category names: trimmed and lower-cased.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeNames trims every name, drops blanks and removes case-insensitive
// duplicates. The first spelling seen for a name is the one kept.
func NormalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
