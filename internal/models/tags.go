package models

import "strings"

// NormalizeTag lowercases a tag and drops every character that is not an
// ASCII letter or digit.
func NormalizeTag(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTags normalizes each tag, drops empties and duplicates, and keeps
// first-seen order. Returns nil when nothing survives.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := NormalizeTag(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
