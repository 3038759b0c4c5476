// Package normalize implements the input normalization contract applied at
// the API boundary before content reaches the note store: tag parsing and
// free-text cleanup are defensive and never fail.
package normalize

import (
	"net/url"
	"strings"
)

// ParseTags splits a raw comma-separated tag string into a normalized set:
// each entry trimmed and lowercased, empties dropped, duplicates collapsed
// preserving first occurrence order.
func ParseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags applies the same normalization to an already-split list.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CleanText trims text and collapses internal whitespace runs to single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate shortens text to at most max runes, appending an ellipsis when cut.
func Truncate(text string, max int) string {
	r := []rune(text)
	if max <= 3 || len(r) <= max {
		return text
	}
	return string(r[:max-3]) + "..."
}

// ValidURL reports whether raw parses as an absolute http(s) URL.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Domain extracts the hostname from a URL, or empty string if unparsable.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
