package textutil

import (
	"strings"
	"unicode/utf8"
)

const Ellipsis = "..."

// Truncate shortens s to at most limit runes, replacing the tail with an ellipsis.
// Strings within the limit are returned unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= len(Ellipsis) {
		return string([]rune(s)[:limit])
	}

	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit-len(Ellipsis)]), " ") + Ellipsis
}

// Clip cuts s to at most limit runes without adding a marker
func Clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// CollapseSpaces replaces every run of whitespace with a single space and trims the ends
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Len returns the number of runes in s
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
