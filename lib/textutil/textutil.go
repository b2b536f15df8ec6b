package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`[\s\x{00a0}]+`)

// CollapseWhitespace trims a string and squashes internal runs of
// whitespace (including non-breaking spaces) into single spaces.
func CollapseWhitespace(s string) string {
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.Trim(s, " ")
}

// IsBlank reports whether a string contains nothing but whitespace or
// non-breaking spaces.
func IsBlank(s string) bool {
	return CollapseWhitespace(s) == ""
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// StripTags removes anything that looks like a markup tag, leaving the
// text content behind. It is a blunt instrument meant for single markup
// fragments, not whole documents.
func StripTags(s string) string {
	return tagRegex.ReplaceAllString(s, "")
}

// ParseCommaInt parses an integer that may carry thousands separators,
// e.g. "1,204". Returns ok=false on anything else.
func ParseCommaInt(s string) (int, bool) {
	s = strings.ReplaceAll(CollapseWhitespace(s), ",", "")
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
