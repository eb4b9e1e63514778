package ingest

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeHeader lower-cases a column name and strips all whitespace,
// so " First Name " becomes "firstname".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "")
}

// NormalizeValue trims a cell value.
func NormalizeValue(v string) string {
	return strings.TrimSpace(v)
}

// NormalizeHeaders normalizes a header row. The result never aliases the input.
func NormalizeHeaders(header []string) []string {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeHeader(h)
	}
	return keys
}
