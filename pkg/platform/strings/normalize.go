// Package strings provides text normalization shared by keyword handling and
// marker matching.
package strings

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips combining marks, so "Ético" and "etico"
// compare equal. Surrounding whitespace is trimmed.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// CollapseSpace trims s and replaces every run of whitespace, newlines
// included, with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndFold is like DedupeAndTrim but folds each element first, so case
// and accent variants collapse onto their first occurrence.
//
// Example:
//
//	DedupeAndFold([]string{"  Dinero ", "dinero", "Presión", "presion"})
//	// Returns: []string{"dinero", "presion"}
func DedupeAndFold(values []string) []string {
	return dedupe(values, Fold)
}

func dedupe(values []string, clean func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		c := clean(v)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			result = append(result, c)
		}
	}

	return result
}
