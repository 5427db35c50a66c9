// Package slug provides URL-friendly slug generation from recipe titles,
// including a collision-resolving helper for unique slugs.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// whitespace matches runs of whitespace characters.
	whitespace = regexp.MustCompile(`\s+`)
	// deaccent decomposes characters and strips combining marks, so that
	// "Camarão" becomes "Camarao" before the ASCII filter runs.
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Risotto de Camarão!" → "risotto-de-camarao"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	if stripped, _, err := transform.String(deaccent, result); err == nil {
		result = stripped
	}
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(strings.TrimSpace(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Unique resolves slug collisions by probing with the exists callback and
// appending an incrementing numeric suffix until a free slug is found.
// Given existing slugs {"bolo", "bolo-1"}, Unique("bolo", ...) returns
// "bolo-2". The probe-then-insert sequence is not atomic; the recipes
// table keeps a unique index on slug as the final guard.
func Unique(base string, exists func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("slug probe %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
