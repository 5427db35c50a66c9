package recipe

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TitleSearcher finds existing recipes whose titles resemble a query.
// *store.RecipeStore satisfies it through an adapter in the wiring layer;
// only the titles of the results are inspected.
type TitleSearcher interface {
	SearchTitles(ctx context.Context, query string) ([]string, error)
}

// CheckerConfig holds the similarity thresholds. The defaults reproduce
// the production heuristic; they are parameters rather than constants
// because the thresholds were chosen by feel, not measurement.
type CheckerConfig struct {
	// MinSharedTokens is the floor on shared significant tokens.
	MinSharedTokens int
	// OverlapRatio is the fraction of the candidate's significant tokens
	// that must appear in an existing title.
	OverlapRatio float64
	// MinTokenLength: tokens must be strictly longer than this to count.
	MinTokenLength int
}

// DefaultCheckerConfig returns the production thresholds.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		MinSharedTokens: 2,
		OverlapRatio:    0.7,
		MinTokenLength:  3,
	}
}

// Checker judges whether a candidate recipe title is too similar to an
// already stored one. It fails open: if the title lookup errors, the
// candidate is accepted, trading strict uniqueness for availability.
type Checker struct {
	search TitleSearcher
	cfg    CheckerConfig
	log    *slog.Logger
}

// NewChecker creates a Checker over the given title searcher.
func NewChecker(search TitleSearcher, cfg CheckerConfig, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{search: search, cfg: cfg, log: log}
}

// IsDuplicate reports whether the candidate title is judged too similar to
// an existing recipe title.
func (c *Checker) IsDuplicate(ctx context.Context, title string) bool {
	existing, err := c.search.SearchTitles(ctx, title)
	if err != nil {
		c.log.Warn("duplicate check failed, accepting candidate", "title", title, "error", err)
		return false
	}

	candidate := normalizeTitle(title)
	candidateTokens := significantTokens(candidate, c.cfg.MinTokenLength)

	for _, other := range existing {
		normalized := normalizeTitle(other)
		if normalized == candidate {
			return true
		}
		if c.overlaps(candidateTokens, significantTokens(normalized, c.cfg.MinTokenLength)) {
			return true
		}
	}
	return false
}

// overlaps applies the token-overlap rule: the number of significant
// tokens the two titles share must reach max(MinSharedTokens,
// OverlapRatio * len(candidate tokens)), with the ratio truncated so that
// e.g. two shared tokens out of three trip the 0.7 threshold.
func (c *Checker) overlaps(candidate, other []string) bool {
	if len(candidate) == 0 {
		return false
	}

	otherSet := make(map[string]bool, len(other))
	for _, t := range other {
		otherSet[t] = true
	}

	shared := 0
	for _, t := range candidate {
		if otherSet[t] {
			shared++
		}
	}

	threshold := int(float64(len(candidate)) * c.cfg.OverlapRatio)
	if threshold < c.cfg.MinSharedTokens {
		threshold = c.cfg.MinSharedTokens
	}
	return shared >= threshold
}

var (
	titlePunctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	titleWhitespace  = regexp.MustCompile(`\s+`)
	titleDeaccent    = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// normalizeTitle lowercases, strips diacritics and punctuation, and
// collapses whitespace so "Risotto de Camarão!" and "risotto de camarao"
// compare equal.
func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if stripped, _, err := transform.String(titleDeaccent, s); err == nil {
		s = stripped
	}
	s = titlePunctuation.ReplaceAllString(s, "")
	s = titleWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// significantTokens splits a normalized title into the tokens that count
// for the overlap rule.
func significantTokens(normalized string, minLen int) []string {
	var tokens []string
	for _, t := range strings.Fields(normalized) {
		if len([]rune(t)) > minLen {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
