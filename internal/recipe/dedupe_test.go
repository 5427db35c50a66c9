package recipe

import (
	"context"
	"errors"
	"testing"
)

type stubSearcher struct {
	titles []string
	err    error
}

func (s *stubSearcher) SearchTitles(ctx context.Context, query string) ([]string, error) {
	return s.titles, s.err
}

func newTestChecker(titles []string) *Checker {
	return NewChecker(&stubSearcher{titles: titles}, DefaultCheckerConfig(), nil)
}

func TestChecker_ExactMatchIgnoresCaseAndAccents(t *testing.T) {
	c := newTestChecker([]string{"risotto de camarao"})

	if !c.IsDuplicate(context.Background(), "Risotto de Camarão") {
		t.Error("accent-insensitive exact match should be a duplicate")
	}
}

func TestChecker_TokenOverlap(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		existing  []string
		want      bool
	}{
		{
			name:      "high overlap is duplicate",
			candidate: "Bolo de Chocolate Cremoso",
			existing:  []string{"Bolo de Chocolate Molhado"},
			want:      true,
		},
		{
			name:      "no shared tokens",
			candidate: "Torta de Limão Azedinha",
			existing:  []string{"Bolo de Chocolate Cremoso"},
			want:      false,
		},
		{
			name:      "single shared token is below the floor",
			candidate: "Bolo Simples",
			existing:  []string{"Bolo de Chocolate"},
			want:      false,
		},
		{
			name:      "short tokens do not count",
			candidate: "Pão de Mel",
			existing:  []string{"Bolo de Fubá"},
			want:      false,
		},
		{
			name:      "punctuation and case are ignored",
			candidate: "Frango Grelhado com Ervas!",
			existing:  []string{"frango grelhado com ervas finas"},
			want:      true,
		},
		{
			name:      "empty store",
			candidate: "Qualquer Receita Nova",
			existing:  nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChecker(tt.existing)
			if got := c.IsDuplicate(context.Background(), tt.candidate); got != tt.want {
				t.Errorf("IsDuplicate(%q) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestChecker_FailsOpenOnSearchError(t *testing.T) {
	c := NewChecker(&stubSearcher{err: errors.New("connection refused")}, DefaultCheckerConfig(), nil)

	if c.IsDuplicate(context.Background(), "Bolo de Chocolate") {
		t.Error("checker must fail open when the title lookup errors")
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Risotto de Camarão", "risotto de camarao"},
		{"  Bolo, de Chocolate!  ", "bolo de chocolate"},
		{"MOUSSE   DE   MARACUJÁ", "mousse de maracuja"},
	}

	for _, tt := range tests {
		if got := normalizeTitle(tt.in); got != tt.want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
