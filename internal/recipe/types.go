// Package recipe implements the recipe auto-generation pipeline: prompting
// an AI provider for structured recipe content, rejecting near-duplicate
// titles, producing an illustrative image, and running the whole cycle on a
// schedule.
package recipe

import (
	"fmt"
	"strings"

	"receitapress/internal/models"
)

// Source tags where a generated recipe's content came from, so callers and
// operators can tell genuine AI output apart from substituted canned
// content.
type Source string

const (
	// SourceAI marks content produced by the text-generation provider.
	SourceAI Source = "ai"
	// SourceFallback marks pre-authored content substituted after the
	// provider signalled quota or rate-limit exhaustion.
	SourceFallback Source = "fallback"
)

// Generated is a recipe as produced by the Generator, before persistence.
// It carries no identifier, slug, or image; the scheduler adds those.
type Generated struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Ingredients     []string          `json:"ingredients"`
	Instructions    []string          `json:"instructions"`
	Tips            []string          `json:"tips"`
	CookTime        int               `json:"cookTime"`
	Difficulty      models.Difficulty `json:"difficulty"`
	Servings        int               `json:"servings"`
	MetaTitle       string            `json:"metaTitle"`
	MetaDescription string            `json:"metaDescription"`
	MetaKeywords    string            `json:"metaKeywords"`
	Hashtags        []string          `json:"hashtags"`
	Category        string            `json:"category"`
	Subcategory     string            `json:"subcategory"`

	// Source is set by the Generator, never by the provider.
	Source Source `json:"-"`
}

// Markdown assembles the full content body stored alongside the structured
// fields: ingredients as a bullet list, numbered preparation steps, and a
// closing tips section.
func (g *Generated) Markdown() string {
	var b strings.Builder

	b.WriteString("## Ingredientes\n\n")
	for i, ing := range g.Ingredients {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ing)
	}

	b.WriteString("\n\n## Modo de Preparo\n\n")
	for i, inst := range g.Instructions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, inst)
	}

	b.WriteString("\n\n## Dicas\n\n")
	for i, tip := range g.Tips {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + tip)
	}

	return b.String()
}
