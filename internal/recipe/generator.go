package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"receitapress/internal/ai"
	"receitapress/internal/models"
)

const systemPrompt = "Você é um chef especialista em receitas brasileiras saudáveis. Responda sempre em JSON válido."

const promptTemplate = `Gere uma receita completa em português brasileiro baseada na ideia: "%s".

IMPORTANTE: Responda APENAS com um JSON válido no formato especificado abaixo, sem texto adicional.

Formato JSON obrigatório:
{
  "title": "Título atrativo da receita",
  "description": "Descrição resumida em 1-2 frases",
  "ingredients": ["ingrediente 1", "ingrediente 2", "..."],
  "instructions": ["passo 1", "passo 2", "..."],
  "tips": ["dica 1", "dica 2", "..."],
  "cookTime": 30,
  "difficulty": "Fácil",
  "servings": 4,
  "metaTitle": "Título SEO otimizado (max 60 chars)",
  "metaDescription": "Meta descrição SEO (max 160 chars)",
  "metaKeywords": "palavra1, palavra2, palavra3",
  "hashtags": ["#hashtag1", "#hashtag2", "#hashtag3", "#hashtag4", "#hashtag5", "#hashtag6", "#hashtag7", "#hashtag8", "#hashtag9", "#hashtag10"],
  "category": "Categoria específica (ex: Massas, Peixes, Mariscos, Carnes, Sobremesas, Bebidas, Saladas)",
  "subcategory": "Subcategoria detalhada (ex: Pizza, Macarrão, Camarão, Peixe, Bolos, Tortas, Sucos)"
}

Instruções para cookTime e difficulty:
- CALCULE o cookTime real baseado no tempo total de preparo + cozimento da receita (em minutos)
- DEFINA a difficulty baseada na complexidade real:
  * "Fácil": receitas simples, poucos ingredientes, técnicas básicas
  * "Médio": técnicas intermediárias, vários passos, ingredientes variados
  * "Difícil": técnicas avançadas, muitos ingredientes, preparo complexo

Outros requisitos:
- Receita deve ser autêntica e executável
- Ingredientes com quantidades específicas
- Instruções claras e numeradas
- 3-5 dicas úteis e práticas
- 10 hashtags relevantes para categorização e busca
- Categoria e subcategoria bem definidas para filtros
- SEO otimizado para blogs de culinária
- Foco em receitas saudáveis e saborosas`

// TextGenerator is the slice of the AI registry the Generator needs.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options carries optional hints passed through to the prompt. The
// provider still decides the final values; hints only bias them.
type Options struct {
	Difficulty models.Difficulty
	CookTime   int
}

// Generator turns a short idea phrase into a full structured recipe via
// the text provider, rejecting results whose titles collide with content
// that already exists.
type Generator struct {
	ai     TextGenerator
	dedupe *Checker
	log    *slog.Logger
}

// NewGenerator creates a Generator. The checker may be nil, in which case
// no duplicate detection is performed.
func NewGenerator(textGen TextGenerator, dedupe *Checker, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{ai: textGen, dedupe: dedupe, log: log}
}

// Generate produces a recipe for the given idea.
//
// Failure modes: a *SchemaError when the provider's output is unusable, a
// *DuplicateError when the title is too close to an existing recipe, and
// a wrapped error for anything else. Quota and rate-limit exhaustion is
// absorbed: a pre-authored fallback recipe is returned instead, tagged
// SourceFallback so callers can tell.
func (g *Generator) Generate(ctx context.Context, idea string, opts Options) (*Generated, error) {
	if strings.TrimSpace(idea) == "" {
		return nil, fmt.Errorf("generate recipe: empty idea")
	}

	result, err := g.callProvider(ctx, idea, opts)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			return nil, err
		}

		var quotaErr *ai.QuotaError
		if !errors.As(err, &quotaErr) {
			return nil, fmt.Errorf("generate recipe: %w", err)
		}

		g.log.Warn("provider quota exhausted, using fallback recipe",
			"idea", idea, "provider", quotaErr.Provider)
		result = fallbackRecipe(idea)
	}

	if g.dedupe != nil && g.dedupe.IsDuplicate(ctx, result.Title) {
		return nil, &DuplicateError{Title: result.Title}
	}

	return result, nil
}

// callProvider issues the single text-generation request and parses the
// structured response.
func (g *Generator) callProvider(ctx context.Context, idea string, opts Options) (*Generated, error) {
	prompt := fmt.Sprintf(promptTemplate, idea)
	if opts.Difficulty != "" {
		prompt += fmt.Sprintf("\n- A dificuldade deve ser %q", opts.Difficulty)
	}
	if opts.CookTime > 0 {
		prompt += fmt.Sprintf("\n- O tempo de preparo deve ficar em torno de %d minutos", opts.CookTime)
	}

	raw, err := g.ai.GenerateJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var result Generated
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if result.Title == "" || len(result.Ingredients) == 0 || len(result.Instructions) == 0 {
		return nil, &SchemaError{Reason: "missing title, ingredients, or instructions"}
	}

	result.Source = SourceAI
	return &result, nil
}
