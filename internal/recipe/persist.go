package recipe

import (
	"context"

	"receitapress/internal/models"
)

// PageInvalidator evicts the cached public pages for a recipe slug.
// cache.PageCache satisfies it.
type PageInvalidator interface {
	InvalidateRecipe(ctx context.Context, slug string)
}

// InvalidatingPersister wraps a RecipePersister so that recipes created
// by the scheduler also evict the page cache. Without the eviction the
// homepage would keep serving a stale listing until the cache TTL
// expires after an auto-generation cycle publishes a recipe.
type InvalidatingPersister struct {
	recipes RecipePersister
	pages   PageInvalidator
}

// NewInvalidatingPersister wires a persister to a page cache. A nil
// pages argument disables eviction, matching deployments without Valkey.
func NewInvalidatingPersister(recipes RecipePersister, pages PageInvalidator) *InvalidatingPersister {
	return &InvalidatingPersister{recipes: recipes, pages: pages}
}

func (p *InvalidatingPersister) SlugExists(slug string) (bool, error) {
	return p.recipes.SlugExists(slug)
}

// Create persists the recipe and, on success, evicts its page and the
// homepage from the cache. A failed insert leaves the cache untouched.
func (p *InvalidatingPersister) Create(r *models.Recipe) (*models.Recipe, error) {
	created, err := p.recipes.Create(r)
	if err != nil {
		return nil, err
	}
	if p.pages != nil {
		p.pages.InvalidateRecipe(context.Background(), created.Slug)
	}
	return created, nil
}
