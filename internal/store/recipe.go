package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"receitapress/internal/models"
)

// recipeColumns is the column list shared by every recipe query.
const recipeColumns = `id, title, slug, description, content, ingredients, instructions, tips,
	cook_time, difficulty, servings, image_url, meta_title, meta_description, meta_keywords,
	hashtags, category, subcategory, published, published_at, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner, r *models.Recipe) error {
	return row.Scan(
		&r.ID, &r.Title, &r.Slug, &r.Description, &r.Content,
		&r.Ingredients, &r.Instructions, &r.Tips,
		&r.CookTime, &r.Difficulty, &r.Servings,
		&r.ImageURL, &r.MetaTitle, &r.MetaDescription, &r.MetaKeywords,
		&r.Hashtags, &r.Category, &r.Subcategory,
		&r.Published, &r.PublishedAt, &r.CreatedAt, &r.UpdatedAt,
	)
}

// RecipeStore handles all recipe-related database operations.
type RecipeStore struct {
	db *sql.DB
}

// NewRecipeStore creates a new RecipeStore with the given database connection.
func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// List returns every recipe, drafts included, newest first. Used by the
// admin panel.
func (s *RecipeStore) List() ([]models.Recipe, error) {
	rows, err := s.db.Query(`SELECT ` + recipeColumns + ` FROM recipes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

// ListPublished returns all published recipes, newest first. Used by the
// public site and API.
func (s *RecipeStore) ListPublished() ([]models.Recipe, error) {
	rows, err := s.db.Query(`
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE published = TRUE
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list published recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

// FindBySlug retrieves a published recipe by its slug. Returns nil if not found.
func (s *RecipeStore) FindBySlug(slug string) (*models.Recipe, error) {
	r := &models.Recipe{}
	err := scanRecipe(s.db.QueryRow(`
		SELECT `+recipeColumns+` FROM recipes WHERE slug = $1 AND published = TRUE
	`, slug), r)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe by slug: %w", err)
	}
	return r, nil
}

// FindByID retrieves a recipe by its UUID regardless of published state.
// Returns nil if not found.
func (s *RecipeStore) FindByID(id uuid.UUID) (*models.Recipe, error) {
	r := &models.Recipe{}
	err := scanRecipe(s.db.QueryRow(`
		SELECT `+recipeColumns+` FROM recipes WHERE id = $1
	`, id), r)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe by id: %w", err)
	}
	return r, nil
}

// SlugExists reports whether any recipe (draft or published) uses the slug.
// Slug uniqueness is global; drafts reserve their slugs too.
func (s *RecipeStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM recipes WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

// SearchByTitle returns published recipes whose title or description
// matches the query, newest first, capped at 20 results.
func (s *RecipeStore) SearchByTitle(query string) ([]models.Recipe, error) {
	rows, err := s.db.Query(`
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE published = TRUE
		  AND (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT 20
	`, query)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

// Related returns up to six published recipes that share a hashtag with
// the given recipe, falling back to recipes of the same difficulty when
// no hashtags overlap.
func (s *RecipeStore) Related(recipe *models.Recipe) ([]models.Recipe, error) {
	others, err := s.listPublishedExcept(recipe.ID)
	if err != nil {
		return nil, err
	}

	if len(recipe.Hashtags) > 0 {
		tagged := make(map[string]bool, len(recipe.Hashtags))
		for _, h := range recipe.Hashtags {
			tagged[h] = true
		}

		var related []models.Recipe
		for _, other := range others {
			for _, h := range other.Hashtags {
				if tagged[h] {
					related = append(related, other)
					break
				}
			}
		}
		if len(related) > 0 {
			return capRecipes(related, 6), nil
		}
	}

	// No hashtag overlap: fall back to same-difficulty recipes.
	var related []models.Recipe
	for _, other := range others {
		if other.Difficulty == recipe.Difficulty {
			related = append(related, other)
		}
	}
	if len(related) == 0 {
		related = others
	}
	return capRecipes(related, 6), nil
}

// Create inserts a new recipe and returns it with the generated ID and
// timestamps. When the recipe is published and no published_at is set,
// the current time is recorded.
func (s *RecipeStore) Create(r *models.Recipe) (*models.Recipe, error) {
	if r.Published && r.PublishedAt == nil {
		now := time.Now()
		r.PublishedAt = &now
	}

	result := &models.Recipe{}
	err := scanRecipe(s.db.QueryRow(`
		INSERT INTO recipes (title, slug, description, content, ingredients, instructions, tips,
			cook_time, difficulty, servings, image_url, meta_title, meta_description, meta_keywords,
			hashtags, category, subcategory, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+recipeColumns,
		r.Title, r.Slug, r.Description, r.Content, r.Ingredients, r.Instructions, r.Tips,
		r.CookTime, r.Difficulty, r.Servings, r.ImageURL, r.MetaTitle, r.MetaDescription, r.MetaKeywords,
		r.Hashtags, r.Category, r.Subcategory, r.Published, r.PublishedAt,
	), result)
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return result, nil
}

// Update modifies an existing recipe.
func (s *RecipeStore) Update(r *models.Recipe) error {
	if r.Published && r.PublishedAt == nil {
		now := time.Now()
		r.PublishedAt = &now
	}

	_, err := s.db.Exec(`
		UPDATE recipes SET
			title = $1, slug = $2, description = $3, content = $4,
			ingredients = $5, instructions = $6, tips = $7,
			cook_time = $8, difficulty = $9, servings = $10, image_url = $11,
			meta_title = $12, meta_description = $13, meta_keywords = $14,
			hashtags = $15, category = $16, subcategory = $17,
			published = $18, published_at = $19, updated_at = NOW()
		WHERE id = $20
	`, r.Title, r.Slug, r.Description, r.Content,
		r.Ingredients, r.Instructions, r.Tips,
		r.CookTime, r.Difficulty, r.Servings, r.ImageURL,
		r.MetaTitle, r.MetaDescription, r.MetaKeywords,
		r.Hashtags, r.Category, r.Subcategory,
		r.Published, r.PublishedAt, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

// Delete removes a recipe by ID.
func (s *RecipeStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// listPublishedExcept returns all published recipes except the given ID.
func (s *RecipeStore) listPublishedExcept(id uuid.UUID) ([]models.Recipe, error) {
	rows, err := s.db.Query(`
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE published = TRUE AND id != $1
		ORDER BY created_at DESC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list related candidates: %w", err)
	}
	defer rows.Close()
	return collectRecipes(rows)
}

func collectRecipes(rows *sql.Rows) ([]models.Recipe, error) {
	var items []models.Recipe
	for rows.Next() {
		var r models.Recipe
		if err := scanRecipe(rows, &r); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func capRecipes(items []models.Recipe, n int) []models.Recipe {
	if len(items) > n {
		return items[:n]
	}
	return items
}
