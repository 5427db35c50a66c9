package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"receitapress/internal/models"
	"receitapress/internal/store"
)

// Recipes serves the public read-only JSON API. Only published recipes
// are ever visible here; drafts live behind the admin API.
type Recipes struct {
	store *store.RecipeStore
	log   *slog.Logger
}

// NewRecipes creates the public recipe handler group.
func NewRecipes(recipes *store.RecipeStore, log *slog.Logger) *Recipes {
	if log == nil {
		log = slog.Default()
	}
	return &Recipes{store: recipes, log: log}
}

// List returns all published recipes, newest first.
func (h *Recipes) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.store.ListPublished()
	if err != nil {
		h.log.Error("list recipes failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load recipes")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	respondJSON(w, http.StatusOK, recipes)
}

// Search returns published recipes matching the q parameter against
// title or description. An empty query is a 400 rather than a full dump.
func (h *Recipes) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	recipes, err := h.store.SearchByTitle(query)
	if err != nil {
		h.log.Error("search recipes failed", "query", query, "error", err)
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	respondJSON(w, http.StatusOK, recipes)
}

// BySlug returns one published recipe.
func (h *Recipes) BySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	recipe, err := h.store.FindBySlug(slug)
	if err != nil {
		h.log.Error("find recipe failed", "slug", slug, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load recipe")
		return
	}
	if recipe == nil {
		respondError(w, http.StatusNotFound, "recipe not found")
		return
	}
	respondJSON(w, http.StatusOK, recipe)
}

// Related returns up to six published recipes related to the given one,
// by shared hashtags first and difficulty as the fallback.
func (h *Recipes) Related(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	recipe, err := h.store.FindBySlug(slug)
	if err != nil {
		h.log.Error("find recipe failed", "slug", slug, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load recipe")
		return
	}
	if recipe == nil {
		respondError(w, http.StatusNotFound, "recipe not found")
		return
	}

	related, err := h.store.Related(recipe)
	if err != nil {
		h.log.Error("related recipes failed", "slug", slug, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load related recipes")
		return
	}
	if related == nil {
		related = []models.Recipe{}
	}
	respondJSON(w, http.StatusOK, related)
}
