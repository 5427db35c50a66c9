package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"receitapress/internal/ai"
	"receitapress/internal/cache"
	"receitapress/internal/models"
	"receitapress/internal/recipe"
	"receitapress/internal/slug"
	"receitapress/internal/storage"
	"receitapress/internal/store"
)

// Admin serves the authenticated JSON API behind the panel: recipe
// CRUD, on-demand generation previews, auto-generation settings, and
// scheduler control.
type Admin struct {
	recipes   *store.RecipeStore
	settings  *store.SettingsStore
	generator recipe.ContentGenerator
	scheduler *recipe.Scheduler
	registry  *ai.Registry
	pages     *cache.PageCache
	files     *storage.Client
	log       *slog.Logger
}

// NewAdmin creates the admin handler group. The page cache and the
// storage client may be nil when Valkey or S3 are not configured.
func NewAdmin(
	recipes *store.RecipeStore,
	settings *store.SettingsStore,
	generator recipe.ContentGenerator,
	scheduler *recipe.Scheduler,
	registry *ai.Registry,
	pages *cache.PageCache,
	files *storage.Client,
	log *slog.Logger,
) *Admin {
	if log == nil {
		log = slog.Default()
	}
	return &Admin{
		recipes:   recipes,
		settings:  settings,
		generator: generator,
		scheduler: scheduler,
		registry:  registry,
		pages:     pages,
		files:     files,
		log:       log,
	}
}

// --- Recipe CRUD ---

// RecipesList returns every recipe, drafts included, newest first.
func (a *Admin) RecipesList(w http.ResponseWriter, r *http.Request) {
	recipes, err := a.recipes.List()
	if err != nil {
		a.log.Error("admin list recipes failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load recipes")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	respondJSON(w, http.StatusOK, recipes)
}

// RecipeCreate inserts a new recipe. A missing slug is derived from the
// title; either way the slug is made unique with a numeric suffix.
func (a *Admin) RecipeCreate(w http.ResponseWriter, r *http.Request) {
	var input recipeInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := checkInput(input); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if !validDifficulty(input.Difficulty) {
		respondError(w, http.StatusBadRequest, "difficulty must be Fácil, Médio, or Difícil")
		return
	}

	base := input.Slug
	if base == "" {
		base = slug.Generate(input.Title)
	}
	uniqueSlug, err := slug.Unique(base, a.recipes.SlugExists)
	if err != nil {
		a.log.Error("resolve slug failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create recipe")
		return
	}

	created, err := a.recipes.Create(input.toModel(uniqueSlug))
	if err != nil {
		a.log.Error("create recipe failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create recipe")
		return
	}

	a.invalidate(r, created.Slug)
	a.log.Info("recipe created", "slug", created.Slug, "published", created.Published)
	respondJSON(w, http.StatusCreated, created)
}

// RecipeUpdate replaces an existing recipe's fields. A slug change is
// re-checked for uniqueness; the old page is evicted from the cache.
func (a *Admin) RecipeUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	existing, err := a.recipes.FindByID(id)
	if err != nil {
		a.log.Error("find recipe failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load recipe")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var input recipeInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := checkInput(input); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if !validDifficulty(input.Difficulty) {
		respondError(w, http.StatusBadRequest, "difficulty must be Fácil, Médio, or Difícil")
		return
	}

	newSlug := input.Slug
	if newSlug == "" {
		newSlug = slug.Generate(input.Title)
	}
	if newSlug != existing.Slug {
		newSlug, err = slug.Unique(newSlug, a.recipes.SlugExists)
		if err != nil {
			a.log.Error("resolve slug failed", "error", err)
			respondError(w, http.StatusInternalServerError, "could not update recipe")
			return
		}
	}

	updated := input.toModel(newSlug)
	updated.ID = existing.ID
	updated.PublishedAt = existing.PublishedAt
	if err := a.recipes.Update(updated); err != nil {
		a.log.Error("update recipe failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not update recipe")
		return
	}

	a.invalidate(r, existing.Slug)
	if newSlug != existing.Slug {
		a.invalidate(r, newSlug)
	}
	respondJSON(w, http.StatusOK, updated)
}

// RecipeDelete removes a recipe, evicts its cached page, and cleans up
// its stored image objects.
func (a *Admin) RecipeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	existing, err := a.recipes.FindByID(id)
	if err != nil {
		a.log.Error("find recipe failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not load recipe")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := a.recipes.Delete(id); err != nil {
		a.log.Error("delete recipe failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "could not delete recipe")
		return
	}

	a.invalidate(r, existing.Slug)
	if a.files != nil && existing.ImageURL != nil {
		if err := a.files.DeleteImage(r.Context(), *existing.ImageURL); err != nil {
			a.log.Warn("delete stored image failed", "slug", existing.Slug, "error", err)
		}
	}
	a.log.Info("recipe deleted", "slug", existing.Slug)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- On-demand generation ---

// Generate produces a recipe preview from an idea without persisting
// anything. The panel shows the result and the operator decides whether
// to save it through RecipeCreate.
func (a *Admin) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := checkInput(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	idea := req.Idea
	if idea == "" {
		idea = recipe.RandomIdea()
	}

	generated, err := a.generator.Generate(r.Context(), idea, recipe.Options{
		Difficulty: models.Difficulty(req.Difficulty),
		CookTime:   req.CookTime,
	})
	if err != nil {
		var dup *recipe.DuplicateError
		if errors.As(err, &dup) {
			respondError(w, http.StatusConflict, "a very similar recipe already exists: "+dup.Title)
			return
		}
		var schema *recipe.SchemaError
		if errors.As(err, &schema) {
			a.log.Warn("generation returned unusable output", "idea", idea, "reason", schema.Reason)
			respondError(w, http.StatusBadGateway, "the AI provider returned an unusable response, try again")
			return
		}
		a.log.Error("generation failed", "idea", idea, "error", err)
		respondError(w, http.StatusBadGateway, "recipe generation failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"idea":   idea,
		"source": generated.Source,
		"recipe": generated,
	})
}

// --- Auto-generation settings ---

// SettingsGet returns the current auto-generation configuration.
func (a *Admin) SettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := a.settings.Get()
	if err != nil {
		a.log.Error("load settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// SettingsUpdate persists the enabled flag and interval, then brings the
// scheduler in line: restarted when enabled so a new interval takes
// effect, stopped when disabled.
func (a *Admin) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var input settingsInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := checkInput(input); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	cfg, err := a.settings.Update(input.Enabled, input.IntervalMinutes)
	if err != nil {
		a.log.Error("update settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not update settings")
		return
	}

	if input.Enabled {
		if err := a.scheduler.Restart(r.Context()); err != nil {
			a.log.Error("scheduler restart failed", "error", err)
		}
	} else {
		a.scheduler.Stop()
	}

	a.log.Info("auto-generation settings updated",
		"enabled", cfg.Enabled, "interval_minutes", cfg.IntervalMinutes)
	respondJSON(w, http.StatusOK, cfg)
}

// --- Scheduler control ---

// AutoGenStart starts the scheduler. Disabled settings make this a
// no-op; the status endpoint tells the operator what actually happened.
func (a *Admin) AutoGenStart(w http.ResponseWriter, r *http.Request) {
	if err := a.scheduler.Start(r.Context()); err != nil {
		a.log.Error("scheduler start failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not start auto-generation")
		return
	}
	a.autoGenStatus(w, r)
}

// AutoGenStop stops the scheduler. Idempotent.
func (a *Admin) AutoGenStop(w http.ResponseWriter, r *http.Request) {
	a.scheduler.Stop()
	a.autoGenStatus(w, r)
}

// AutoGenRestart restarts the scheduler, picking up interval changes.
func (a *Admin) AutoGenRestart(w http.ResponseWriter, r *http.Request) {
	if err := a.scheduler.Restart(r.Context()); err != nil {
		a.log.Error("scheduler restart failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not restart auto-generation")
		return
	}
	a.autoGenStatus(w, r)
}

// AutoGenStatus reports the scheduler state, session statistics, and the
// countdown to the next cycle.
func (a *Admin) AutoGenStatus(w http.ResponseWriter, r *http.Request) {
	a.autoGenStatus(w, r)
}

// AutoGenResetStats zeroes the session counters.
func (a *Admin) AutoGenResetStats(w http.ResponseWriter, r *http.Request) {
	a.scheduler.ResetStats()
	a.autoGenStatus(w, r)
}

func (a *Admin) autoGenStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"state": a.scheduler.State().String(),
		"stats": a.scheduler.Stats(),
	}

	next, err := a.scheduler.NextGenerationIn()
	if err != nil {
		a.log.Error("next generation time failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load scheduler status")
		return
	}
	if next != nil {
		status["nextGenerationInSeconds"] = int(next.Seconds())
	} else {
		status["nextGenerationInSeconds"] = nil
	}

	respondJSON(w, http.StatusOK, status)
}

// --- Page cache ---

// CacheClear evicts every cached public page. Used after bulk edits or
// template changes, when per-recipe invalidation would miss pages.
func (a *Admin) CacheClear(w http.ResponseWriter, r *http.Request) {
	if a.pages != nil {
		a.pages.InvalidateAll(r.Context())
	}
	a.log.Info("page cache cleared by operator")
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// --- AI provider management ---

// Providers lists the configured AI providers and which one is active.
func (a *Admin) Providers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.providerStatus())
}

// SetProvider switches the active AI provider for generation.
func (a *Admin) SetProvider(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := checkInput(req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := a.registry.SetActive(req.Provider); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.log.Info("ai provider switched", "provider", req.Provider)
	respondJSON(w, http.StatusOK, a.providerStatus())
}

// providerStatus describes the registry: the active provider, every
// configured one, and whether the active provider can generate images
// (the panel hides the image toggle when it can't).
func (a *Admin) providerStatus() map[string]any {
	return map[string]any{
		"active":          a.registry.ActiveName(),
		"available":       a.registry.Available(),
		"imageGeneration": a.registry.SupportsImageGeneration(),
	}
}

// invalidate evicts a recipe page and the homepage from the cache.
func (a *Admin) invalidate(r *http.Request, slug string) {
	if a.pages == nil {
		return
	}
	a.pages.InvalidateRecipe(r.Context(), slug)
}

// toModel converts the validated input into a Recipe ready for the store.
func (in recipeInput) toModel(resolvedSlug string) *models.Recipe {
	return &models.Recipe{
		Title:           in.Title,
		Slug:            resolvedSlug,
		Description:     in.Description,
		Content:         in.contentOrAssembled(),
		Ingredients:     models.StringList(in.Ingredients),
		Instructions:    models.StringList(in.Instructions),
		Tips:            models.StringList(in.Tips),
		CookTime:        in.CookTime,
		Difficulty:      models.Difficulty(in.Difficulty),
		Servings:        in.Servings,
		ImageURL:        optionalStr(in.ImageURL),
		MetaTitle:       optionalStr(in.MetaTitle),
		MetaDescription: optionalStr(in.MetaDescription),
		MetaKeywords:    optionalStr(in.MetaKeywords),
		Hashtags:        models.StringList(in.Hashtags),
		Category:        in.Category,
		Subcategory:     in.Subcategory,
		Published:       in.Published,
	}
}

// contentOrAssembled builds the Markdown body from the structured fields
// so manually created recipes render the same as generated ones.
func (in recipeInput) contentOrAssembled() string {
	g := recipe.Generated{
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		Tips:         in.Tips,
	}
	return g.Markdown()
}

func optionalStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
