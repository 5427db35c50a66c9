// handler_test.go provides shared infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"receitapress/internal/ai"
	"receitapress/internal/cache"
	"receitapress/internal/database"
	"receitapress/internal/middleware"
	"receitapress/internal/models"
	"receitapress/internal/recipe"
	"receitapress/internal/session"
	"receitapress/internal/store"
)

// mockProvider implements ai.Provider, ai.JSONGenerator, and
// ai.ImageGenerator with canned responses.
type mockProvider struct {
	name     string
	response string
	imageURL string
	err      error
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}
func (m *mockProvider) GenerateJSON(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}
func (m *mockProvider) GenerateImage(_ context.Context, _ string) (string, error) {
	return m.imageURL, m.err
}

// mockRecipeJSON is a complete provider response the Generator accepts.
const mockRecipeJSON = `{
	"title": "Escondidinho de Frango Fit",
	"description": "Um escondidinho leve com purê de mandioquinha.",
	"ingredients": ["500g de frango desfiado", "400g de mandioquinha"],
	"instructions": ["Cozinhe a mandioquinha.", "Monte as camadas e asse."],
	"tips": ["Use frango de sobras para agilizar."],
	"cookTime": 40,
	"difficulty": "Médio",
	"servings": 4,
	"metaTitle": "Escondidinho de Frango Fit",
	"metaDescription": "Escondidinho leve de frango com mandioquinha.",
	"metaKeywords": "escondidinho, frango, fit",
	"hashtags": ["#escondidinho", "#frango"],
	"category": "Carnes",
	"subcategory": "Frango"
}`

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "receitapress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "receitapress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB        *sql.DB
	Valkey    *redis.Client
	Sessions  *session.Store
	Users     *store.UserStore
	Recipes   *store.RecipeStore
	Settings  *store.SettingsStore
	PageCache *cache.PageCache
	Provider  *mockProvider
	Registry  *ai.Registry
	Scheduler *recipe.Scheduler

	Auth      *Auth
	RecipeAPI *Recipes
	Admin     *Admin
	Public    *Public
}

// newTestEnv creates a complete test environment. The AI registry runs
// on a mock provider so no network calls happen.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	sessions := session.NewStore(vk, false)
	users := store.NewUserStore(db)
	recipes := store.NewRecipeStore(db)
	settings := store.NewSettingsStore(db)
	pageCache := cache.NewPageCache(vk, cache.DefaultPageTTL)

	provider := &mockProvider{
		name:     "openai",
		response: mockRecipeJSON,
		imageURL: "https://img.example.test/preview.png",
	}
	registry := ai.NewRegistry("openai", nil)
	registry.Register("openai", provider)

	generator := recipe.NewGenerator(registry, nil, log)
	images := recipe.NewImageProducer(registry, nil, log)
	scheduler := recipe.NewScheduler(recipe.SchedulerConfig{
		Settings:  settings,
		Recipes:   recipe.NewInvalidatingPersister(recipes, pageCache),
		Generator: generator,
		Images:    images,
		Logger:    log,
	})
	t.Cleanup(scheduler.Stop)

	return &testEnv{
		DB:        db,
		Valkey:    vk,
		Sessions:  sessions,
		Users:     users,
		Recipes:   recipes,
		Settings:  settings,
		PageCache: pageCache,
		Provider:  provider,
		Registry:  registry,
		Scheduler: scheduler,

		Auth:      NewAuth(users, sessions, log),
		RecipeAPI: NewRecipes(recipes, log),
		Admin:     NewAdmin(recipes, settings, generator, scheduler, registry, pageCache, nil, log),
		Public:    NewPublic(recipes, pageCache, log),
	}
}

// testSession builds session data for request contexts.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TwoFADone: twoFADone,
	}
}

// ctxWithSession attaches session data the way LoadSession would.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// createTestRecipe inserts a published recipe and registers cleanup.
func createTestRecipe(t *testing.T, env *testEnv, title, slug string) *models.Recipe {
	t.Helper()

	created, err := env.Recipes.Create(&models.Recipe{
		Title:        title,
		Slug:         slug,
		Description:  "Receita de teste.",
		Content:      "## Ingredientes\n\n- item\n\n## Modo de Preparo\n\n1. passo",
		Ingredients:  models.StringList{"item"},
		Instructions: models.StringList{"passo"},
		CookTime:     20,
		Difficulty:   models.DifficultyEasy,
		Servings:     2,
		Published:    true,
	})
	if err != nil {
		t.Fatalf("create test recipe: %v", err)
	}
	t.Cleanup(func() { cleanRecipe(t, env.DB, created.Slug) })
	return created
}

// cleanRecipe removes a recipe by slug.
func cleanRecipe(t *testing.T, db *sql.DB, slug string) {
	t.Helper()
	if _, err := db.Exec("DELETE FROM recipes WHERE slug = $1", slug); err != nil {
		t.Errorf("clean recipe %q: %v", slug, err)
	}
}

// createTestUser inserts a user with a unique email and registers cleanup.
func createTestUser(t *testing.T, env *testEnv, role models.Role) (*models.User, string) {
	t.Helper()

	email := "test-" + uuid.New().String()[:8] + "@receitapress.local"
	password := "test-password-123"
	user, err := env.Users.Create(email, password, "Test User", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		if _, err := env.DB.Exec("DELETE FROM users WHERE id = $1", user.ID); err != nil {
			t.Errorf("clean user: %v", err)
		}
	})
	return user, password
}
