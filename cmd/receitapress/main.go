// Package main is the entry point for the ReceitaPress server. It loads
// configuration, connects to services, wires the recipe generation
// pipeline, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"receitapress/internal/ai"
	"receitapress/internal/cache"
	"receitapress/internal/config"
	"receitapress/internal/database"
	"receitapress/internal/handlers"
	"receitapress/internal/imaging"
	"receitapress/internal/recipe"
	"receitapress/internal/router"
	"receitapress/internal/session"
	"receitapress/internal/storage"
	"receitapress/internal/store"
)

// titleSearcher adapts the recipe store to the duplicate checker, which
// only needs the matching titles.
type titleSearcher struct {
	recipes *store.RecipeStore
}

func (s titleSearcher) SearchTitles(_ context.Context, query string) ([]string, error) {
	matches, err := s.recipes.SearchByTitle(query)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(matches))
	for i, m := range matches {
		titles[i] = m.Title
	}
	return titles, nil
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Connect to PostgreSQL and apply pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions + page cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Session and CSRF cookies are HTTPS-only outside development.
	secureCookies := !cfg.IsDev()

	sessionStore := session.NewStore(valkeyClient, secureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// libvips for recipe image processing.
	imaging.Startup(0)
	defer imaging.Shutdown()

	// Data stores.
	userStore := store.NewUserStore(db)
	recipeStore := store.NewRecipeStore(db)
	settingsStore := store.NewSettingsStore(db)

	// S3-compatible object storage (optional — the raw provider image
	// URLs are used when storage is not configured).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		}
	} else {
		slog.Warn("s3 storage not configured — generated images use provider URLs")
	}

	// AI provider registry.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini": {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
	})

	if !aiRegistry.HasProvider(cfg.AIProvider) {
		slog.Warn("configured ai provider has no api key", "provider", cfg.AIProvider)
	}
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
		"image_generation", aiRegistry.SupportsImageGeneration(),
	)

	// Generation pipeline: text generation with duplicate rejection,
	// image production, and the interval scheduler.
	dedupe := recipe.NewChecker(titleSearcher{recipes: recipeStore}, recipe.DefaultCheckerConfig(), logger)
	generator := recipe.NewGenerator(aiRegistry, dedupe, logger)

	var imageStore recipe.ImageStore
	if storageClient != nil {
		imageStore = storageClient
	}
	imageProducer := recipe.NewImageProducer(aiRegistry, imageStore, logger)

	// Recipes published by a cycle must evict the cached homepage, same
	// as admin CRUD does.
	scheduler := recipe.NewScheduler(recipe.SchedulerConfig{
		Settings:  settingsStore,
		Recipes:   recipe.NewInvalidatingPersister(recipeStore, pageCache),
		Generator: generator,
		Images:    imageProducer,
		Logger:    logger,
	})
	defer scheduler.Stop()

	// Resume auto-generation if it was enabled before the last restart.
	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := scheduler.Start(startCtx); err != nil {
		slog.Error("failed to start auto-generation", "error", err)
	}
	startCancel()

	// Handler groups.
	authHandlers := handlers.NewAuth(userStore, sessionStore, logger)
	recipeHandlers := handlers.NewRecipes(recipeStore, logger)
	adminHandlers := handlers.NewAdmin(recipeStore, settingsStore, generator, scheduler, aiRegistry, pageCache, storageClient, logger)
	publicHandlers := handlers.NewPublic(recipeStore, pageCache, logger)

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Auth:          authHandlers,
		Recipes:       recipeHandlers,
		Admin:         adminHandlers,
		Public:        publicHandlers,
		SecureCookies: secureCookies,
	})

	// WriteTimeout accommodates generation previews that wait on the AI
	// provider, which can take tens of seconds.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: stop the scheduler, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
