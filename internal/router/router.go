// Package router wires all HTTP routes and middleware chains: the
// public pages and JSON API, and the authenticated admin API behind
// session, 2FA, and CSRF checks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"receitapress/internal/handlers"
	"receitapress/internal/middleware"
	"receitapress/internal/session"
)

// Deps carries everything the router needs. SecureCookies marks the
// CSRF cookie HTTPS-only and is on in production.
type Deps struct {
	Sessions      *session.Store
	Auth          *handlers.Auth
	Recipes       *handlers.Recipes
	Admin         *handlers.Admin
	Public        *handlers.Public
	SecureCookies bool
}

// New creates the configured chi router.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Brute-force protection on login; generation previews hit the paid
	// AI provider, so they get their own tighter limit.
	loginLimiter := middleware.NewRateLimiter(10, 1*time.Minute)
	generateLimiter := middleware.NewRateLimiter(5, 1*time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CSRF(d.SecureCookies))

		// Public read-only API.
		r.Get("/recipes", d.Recipes.List)
		r.Get("/recipes/search", d.Recipes.Search)
		r.Get("/recipes/{slug}", d.Recipes.BySlug)
		r.Get("/recipes/{slug}/related", d.Recipes.Related)

		// Auth.
		r.With(loginLimiter.Middleware).Post("/auth/login", d.Auth.Login)
		r.Post("/auth/logout", d.Auth.Logout)

		// 2FA — requires a session but NOT a completed challenge.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/auth/me", d.Auth.Me)
			r.Post("/auth/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/auth/2fa/verify", d.Auth.TwoFAVerify)
		})

		// Admin API — authenticated and 2FA-verified.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", d.Admin.RecipesList)
				r.Post("/", d.Admin.RecipeCreate)
				r.With(generateLimiter.Middleware).Post("/generate", d.Admin.Generate)
				r.Put("/{id}", d.Admin.RecipeUpdate)
				r.Delete("/{id}", d.Admin.RecipeDelete)
			})

			r.Get("/settings", d.Admin.SettingsGet)
			r.Put("/settings", d.Admin.SettingsUpdate)

			r.Post("/cache/clear", d.Admin.CacheClear)

			r.Route("/autogen", func(r chi.Router) {
				r.Get("/status", d.Admin.AutoGenStatus)
				r.Post("/start", d.Admin.AutoGenStart)
				r.Post("/stop", d.Admin.AutoGenStop)
				r.Post("/restart", d.Admin.AutoGenRestart)
				r.Post("/reset-stats", d.Admin.AutoGenResetStats)
			})

			// Provider switching is admin-role only.
			r.Route("/ai", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/providers", d.Admin.Providers)
				r.Put("/provider", d.Admin.SetProvider)
			})
		})
	})

	// Public HTML pages.
	r.Get("/", d.Public.Homepage)
	r.Get("/receitas/{slug}", d.Public.RecipePage)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
