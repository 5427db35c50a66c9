package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"receitapress/internal/cache"
	"receitapress/internal/markdown"
	"receitapress/internal/models"
	"receitapress/internal/store"
)

// Public serves the reader-facing HTML pages: the recipe listing on /
// and individual recipes on /receitas/{slug}. Rendered pages go through
// the Valkey page cache so repeat hits skip the database and markdown
// rendering entirely.
type Public struct {
	recipes *store.RecipeStore
	pages   *cache.PageCache
	tmpl    *template.Template
	log     *slog.Logger
}

// NewPublic creates the public page handler group. The page cache may
// be nil, which disables caching but keeps the pages working.
func NewPublic(recipes *store.RecipeStore, pages *cache.PageCache, log *slog.Logger) *Public {
	if log == nil {
		log = slog.Default()
	}
	return &Public{
		recipes: recipes,
		pages:   pages,
		tmpl:    template.Must(template.New("site").Parse(siteTemplates)),
		log:     log,
	}
}

// headData carries the <head> metadata for both page templates.
type headData struct {
	Title       string
	Description string
	Keywords    string
	Image       string
}

// homepageData feeds the listing template.
type homepageData struct {
	Head    headData
	Recipes []models.Recipe
}

// recipePageData feeds the recipe template. Body is pre-rendered HTML
// from the Markdown content.
type recipePageData struct {
	Head   headData
	Recipe *models.Recipe
	Body   template.HTML
}

// Homepage renders the published recipe listing.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	if p.serveCached(w, r, cache.HomepageKey()) {
		return
	}

	recipes, err := p.recipes.ListPublished()
	if err != nil {
		p.log.Error("homepage load failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := homepageData{
		Head: headData{
			Title:       "ReceitaPress — Receitas Brasileiras Saudáveis",
			Description: "Receitas brasileiras saudáveis, novas receitas todos os dias.",
		},
		Recipes: recipes,
	}

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "homepage", data); err != nil {
		p.log.Error("homepage render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	p.storeAndWrite(w, r, cache.HomepageKey(), buf.Bytes())
}

// RecipePage renders one published recipe with its Markdown body
// converted to HTML and SEO metadata in the head.
func (p *Public) RecipePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if p.serveCached(w, r, cache.RecipeKey(slug)) {
		return
	}

	recipe, err := p.recipes.FindBySlug(slug)
	if err != nil {
		p.log.Error("recipe page load failed", "slug", slug, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if recipe == nil {
		http.NotFound(w, r)
		return
	}

	body, err := markdown.ToHTML(recipe.Content)
	if err != nil {
		p.log.Error("recipe render failed", "slug", slug, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := recipePageData{
		Head: headData{
			Title:       strOr(recipe.MetaTitle, recipe.Title),
			Description: strOr(recipe.MetaDescription, recipe.Description),
			Keywords:    strOr(recipe.MetaKeywords, ""),
			Image:       strOr(recipe.ImageURL, ""),
		},
		Recipe: recipe,
		Body:   template.HTML(body),
	}

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "recipe", data); err != nil {
		p.log.Error("recipe render failed", "slug", slug, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	p.storeAndWrite(w, r, cache.RecipeKey(slug), buf.Bytes())
}

// serveCached writes a cached page if one exists.
func (p *Public) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if p.pages == nil {
		return false
	}
	html, ok := p.pages.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", "HIT")
	w.Write(html)
	return true
}

// storeAndWrite caches the rendered page and sends it to the client.
func (p *Public) storeAndWrite(w http.ResponseWriter, r *http.Request, key string, html []byte) {
	if p.pages != nil {
		p.pages.Set(r.Context(), key, html)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	w.Write(html)
}

func strOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

// siteTemplates holds the reader-facing pages. The markup is minimal on
// purpose: the public site is content-first and mostly consumed through
// the JSON API by the main frontend.
const siteTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
{{if .Keywords}}<meta name="keywords" content="{{.Keywords}}">{{end}}
<meta property="og:title" content="{{.Title}}">
{{if .Description}}<meta property="og:description" content="{{.Description}}">{{end}}
{{if .Image}}<meta property="og:image" content="{{.Image}}">{{end}}
<style>
body{font-family:system-ui,sans-serif;max-width:720px;margin:0 auto;padding:1rem;color:#222;line-height:1.6}
a{color:#c0392b;text-decoration:none}a:hover{text-decoration:underline}
img{max-width:100%;border-radius:8px}
.card{margin-bottom:2rem}.meta{color:#777;font-size:.875rem}
h1,h2{line-height:1.25}
</style>
</head>
<body>
<header><h1><a href="/">ReceitaPress</a></h1></header>
{{end}}

{{define "foot"}}
<footer class="meta"><p>ReceitaPress — receitas brasileiras saudáveis.</p></footer>
</body>
</html>{{end}}

{{define "homepage"}}{{template "head" .Head}}
<main>
{{range .Recipes}}
<article class="card">
{{if .ImageURL}}<a href="/receitas/{{.Slug}}"><img src="{{.ImageURL}}" alt="{{.Title}}" loading="lazy"></a>{{end}}
<h2><a href="/receitas/{{.Slug}}">{{.Title}}</a></h2>
<p>{{.Description}}</p>
<p class="meta">{{.Difficulty}}{{if .CookTime}} &middot; {{.CookTime}} min{{end}}{{if .Servings}} &middot; {{.Servings}} porções{{end}}</p>
</article>
{{else}}
<p>Nenhuma receita publicada ainda.</p>
{{end}}
</main>
{{template "foot"}}{{end}}

{{define "recipe"}}{{template "head" .Head}}
<main>
<article>
{{if .Recipe.ImageURL}}<img src="{{.Recipe.ImageURL}}" alt="{{.Recipe.Title}}">{{end}}
<h2>{{.Recipe.Title}}</h2>
<p class="meta">{{.Recipe.Difficulty}}{{if .Recipe.CookTime}} &middot; {{.Recipe.CookTime}} min{{end}}{{if .Recipe.Servings}} &middot; {{.Recipe.Servings}} porções{{end}}{{if .Recipe.Category}} &middot; {{.Recipe.Category}}{{end}}</p>
<p>{{.Recipe.Description}}</p>
{{.Body}}
</article>
</main>
{{template "foot"}}{{end}}
`
