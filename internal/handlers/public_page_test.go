package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestHomepage_RendersListing(t *testing.T) {
	env := newTestEnv(t)
	slug := "pagina-inicial-" + uuid.New().String()[:8]
	createTestRecipe(t, env, "Receita da Home", slug)
	env.PageCache.InvalidateAll(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	env.Public.Homepage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Receita da Home") {
		t.Error("recipe title missing from homepage")
	}
	if !strings.Contains(body, "/receitas/"+slug) {
		t.Error("recipe link missing from homepage")
	}
}

func TestHomepage_SecondHitComesFromCache(t *testing.T) {
	env := newTestEnv(t)
	env.PageCache.InvalidateAll(context.Background())

	first := httptest.NewRecorder()
	env.Public.Homepage(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first hit: X-Cache = %q, want MISS", got)
	}

	second := httptest.NewRecorder()
	env.Public.Homepage(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second hit: X-Cache = %q, want HIT", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached page differs from rendered page")
	}
}

func TestRecipePage_RendersMarkdownBody(t *testing.T) {
	env := newTestEnv(t)
	slug := "pagina-receita-" + uuid.New().String()[:8]
	createTestRecipe(t, env, "Receita Completa", slug)
	env.PageCache.InvalidateAll(context.Background())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/receitas/"+slug, nil), "slug", slug)
	rec := httptest.NewRecorder()
	env.Public.RecipePage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Receita Completa") {
		t.Error("title missing from recipe page")
	}
	// The Markdown heading must come out as an HTML heading.
	if !strings.Contains(body, "Ingredientes</h2>") {
		t.Errorf("markdown body not rendered to HTML: %s", body)
	}
	if !strings.Contains(body, `<meta name="description"`) {
		t.Error("description meta tag missing")
	}
}

func TestRecipePage_UnknownSlug_Returns404(t *testing.T) {
	env := newTestEnv(t)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/receitas/nada", nil), "slug", "nao-existe-"+uuid.New().String()[:8])
	rec := httptest.NewRecorder()
	env.Public.RecipePage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestRecipePage_DraftIsNotServed(t *testing.T) {
	env := newTestEnv(t)
	slug := "rascunho-pagina-" + uuid.New().String()[:8]

	draft := createTestRecipe(t, env, "Rascunho", slug)
	draft.Published = false
	if err := env.Recipes.Update(draft); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	env.PageCache.InvalidateRecipe(context.Background(), slug)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/receitas/"+slug, nil), "slug", slug)
	rec := httptest.NewRecorder()
	env.Public.RecipePage(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("draft page: got status %d, want 404", rec.Code)
	}
}
