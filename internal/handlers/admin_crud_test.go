package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"receitapress/internal/models"
)

func adminRecipeBody(title, slug string) string {
	b, _ := json.Marshal(map[string]any{
		"title":        title,
		"slug":         slug,
		"description":  "Descrição de teste.",
		"ingredients":  []string{"2 xícaras de farinha", "1 ovo"},
		"instructions": []string{"Misture tudo.", "Asse por 30 minutos."},
		"tips":         []string{"Peneire a farinha."},
		"cookTime":     30,
		"difficulty":   "Fácil",
		"servings":     4,
		"published":    true,
	})
	return string(b)
}

func TestRecipeCreate_GeneratesSlugFromTitle(t *testing.T) {
	env := newTestEnv(t)
	title := "Pão de Queijo Teste " + uuid.New().String()[:8]

	req := postJSON("/api/admin/recipes", adminRecipeBody(title, ""))
	rec := httptest.NewRecorder()
	env.Admin.RecipeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created models.Recipe
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	t.Cleanup(func() { cleanRecipe(t, env.DB, created.Slug) })

	if !strings.HasPrefix(created.Slug, "pao-de-queijo-teste-") {
		t.Errorf("slug %q not derived from title", created.Slug)
	}
	if created.Content == "" || !strings.Contains(created.Content, "## Ingredientes") {
		t.Errorf("content body not assembled from structured fields: %q", created.Content)
	}
	if created.PublishedAt == nil {
		t.Error("published recipe should have a publication timestamp")
	}
}

func TestRecipeCreate_SlugCollision_GetsSuffix(t *testing.T) {
	env := newTestEnv(t)
	slug := "colisao-teste-" + uuid.New().String()[:8]
	createTestRecipe(t, env, "Original", slug)

	req := postJSON("/api/admin/recipes", adminRecipeBody("Outra Receita", slug))
	rec := httptest.NewRecorder()
	env.Admin.RecipeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created models.Recipe
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	t.Cleanup(func() { cleanRecipe(t, env.DB, created.Slug) })

	if created.Slug != slug+"-1" {
		t.Errorf("got slug %q, want %q", created.Slug, slug+"-1")
	}
}

func TestRecipeCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"title":"","ingredients":["a"],"instructions":["b"],"difficulty":"Fácil"}`},
		{"no ingredients", `{"title":"T","ingredients":[],"instructions":["b"],"difficulty":"Fácil"}`},
		{"no instructions", `{"title":"T","ingredients":["a"],"instructions":[],"difficulty":"Fácil"}`},
		{"bad difficulty", `{"title":"T","ingredients":["a"],"instructions":["b"],"difficulty":"Impossível"}`},
		{"negative cook time", `{"title":"T","ingredients":["a"],"instructions":["b"],"difficulty":"Fácil","cookTime":-5}`},
		{"not json", `{{{`},
		{"unknown field", `{"title":"T","ingredients":["a"],"instructions":["b"],"difficulty":"Fácil","bogus":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := postJSON("/api/admin/recipes", tt.body)
			rec := httptest.NewRecorder()
			env.Admin.RecipeCreate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("got status %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRecipeUpdate(t *testing.T) {
	env := newTestEnv(t)
	slug := "atualiza-teste-" + uuid.New().String()[:8]
	created := createTestRecipe(t, env, "Antes", slug)

	body := adminRecipeBody("Depois da Edição", slug)
	req := postJSON("/api/admin/recipes/"+created.ID.String(), body)
	req.Method = http.MethodPut
	req = withURLParam(req, "id", created.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.RecipeUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	reloaded, err := env.Recipes.FindByID(created.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload recipe: %v", err)
	}
	if reloaded.Title != "Depois da Edição" {
		t.Errorf("title not updated, got %q", reloaded.Title)
	}
}

func TestRecipeUpdate_UnknownID_Returns404(t *testing.T) {
	env := newTestEnv(t)

	id := uuid.New()
	req := postJSON("/api/admin/recipes/"+id.String(), adminRecipeBody("X", ""))
	req.Method = http.MethodPut
	req = withURLParam(req, "id", id.String())
	rec := httptest.NewRecorder()
	env.Admin.RecipeUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestRecipeDelete(t *testing.T) {
	env := newTestEnv(t)
	slug := "apaga-teste-" + uuid.New().String()[:8]
	created := createTestRecipe(t, env, "Para Apagar", slug)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/recipes/"+created.ID.String(), nil)
	req = withURLParam(req, "id", created.ID.String())
	rec := httptest.NewRecorder()
	env.Admin.RecipeDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	gone, err := env.Recipes.FindByID(created.ID)
	if err != nil {
		t.Fatalf("reload recipe: %v", err)
	}
	if gone != nil {
		t.Error("recipe still present after delete")
	}
}

func TestRecipeDelete_InvalidID_Returns400(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/recipes/not-a-uuid", nil)
	req = withURLParam(req, "id", "not-a-uuid")
	rec := httptest.NewRecorder()
	env.Admin.RecipeDelete(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

// --- Generation preview ---

func TestGenerate_Preview_NotPersisted(t *testing.T) {
	env := newTestEnv(t)

	req := postJSON("/api/admin/recipes/generate", `{"idea":"escondidinho de frango"}`)
	rec := httptest.NewRecorder()
	env.Admin.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Idea   string `json:"idea"`
		Source string `json:"source"`
		Recipe struct {
			Title string `json:"title"`
		} `json:"recipe"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Source != "ai" {
		t.Errorf("got source %q, want ai", body.Source)
	}
	if body.Recipe.Title != "Escondidinho de Frango Fit" {
		t.Errorf("got title %q", body.Recipe.Title)
	}

	// A preview must never write to the database.
	found, err := env.Recipes.SearchByTitle("Escondidinho de Frango Fit")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 0 {
		t.Error("preview was persisted")
	}
}

func TestGenerate_EmptyIdea_PicksRandomOne(t *testing.T) {
	env := newTestEnv(t)

	req := postJSON("/api/admin/recipes/generate", `{}`)
	rec := httptest.NewRecorder()
	env.Admin.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Idea string `json:"idea"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Idea == "" {
		t.Error("response should echo the idea that was used")
	}
}

func TestGenerate_UnusableProviderOutput_Returns502(t *testing.T) {
	env := newTestEnv(t)
	env.Provider.response = "this is not json at all"

	req := postJSON("/api/admin/recipes/generate", `{"idea":"qualquer coisa"}`)
	rec := httptest.NewRecorder()
	env.Admin.Generate(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502: %s", rec.Code, rec.Body.String())
	}
}
