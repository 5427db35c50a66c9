package recipe

import (
	"context"
	"sync"
	"testing"
	"time"

	"receitapress/internal/models"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	slugs []string
}

func (r *recordingInvalidator) InvalidateRecipe(_ context.Context, slug string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slugs = append(r.slugs, slug)
}

func (r *recordingInvalidator) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.slugs...)
}

func TestInvalidatingPersister_EvictsOnCreate(t *testing.T) {
	recipes := newMemRecipes()
	pages := &recordingInvalidator{}
	p := NewInvalidatingPersister(recipes, pages)

	created, err := p.Create(&models.Recipe{Title: "Pão de Queijo", Slug: "pao-de-queijo"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Slug != "pao-de-queijo" {
		t.Errorf("slug: got %q", created.Slug)
	}

	got := pages.invalidated()
	if len(got) != 1 || got[0] != "pao-de-queijo" {
		t.Errorf("invalidated slugs: got %v, want [pao-de-queijo]", got)
	}
}

func TestInvalidatingPersister_NoEvictionOnError(t *testing.T) {
	recipes := newMemRecipes("pao-de-queijo")
	pages := &recordingInvalidator{}
	p := NewInvalidatingPersister(recipes, pages)

	if _, err := p.Create(&models.Recipe{Title: "Pão de Queijo", Slug: "pao-de-queijo"}); err == nil {
		t.Fatal("expected duplicate slug error")
	}
	if got := pages.invalidated(); len(got) != 0 {
		t.Errorf("failed create must not touch the cache, invalidated %v", got)
	}
}

func TestInvalidatingPersister_SlugExistsPassthrough(t *testing.T) {
	p := NewInvalidatingPersister(newMemRecipes("existente"), &recordingInvalidator{})

	exists, err := p.SlugExists("existente")
	if err != nil || !exists {
		t.Errorf("SlugExists(existente) = (%v, %v), want (true, nil)", exists, err)
	}
	exists, err = p.SlugExists("novo")
	if err != nil || exists {
		t.Errorf("SlugExists(novo) = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestInvalidatingPersister_NilCache(t *testing.T) {
	p := NewInvalidatingPersister(newMemRecipes(), nil)

	if _, err := p.Create(&models.Recipe{Title: "Caldo Verde", Slug: "caldo-verde"}); err != nil {
		t.Fatalf("Create with nil cache: %v", err)
	}
}

// TestScheduler_CycleEvictsPages drives a full scheduler cycle through
// the invalidating persister and checks the published recipe's pages are
// evicted.
func TestScheduler_CycleEvictsPages(t *testing.T) {
	recipes := newMemRecipes()
	pages := &recordingInvalidator{}
	settings := &memSettings{cfg: models.AutoGenSettings{Enabled: true, IntervalMinutes: 5}}
	ticker := newManualTicker()
	generator := &countingGenerator{fn: func(idea string) (*Generated, error) {
		return sampleGenerated("Bolo de Fubá Cremoso"), nil
	}}

	scheduler := NewScheduler(SchedulerConfig{
		Settings:  settings,
		Recipes:   NewInvalidatingPersister(recipes, pages),
		Generator: generator,
		Images:    fixedImages{url: "https://cdn.example/recipes/img.jpg"},
		Clock:     &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
		NewTicker: func(d time.Duration) Ticker { return ticker },
		PickIdea:  func() string { return "bolo de fubá" },
	})
	t.Cleanup(scheduler.Stop)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The first cycle runs synchronously inside Start.
	if got := recipes.count(); got != 1 {
		t.Fatalf("recipes created: got %d, want 1", got)
	}
	got := pages.invalidated()
	if len(got) != 1 || got[0] != "bolo-de-fuba-cremoso" {
		t.Errorf("invalidated slugs: got %v, want [bolo-de-fuba-cremoso]", got)
	}
}
