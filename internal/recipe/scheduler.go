package recipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"receitapress/internal/models"
	"receitapress/internal/slug"
)

// maxGenerationAttempts bounds how many times one cycle asks the
// Generator for content before giving up on duplicate titles.
const maxGenerationAttempts = 5

// State is the scheduler's lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Ticker abstracts time.Ticker so tests can fire ticks on demand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker for the given period.
type TickerFactory func(d time.Duration) Ticker

type systemTicker struct{ t *time.Ticker }

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }

func newSystemTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

// SettingsStore is the slice of the settings persistence the scheduler
// uses. *store.SettingsStore satisfies it.
type SettingsStore interface {
	Get() (*models.AutoGenSettings, error)
	SetLastGeneration(ts time.Time) error
}

// RecipePersister is the slice of the recipe persistence the scheduler
// uses. *store.RecipeStore satisfies it.
type RecipePersister interface {
	SlugExists(slug string) (bool, error)
	Create(r *models.Recipe) (*models.Recipe, error)
}

// ContentGenerator produces recipe content from an idea. *Generator
// satisfies it.
type ContentGenerator interface {
	Generate(ctx context.Context, idea string, opts Options) (*Generated, error)
}

// ImageURLProducer returns a usable image URL for a recipe title.
// *ImageProducer satisfies it.
type ImageURLProducer interface {
	Produce(ctx context.Context, title string) string
}

// Stats are process-local counters shown to operators. They carry no
// durability guarantee and reset on restart.
type Stats struct {
	RecipesGenerated int       `json:"recipesGenerated"`
	SessionStart     time.Time `json:"sessionStartTime"`
}

// SchedulerConfig wires a Scheduler. Clock, NewTicker, PickIdea, and
// Logger are optional and default to the real implementations.
type SchedulerConfig struct {
	Settings  SettingsStore
	Recipes   RecipePersister
	Generator ContentGenerator
	Images    ImageURLProducer
	Logger    *slog.Logger
	Clock     Clock
	NewTicker TickerFactory
	PickIdea  func() string
}

// Scheduler owns the repeating auto-generation timer. It is a two-state
// machine (stopped/running); Start reads the interval from settings, runs
// one cycle immediately, then arms the ticker. Each tick re-reads
// settings so disabling takes effect without an explicit Stop call.
//
// A single-flight guard ensures cycles never overlap: a tick arriving
// while a cycle is still in flight is skipped, not queued.
type Scheduler struct {
	settings  SettingsStore
	recipes   RecipePersister
	generator ContentGenerator
	images    ImageURLProducer
	log       *slog.Logger
	clock     Clock
	newTicker TickerFactory
	pickIdea  func() string

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc

	inFlight atomic.Bool

	statsMu sync.Mutex
	stats   Stats
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = newSystemTicker
	}
	if cfg.PickIdea == nil {
		cfg.PickIdea = RandomIdea
	}
	return &Scheduler{
		settings:  cfg.Settings,
		recipes:   cfg.Recipes,
		generator: cfg.Generator,
		images:    cfg.Images,
		log:       cfg.Logger,
		clock:     cfg.Clock,
		newTicker: cfg.NewTicker,
		pickIdea:  cfg.PickIdea,
		stats:     Stats{SessionStart: cfg.Clock.Now()},
	}
}

// Start transitions the scheduler to running: it reads the current
// settings, performs one generation cycle synchronously, then arms the
// repeating ticker. Starting an already-running scheduler is a no-op, as
// is starting while auto-generation is disabled in settings.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return nil
	}

	cfg, err := s.settings.Get()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler start: %w", err)
	}
	if !cfg.Enabled {
		s.mu.Unlock()
		s.log.Info("auto-generation is disabled")
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = StateRunning
	s.mu.Unlock()

	s.log.Info("starting auto-generation", "interval_minutes", cfg.IntervalMinutes)

	// First recipe is generated immediately, before the ticker is armed.
	s.runCycle(ctx)

	ticker := s.newTicker(cfg.Interval())
	go s.loop(loopCtx, ticker)

	return nil
}

// Stop cancels the ticker loop and marks the scheduler stopped. It is
// idempotent and returns immediately; an in-flight cycle runs to
// completion, only future ticks are prevented.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return
	}
	s.cancel()
	s.cancel = nil
	s.state = StateStopped
	s.log.Info("auto-generation stopped")
}

// Restart stops and starts the scheduler, picking up interval changes.
func (s *Scheduler) Restart(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a copy of the session statistics.
func (s *Scheduler) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// ResetStats zeroes the session counter and restarts the session clock.
func (s *Scheduler) ResetStats() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats = Stats{SessionStart: s.clock.Now()}
}

// NextGenerationIn returns how long until the next cycle is due, derived
// from the last generation timestamp and the configured interval, floored
// at zero. It returns nil when auto-generation is disabled or has never
// run.
func (s *Scheduler) NextGenerationIn() (*time.Duration, error) {
	cfg, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("next generation time: %w", err)
	}
	if !cfg.Enabled || cfg.LastGenerationAt == nil {
		return nil, nil
	}

	d := cfg.LastGenerationAt.Add(cfg.Interval()).Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	return &d, nil
}

// loop waits for ticks until the context is cancelled. Each tick re-reads
// settings: a disabled flag stops the scheduler, anything else runs one
// cycle.
func (s *Scheduler) loop(ctx context.Context, ticker Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			cfg, err := s.settings.Get()
			if err != nil {
				s.log.Error("read settings at tick", "error", err)
				continue
			}
			if !cfg.Enabled {
				s.log.Info("auto-generation disabled in settings, stopping")
				s.Stop()
				return
			}
			// The cycle keeps its own context so a Stop during the cycle
			// lets it finish.
			s.runCycle(context.Background())
		}
	}
}

// runCycle executes one generation cycle under the single-flight guard.
// All cycle errors are logged here and never propagate; a failed cycle is
// a skipped cycle, the ticker keeps running.
func (s *Scheduler) runCycle(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Warn("generation cycle still in flight, skipping tick")
		return
	}
	defer s.inFlight.Store(false)

	if err := s.generateOne(ctx); err != nil {
		s.log.Error("generation cycle failed", "error", err)
	}
}

// generateOne runs the full pipeline: random idea, generation with
// bounded retries on duplicate titles, image production, unique slug,
// persistence as published, and statistics bookkeeping.
func (s *Scheduler) generateOne(ctx context.Context) error {
	var generated *Generated

	backoff := retry.WithMaxRetries(maxGenerationAttempts-1, retry.NewConstant(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		idea := s.pickIdea()

		g, genErr := s.generator.Generate(ctx, idea, Options{})
		if genErr != nil {
			var dup *DuplicateError
			if errors.As(genErr, &dup) {
				s.log.Info("duplicate title, retrying with a fresh idea", "title", dup.Title)
				return retry.RetryableError(genErr)
			}
			return genErr
		}

		generated = g
		return nil
	})
	if err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			return fmt.Errorf("no unique recipe after %d attempts: %w", maxGenerationAttempts, err)
		}
		return fmt.Errorf("generate content: %w", err)
	}

	// Image failures never abort the cycle; Produce always returns a URL.
	imageURL := s.images.Produce(ctx, generated.Title)

	uniqueSlug, err := slug.Unique(slug.Generate(generated.Title), s.recipes.SlugExists)
	if err != nil {
		return fmt.Errorf("resolve slug: %w", err)
	}

	created, err := s.recipes.Create(&models.Recipe{
		Title:           generated.Title,
		Slug:            uniqueSlug,
		Description:     generated.Description,
		Content:         generated.Markdown(),
		Ingredients:     models.StringList(generated.Ingredients),
		Instructions:    models.StringList(generated.Instructions),
		Tips:            models.StringList(generated.Tips),
		CookTime:        generated.CookTime,
		Difficulty:      generated.Difficulty,
		Servings:        generated.Servings,
		ImageURL:        &imageURL,
		MetaTitle:       optional(generated.MetaTitle),
		MetaDescription: optional(generated.MetaDescription),
		MetaKeywords:    optional(generated.MetaKeywords),
		Hashtags:        models.StringList(generated.Hashtags),
		Category:        generated.Category,
		Subcategory:     generated.Subcategory,
		Published:       true,
	})
	if err != nil {
		return fmt.Errorf("persist generated recipe: %w", err)
	}

	s.statsMu.Lock()
	s.stats.RecipesGenerated++
	total := s.stats.RecipesGenerated
	s.statsMu.Unlock()

	if err := s.settings.SetLastGeneration(s.clock.Now()); err != nil {
		s.log.Error("record last generation time", "error", err)
	}

	s.log.Info("auto-generated recipe",
		"title", created.Title, "slug", created.Slug,
		"source", generated.Source, "session_total", total)

	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
