package store

import (
	"database/sql"
	"fmt"
	"time"

	"receitapress/internal/models"
)

// SettingsStore manages the single-row auto-generation configuration.
// The row is created by the migrations, so reads never miss; Get still
// tolerates an empty table by returning defaults for fresh test databases.
type SettingsStore struct {
	db *sql.DB
}

// NewSettingsStore returns a new SettingsStore backed by the given database.
func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the current auto-generation settings.
func (s *SettingsStore) Get() (*models.AutoGenSettings, error) {
	cfg := &models.AutoGenSettings{}
	err := s.db.QueryRow(`
		SELECT auto_generation_enabled, generation_interval_minutes, last_generation_at, updated_at
		FROM system_settings WHERE id = 1
	`).Scan(&cfg.Enabled, &cfg.IntervalMinutes, &cfg.LastGenerationAt, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		return &models.AutoGenSettings{IntervalMinutes: 60, UpdatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return cfg, nil
}

// Update sets the enabled flag and interval. Interval bounds are enforced
// at the API boundary; this method persists whatever it is given.
func (s *SettingsStore) Update(enabled bool, intervalMinutes int) (*models.AutoGenSettings, error) {
	cfg := &models.AutoGenSettings{}
	err := s.db.QueryRow(`
		INSERT INTO system_settings (id, auto_generation_enabled, generation_interval_minutes, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			auto_generation_enabled = EXCLUDED.auto_generation_enabled,
			generation_interval_minutes = EXCLUDED.generation_interval_minutes,
			updated_at = EXCLUDED.updated_at
		RETURNING auto_generation_enabled, generation_interval_minutes, last_generation_at, updated_at
	`, enabled, intervalMinutes).Scan(&cfg.Enabled, &cfg.IntervalMinutes, &cfg.LastGenerationAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return cfg, nil
}

// SetLastGeneration records the timestamp of the most recent successful
// auto-generation cycle.
func (s *SettingsStore) SetLastGeneration(ts time.Time) error {
	_, err := s.db.Exec(`
		UPDATE system_settings SET last_generation_at = $1, updated_at = NOW() WHERE id = 1
	`, ts)
	if err != nil {
		return fmt.Errorf("set last generation: %w", err)
	}
	return nil
}
