package models

import "time"

// Bounds for the auto-generation interval, in minutes.
const (
	MinGenerationInterval = 5
	MaxGenerationInterval = 1440
)

// AutoGenSettings is the single-row configuration for the recipe
// auto-generation scheduler.
type AutoGenSettings struct {
	Enabled          bool       `json:"autoGenerationEnabled"`
	IntervalMinutes  int        `json:"generationIntervalMinutes"`
	LastGenerationAt *time.Time `json:"lastGenerationAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Interval returns the configured interval as a duration.
func (s *AutoGenSettings) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// IntervalValid reports whether the interval is within the allowed bounds.
func (s *AutoGenSettings) IntervalValid() bool {
	return s.IntervalMinutes >= MinGenerationInterval && s.IntervalMinutes <= MaxGenerationInterval
}
