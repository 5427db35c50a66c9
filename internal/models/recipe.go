package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the recipe difficulty level. Values are the Portuguese
// labels shown to readers and stored verbatim in the database.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Fácil"
	DifficultyMedium Difficulty = "Médio"
	DifficultyHard   Difficulty = "Difícil"
)

// Valid reports whether the difficulty is one of the three known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// StringList is a []string stored as a jsonb column.
type StringList []string

// Value implements driver.Valuer, serialising the list as JSON.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, reading the jsonb column back into the list.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}
	return json.Unmarshal(data, l)
}

// Recipe is a persisted recipe as served by the public and admin APIs.
// JSON field names match the client the original site shipped with.
type Recipe struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	Content         string     `json:"content"`
	Ingredients     StringList `json:"ingredients"`
	Instructions    StringList `json:"instructions"`
	Tips            StringList `json:"tips"`
	CookTime        int        `json:"cookTime"`
	Difficulty      Difficulty `json:"difficulty"`
	Servings        int        `json:"servings"`
	ImageURL        *string    `json:"imageUrl"`
	MetaTitle       *string    `json:"metaTitle"`
	MetaDescription *string    `json:"metaDescription"`
	MetaKeywords    *string    `json:"metaKeywords"`
	Hashtags        StringList `json:"hashtags"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory"`
	Published       bool       `json:"published"`
	PublishedAt     *time.Time `json:"publishedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
