package models

import (
	"time"
)

// Schema is a named extraction field specification. Deletion is soft: the row
// stays, IsActive flips to false and listings skip it.
type Schema struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	FieldSpec   map[string]any `json:"schema_definition"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}
