package models

import (
	"strings"
	"time"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryRef is the resolved category embedded in task responses.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NormalizeCategoryName returns the case-folded form compared for uniqueness.
// Names themselves are stored trimmed with their original casing.
func NormalizeCategoryName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
