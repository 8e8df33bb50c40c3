package models

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeUsername is the key used for username uniqueness.
func NormalizeUsername(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
