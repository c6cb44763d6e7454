package model

import (
	"strings"
)

// User represents a registered account
type User struct {
	Base
	Email        string `json:"email" db:"email"`
	Name         string `json:"name" db:"name"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// NormalizeEmail lower-cases and trims an address so lookups and
// invitation matching are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
