// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered citizen account.
//
// Email is stored in canonical (trimmed, lower-case) form and is UNIQUE at the
// storage layer. PasswordHash holds the bcrypt output, never the plaintext, and
// is excluded from JSON so it cannot leak through an API response.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	Phone        string    `json:"phone"     db:"phone"` // optional, may be empty
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
