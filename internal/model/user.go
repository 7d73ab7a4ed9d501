package model

import "time"

// User represents an account in the user directory.
// ID is the opaque numeric key used internally; PublicID is the
// string identifier exposed to clients.
type User struct {
	ID           int64     `json:"-"`
	PublicID     string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"-"` // empty for OAuth-only accounts
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
