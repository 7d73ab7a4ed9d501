package model

import "time"

// Session represents an authenticated login session.
// Token is the opaque bearer value handed to the client; it is stored
// verbatim because sessions are revocable server-side and short-lived.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session has expired at the given time.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// AuthContext holds the authenticated caller for a request.
// Injected into the request context by the session middleware.
type AuthContext struct {
	UserID       int64
	UserPublicID string
	Email        string
}
