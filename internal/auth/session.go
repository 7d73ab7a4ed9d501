package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// sessionTokenBytes is the entropy of a session token (64 hex chars).
const sessionTokenBytes = 32

// GenerateSessionToken returns a random bearer token for a new session.
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
