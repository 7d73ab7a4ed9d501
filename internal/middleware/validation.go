// Package middleware provides HTTP middleware components.
package middleware

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Validation limits.
const (
	// MaxDisplayNameLength is the maximum length for a user display name.
	MaxDisplayNameLength = 100

	// MinDisplayNameLength is the minimum length for a user display name.
	MinDisplayNameLength = 1

	// PublicIDLength is the exact length of a ULID public identifier.
	PublicIDLength = 26
)

// Validation errors.
var (
	ErrDisplayNameTooLong  = errors.New("display name exceeds maximum length")
	ErrDisplayNameEmpty    = errors.New("display name is empty")
	ErrDisplayNameReserved = errors.New("display name is reserved")
	ErrDisplayNameInvalid  = errors.New("display name contains confusable characters")
	ErrPublicIDInvalid     = errors.New("identifier is not a valid public id")
)

// ReservedDisplayNames contains names that cannot be used as display names.
// These collide with system senders and mention keywords, or impersonate
// staff roles.
var ReservedDisplayNames = map[string]bool{
	// System senders
	"system":    true,
	"relay":     true,
	"relaychat": true,
	"bot":       true,

	// Mention keywords
	"everyone": true,
	"here":     true,
	"channel":  true,

	// Staff impersonation targets
	"admin":         true,
	"administrator": true,
	"owner":         true,
	"moderator":     true,
	"support":       true,
	"staff":         true,
}

// publicIDPattern matches a Crockford base32 ULID.
var publicIDPattern = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// ValidatePublicID validates a path parameter that should be a ULID.
// Rejecting malformed ids early keeps garbage out of the repositories.
func ValidatePublicID(id string) error {
	if len(id) != PublicIDLength || !publicIDPattern.MatchString(strings.ToUpper(id)) {
		return ErrPublicIDInvalid
	}
	return nil
}

// ValidateDisplayName validates a user display name.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrDisplayNameEmpty
	}
	if len(name) > MaxDisplayNameLength {
		return ErrDisplayNameTooLong
	}

	// Check reserved names (case-insensitive)
	if ReservedDisplayNames[strings.ToLower(name)] {
		return ErrDisplayNameReserved
	}

	return validateConfusables(name)
}

// validateConfusables checks for homograph-style impersonation.
// A name built mostly from lookalike characters can shadow another
// member's name in the roster.
func validateConfusables(name string) error {
	// Control characters never belong in a display name
	for _, r := range name {
		if unicode.IsControl(r) {
			return ErrDisplayNameInvalid
		}
	}

	// Common substitutions in impersonation attempts
	confusables := map[rune]bool{
		'0': true, // Can look like 'O' or 'o'
		'1': true, // Can look like 'l' or 'I'
		'l': true, // Can look like '1' or 'I'
		'I': true, // Can look like '1' or 'l'
		'O': true, // Can look like '0'
	}

	confusableCount := 0
	for _, r := range name {
		if confusables[r] {
			confusableCount++
		}
	}

	// If more than 50% of characters are confusable, reject
	if len(name) > 3 && float64(confusableCount)/float64(len(name)) > 0.5 {
		return ErrDisplayNameInvalid
	}

	return nil
}
