package repository

import "errors"

// Common errors for repository operations.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrChatNotFound    = errors.New("chat not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrMemberExists    = errors.New("member already exists")
	ErrOwnerExists     = errors.New("chat already has an owner")
	ErrInviteNotFound  = errors.New("invite not found")
	ErrInviteResponded = errors.New("invite already responded")
	ErrInviteExpired   = errors.New("invite expired")
	ErrNotInvitee      = errors.New("invite addressed to a different email")
	ErrNotInviter      = errors.New("only the inviter can cancel an invite")
	ErrSessionNotFound = errors.New("session not found")
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (contains(err.Error(), "23505") || contains(err.Error(), "unique"))
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
