package dto

import (
	"time"

	"github.com/relaychat/relay/internal/model"
)

// RegisterRequest represents the request body for password registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest represents the request body for password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginURLResponse carries the OAuth redirect URL.
type LoginURLResponse struct {
	URL string `json:"url"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionResponse represents an opened session.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:          user.PublicID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

// ToSessionResponse converts a session and its user to SessionResponse.
func ToSessionResponse(session *model.Session, user *model.User) *SessionResponse {
	return &SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      ToUserResponse(user),
	}
}
