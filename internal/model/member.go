package model

import "time"

// Member represents a user's membership in a chat.
// The (ChatID, UserID) pair is unique; the membership registry is the
// sole writer of rows.
type Member struct {
	ChatID   int64     `json:"chat_id"`
	UserID   int64     `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// MemberWithUser is a member row joined with public user fields,
// returned by listing endpoints.
type MemberWithUser struct {
	Member
	UserPublicID string `json:"user_public_id"`
	DisplayName  string `json:"display_name,omitempty"`
	Email        string `json:"email,omitempty"`
}

// IsOwner reports whether the member holds the Owner role.
func (m *Member) IsOwner() bool {
	return m.Role == RoleOwner
}

// IsAdmin reports whether the member holds the Admin role.
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
