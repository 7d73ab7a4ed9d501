package dto

import (
	"time"

	"github.com/relaychat/relay/internal/model"
)

// AddMemberRequest represents the request body for directly adding a member.
type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// UpdateRoleRequest represents the request body for changing a member's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// MemberResponse represents a chat member in API responses.
type MemberResponse struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// MemberListResponse represents a chat's member roster.
type MemberListResponse struct {
	Data []MemberResponse `json:"data"`
}

// ToMemberResponse converts a MemberWithUser to MemberResponse DTO.
func ToMemberResponse(m *model.MemberWithUser) *MemberResponse {
	return &MemberResponse{
		UserID:      m.UserPublicID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        string(m.Role),
		JoinedAt:    m.JoinedAt,
	}
}

// ToMemberListResponse converts a roster to MemberListResponse.
func ToMemberListResponse(members []*model.MemberWithUser) *MemberListResponse {
	responses := make([]MemberResponse, len(members))
	for i, m := range members {
		responses[i] = *ToMemberResponse(m)
	}
	return &MemberListResponse{Data: responses}
}
