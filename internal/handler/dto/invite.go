package dto

import (
	"time"

	"github.com/relaychat/relay/internal/model"
)

// CreateInviteRequest represents the request body for inviting an email.
type CreateInviteRequest struct {
	Email string `json:"email"`
}

// RespondInviteRequest represents the request body for answering an invite.
type RespondInviteRequest struct {
	Decision string `json:"decision"`
}

// InviteResponse represents an invite in API responses.
type InviteResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	ChatID    string    `json:"chat_id,omitempty"`
	ChatTitle string    `json:"chat_title,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteListResponse represents a list of invites.
type InviteListResponse struct {
	Data []InviteResponse `json:"data"`
}

// ToInviteResponse converts an Invite model to InviteResponse DTO.
// A stale Pending past its expiry is reported as expired.
func ToInviteResponse(invite *model.Invite) *InviteResponse {
	return &InviteResponse{
		ID:        invite.PublicID,
		Email:     invite.Email,
		Status:    string(invite.EffectiveStatus(time.Now())),
		ExpiresAt: invite.ExpiresAt,
		CreatedAt: invite.CreatedAt,
	}
}

// ToInviteListResponse converts a chat's invites to InviteListResponse.
func ToInviteListResponse(invites []*model.Invite) *InviteListResponse {
	responses := make([]InviteResponse, len(invites))
	for i, invite := range invites {
		responses[i] = *ToInviteResponse(invite)
	}
	return &InviteListResponse{Data: responses}
}

// ToMyInviteListResponse converts invitee-facing invites, including the
// chat each one belongs to.
func ToMyInviteListResponse(invites []*model.InviteWithChat) *InviteListResponse {
	responses := make([]InviteResponse, len(invites))
	for i, invite := range invites {
		resp := ToInviteResponse(&invite.Invite)
		resp.ChatID = invite.ChatPublicID
		resp.ChatTitle = invite.ChatTitle
		responses[i] = *resp
	}
	return &InviteListResponse{Data: responses}
}
