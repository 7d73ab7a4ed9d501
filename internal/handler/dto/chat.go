package dto

import (
	"time"

	"github.com/relaychat/relay/internal/model"
)

// CreateChatRequest represents the request body for creating a chat.
type CreateChatRequest struct {
	Title  string   `json:"title"`
	Models []string `json:"models,omitempty"`
}

// UpdateChatRequest represents the request body for updating a chat.
type UpdateChatRequest struct {
	Title  *string   `json:"title,omitempty"`
	Models *[]string `json:"models,omitempty"`
}

// ChatResponse represents a chat in API responses.
type ChatResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Models    []string  `json:"models"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatListResponse represents a list of chats.
type ChatListResponse struct {
	Data []ChatResponse `json:"data"`
}

// ToChatResponse converts a Chat model to ChatResponse DTO. The caller's
// role is included when known.
func ToChatResponse(chat *model.Chat, role model.Role) *ChatResponse {
	return &ChatResponse{
		ID:        chat.PublicID,
		Title:     chat.Title,
		Models:    chat.Models,
		Role:      string(role),
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
}

// ToChatListResponse converts a slice of Chat models to ChatListResponse.
func ToChatListResponse(chats []*model.Chat) *ChatListResponse {
	responses := make([]ChatResponse, len(chats))
	for i, chat := range chats {
		responses[i] = *ToChatResponse(chat, "")
	}
	return &ChatListResponse{Data: responses}
}
