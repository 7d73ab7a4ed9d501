package dto

import (
	"time"

	"github.com/relaychat/relay/internal/model"
)

// NotificationResponse represents a notification in API responses.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationListResponse represents a list of notifications.
type NotificationListResponse struct {
	Data        []NotificationResponse `json:"data"`
	UnreadCount int64                  `json:"unread_count"`
}

// ToNotificationResponse converts a Notification model to its DTO.
func ToNotificationResponse(n *model.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.IsRead(),
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationListResponse converts notifications to a list response.
func ToNotificationListResponse(notifications []*model.Notification, unread int64) *NotificationListResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = *ToNotificationResponse(n)
	}
	return &NotificationListResponse{Data: responses, UnreadCount: unread}
}
