package model

import "time"

// NotificationKind identifies what a notification is about.
type NotificationKind string

const (
	NotificationInviteCreated  NotificationKind = "invite_created"
	NotificationInviteAccepted NotificationKind = "invite_accepted"
)

// Notification is a message delivered to a user's inbox.
type Notification struct {
	ID        string           `json:"id"`
	UserID    int64            `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
