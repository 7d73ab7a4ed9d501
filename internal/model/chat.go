package model

import "time"

// Chat represents a chat workspace.
// Members belong to exactly one chat row; deleting the chat cascades to
// members and invites at the storage layer.
type Chat struct {
	ID        int64     `json:"-"`
	PublicID  string    `json:"id"`
	Title     string    `json:"title"`
	Models    []string  `json:"models,omitempty"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
