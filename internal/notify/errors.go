package notify

import "errors"

var (
	// ErrNotificationNotFound indicates the notification does not exist
	// or belongs to another user.
	ErrNotificationNotFound = errors.New("notification not found")
)
