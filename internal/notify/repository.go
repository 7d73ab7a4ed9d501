// Package notify creates and serves in-app notifications for workspace
// events such as invites being sent or accepted.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/relaychat/relay/internal/model"
)

// Repository handles notification database operations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a notification record.
func (r *Repository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		string(n.Kind),
		n.Title,
		n.Body,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListForUser retrieves notifications for a user, newest first.
// When unreadOnly is set, read notifications are filtered out.
func (r *Repository) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*model.Notification, error) {
	query := `
		SELECT id, user_id, kind, title, body, read_at, created_at
		FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		var kind string

		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&kind,
			&n.Title,
			&n.Body,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}

		n.Kind = model.NotificationKind(kind)
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkRead marks a single notification as read.
// The user ID guards against marking another user's notification.
func (r *Repository) MarkRead(ctx context.Context, id string, userID int64) error {
	query := `
		UPDATE notifications
		SET read_at = $3
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, userID, time.Now())
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAllRead marks every unread notification for a user as read.
// Returns the number of notifications updated.
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	query := `
		UPDATE notifications
		SET read_at = $2
		WHERE user_id = $1 AND read_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *Repository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND read_at IS NULL
	`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
