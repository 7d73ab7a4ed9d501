package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/relaychat/relay/internal/model"
)

// CreateChat inserts a chat and its initial Owner membership atomically.
// This is the only path that creates an Owner row.
func (r *Repository) CreateChat(ctx context.Context, chat *model.Chat) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO chats (public_id, title, models, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		err := tx.QueryRow(ctx, query,
			chat.PublicID,
			chat.Title,
			pq.Array(chat.Models),
			chat.CreatedBy,
			chat.CreatedAt,
			chat.UpdatedAt,
		).Scan(&chat.ID)
		if err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}

		memberQuery := `
			INSERT INTO chat_members (chat_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.Exec(ctx, memberQuery, chat.ID, chat.CreatedBy, model.RoleOwner, chat.CreatedAt); err != nil {
			return fmt.Errorf("failed to create owner membership: %w", err)
		}
		return nil
	})
}

// GetChatByID retrieves a chat by its internal numeric id.
func (r *Repository) GetChatByID(ctx context.Context, id int64) (*model.Chat, error) {
	query := `
		SELECT id, public_id, title, models, created_by, created_at, updated_at
		FROM chats
		WHERE id = $1
	`
	return r.scanChat(r.pool.QueryRow(ctx, query, id))
}

// GetChatByPublicID retrieves a chat by its public id.
func (r *Repository) GetChatByPublicID(ctx context.Context, publicID string) (*model.Chat, error) {
	query := `
		SELECT id, public_id, title, models, created_by, created_at, updated_at
		FROM chats
		WHERE public_id = $1
	`
	return r.scanChat(r.pool.QueryRow(ctx, query, publicID))
}

// ListChatsForUser retrieves every chat the user is a member of,
// most recently updated first.
func (r *Repository) ListChatsForUser(ctx context.Context, userID int64) ([]*model.Chat, error) {
	query := `
		SELECT c.id, c.public_id, c.title, c.models, c.created_by, c.created_at, c.updated_at
		FROM chats c
		JOIN chat_members cm ON cm.chat_id = c.id
		WHERE cm.user_id = $1
		ORDER BY c.updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		chat, err := r.scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}
	return chats, nil
}

// UpdateChat updates a chat's title and model list.
func (r *Repository) UpdateChat(ctx context.Context, chat *model.Chat) error {
	query := `
		UPDATE chats
		SET title = $2, models = $3, updated_at = $4
		WHERE id = $1
	`
	chat.UpdatedAt = time.Now().UTC()
	result, err := r.pool.Exec(ctx, query, chat.ID, chat.Title, pq.Array(chat.Models), chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update chat: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrChatNotFound
	}
	return nil
}

// DeleteChat removes a chat. Members and invites cascade at the schema level.
func (r *Repository) DeleteChat(ctx context.Context, chatID int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *Repository) scanChat(row pgx.Row) (*model.Chat, error) {
	var chat model.Chat
	err := row.Scan(
		&chat.ID,
		&chat.PublicID,
		&chat.Title,
		pq.Array(&chat.Models),
		&chat.CreatedBy,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}
