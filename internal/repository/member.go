package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/relaychat/relay/internal/authz"
	"github.com/relaychat/relay/internal/model"
)

// ListMembers retrieves the members of a chat with public user fields,
// oldest membership first.
func (r *Repository) ListMembers(ctx context.Context, chatID int64) ([]*model.MemberWithUser, error) {
	query := `
		SELECT cm.chat_id, cm.user_id, cm.role, cm.joined_at,
		       u.public_id, u.display_name, u.email
		FROM chat_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.chat_id = $1
		ORDER BY cm.joined_at ASC
	`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*model.MemberWithUser
	for rows.Next() {
		var m model.MemberWithUser
		var role string
		if err := rows.Scan(&m.ChatID, &m.UserID, &role, &m.JoinedAt, &m.UserPublicID, &m.DisplayName, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		parsed, err := model.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("corrupt member row (chat %d, user %d): %w", m.ChatID, m.UserID, err)
		}
		m.Role = parsed
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return members, nil
}

// GetMember retrieves a single membership row.
func (r *Repository) GetMember(ctx context.Context, chatID, userID int64) (*model.Member, error) {
	query := `
		SELECT chat_id, user_id, role, joined_at
		FROM chat_members
		WHERE chat_id = $1 AND user_id = $2
	`
	return scanMember(r.pool.QueryRow(ctx, query, chatID, userID))
}

// AddMember inserts a membership row. Adding an already-present
// (chat, user) pair is an error, never a silent upsert. Adding a second
// Owner is refused regardless of caller.
func (r *Repository) AddMember(ctx context.Context, member *model.Member) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if member.Role == model.RoleOwner {
			if err := ensureNoOwner(ctx, tx, member.ChatID); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO chat_members (chat_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.Exec(ctx, query, member.ChatID, member.UserID, member.Role, member.JoinedAt); err != nil {
			if isUniqueViolation(err) {
				return ErrMemberExists
			}
			return fmt.Errorf("failed to add member: %w", err)
		}
		return nil
	})
}

// UpdateMemberRole changes a member's role on behalf of a requester.
// Requester and target rows are re-read under FOR UPDATE and the
// authorization gate is evaluated against those rows, so the decision and
// the write commit as one unit. Two racing updates on the same member
// serialize; the loser is judged against the winner's committed state.
func (r *Repository) UpdateMemberRole(ctx context.Context, chatID, requesterID, targetID int64, newRole model.Role) (*model.Member, error) {
	var updated *model.Member
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		requester, target, err := lockMemberPair(ctx, tx, chatID, requesterID, targetID)
		if err != nil {
			return err
		}

		if err := authz.CanManageMember(requester, target, authz.ActionUpdateRole); err != nil {
			return err
		}

		// A promotion to Owner would mint a second Owner: the chat's
		// original Owner cannot be the target here (only an Owner may touch
		// Owner/Admin targets, and the self-action guard blocks the Owner
		// acting on themself), so an Owner must already exist.
		if newRole == model.RoleOwner && target.Role != model.RoleOwner {
			return ErrOwnerExists
		}

		query := `UPDATE chat_members SET role = $3 WHERE chat_id = $1 AND user_id = $2`
		if _, err := tx.Exec(ctx, query, chatID, targetID, newRole); err != nil {
			return fmt.Errorf("failed to update member role: %w", err)
		}

		target.Role = newRole
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RemoveMember deletes a membership row on behalf of a requester, with the
// same transactional gate evaluation as UpdateMemberRole.
func (r *Repository) RemoveMember(ctx context.Context, chatID, requesterID, targetID int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		requester, target, err := lockMemberPair(ctx, tx, chatID, requesterID, targetID)
		if err != nil {
			return err
		}

		if err := authz.CanManageMember(requester, target, authz.ActionRemove); err != nil {
			return err
		}

		query := `DELETE FROM chat_members WHERE chat_id = $1 AND user_id = $2`
		if _, err := tx.Exec(ctx, query, chatID, targetID); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		return nil
	})
}

// lockMemberPair reads the requester and target rows FOR UPDATE.
// The requester missing means they are not a member at all; the target
// missing is a plain not-found.
func lockMemberPair(ctx context.Context, tx pgx.Tx, chatID, requesterID, targetID int64) (*model.Member, *model.Member, error) {
	query := `
		SELECT chat_id, user_id, role, joined_at
		FROM chat_members
		WHERE chat_id = $1 AND user_id = $2
		FOR UPDATE
	`

	requester, err := scanMember(tx.QueryRow(ctx, query, chatID, requesterID))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, nil, authz.ErrNotChatMember
		}
		return nil, nil, err
	}

	target, err := scanMember(tx.QueryRow(ctx, query, chatID, targetID))
	if err != nil {
		return nil, nil, err
	}

	return requester, target, nil
}

// ensureNoOwner locks the chat's owner row (if any) and fails when one exists.
func ensureNoOwner(ctx context.Context, tx pgx.Tx, chatID int64) error {
	var ownerID int64
	query := `
		SELECT user_id FROM chat_members
		WHERE chat_id = $1 AND role = $2
		LIMIT 1
		FOR UPDATE
	`
	err := tx.QueryRow(ctx, query, chatID, model.RoleOwner).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check for existing owner: %w", err)
	}
	return ErrOwnerExists
}

func scanMember(row pgx.Row) (*model.Member, error) {
	var m model.Member
	var role string
	var joinedAt time.Time
	err := row.Scan(&m.ChatID, &m.UserID, &role, &joinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	parsed, err := model.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("corrupt member row (chat %d, user %d): %w", m.ChatID, m.UserID, err)
	}
	m.Role = parsed
	m.JoinedAt = joinedAt
	return &m, nil
}
