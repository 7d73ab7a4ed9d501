package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/relaychat/relay/internal/model"
)

// CreateInvite inserts a pending invite.
func (r *Repository) CreateInvite(ctx context.Context, invite *model.Invite) error {
	query := `
		INSERT INTO chat_invites (public_id, chat_id, inviter_id, invitee_email, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		invite.PublicID,
		invite.ChatID,
		invite.InviterID,
		strings.ToLower(invite.Email),
		invite.Status,
		invite.ExpiresAt,
		invite.CreatedAt,
	).Scan(&invite.ID)

	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetInviteByPublicID retrieves an invite by its public id.
func (r *Repository) GetInviteByPublicID(ctx context.Context, publicID string) (*model.Invite, error) {
	query := `
		SELECT id, public_id, chat_id, inviter_id, invitee_email, status, expires_at, created_at
		FROM chat_invites
		WHERE public_id = $1
	`
	return scanInvite(r.pool.QueryRow(ctx, query, publicID))
}

// AcceptInvite transitions a pending invite to Accepted and inserts the
// membership row in one transaction. An invite past its expiry is moved
// to Expired instead, and that write is committed before the rejection is
// returned: expiry is discovered at use time, not assumed fresh.
// The responder must match the invitee email, checked only after the
// state and expiry checks so a mismatched responder still observes a
// conflict or expiry rather than masking it, and the expiry write still
// lands. The accepted member always joins with the Member role.
func (r *Repository) AcceptInvite(ctx context.Context, publicID string, userID int64, responderEmail string) (*model.Invite, error) {
	var accepted *model.Invite
	var expired bool
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		invite, err := lockInvite(ctx, tx, publicID)
		if err != nil {
			return err
		}

		expired, err = transitionPending(ctx, tx, invite, time.Now().UTC())
		if err != nil || expired {
			// The expiry write must commit, so an expired invite returns
			// nil here and is reported after the transaction closes.
			return err
		}

		if !strings.EqualFold(invite.Email, responderEmail) {
			return ErrNotInvitee
		}

		if _, err := tx.Exec(ctx,
			`UPDATE chat_invites SET status = $2 WHERE id = $1`,
			invite.ID, model.InviteStatusAccepted,
		); err != nil {
			return fmt.Errorf("failed to accept invite: %w", err)
		}

		memberQuery := `
			INSERT INTO chat_members (chat_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.Exec(ctx, memberQuery, invite.ChatID, userID, model.RoleMember, time.Now().UTC()); err != nil {
			if isUniqueViolation(err) {
				return ErrMemberExists
			}
			return fmt.Errorf("failed to add invited member: %w", err)
		}

		invite.Status = model.InviteStatusAccepted
		accepted = invite
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrInviteExpired
	}
	return accepted, nil
}

// DeclineInvite transitions a pending invite to Declined. Expiry and the
// responder identity are checked in the same order as AcceptInvite, so a
// decline against an expired invite still lands the Expired state.
func (r *Repository) DeclineInvite(ctx context.Context, publicID, responderEmail string) (*model.Invite, error) {
	var declined *model.Invite
	var expired bool
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		invite, err := lockInvite(ctx, tx, publicID)
		if err != nil {
			return err
		}

		expired, err = transitionPending(ctx, tx, invite, time.Now().UTC())
		if err != nil || expired {
			return err
		}

		if !strings.EqualFold(invite.Email, responderEmail) {
			return ErrNotInvitee
		}

		if _, err := tx.Exec(ctx,
			`UPDATE chat_invites SET status = $2 WHERE id = $1`,
			invite.ID, model.InviteStatusDeclined,
		); err != nil {
			return fmt.Errorf("failed to decline invite: %w", err)
		}

		invite.Status = model.InviteStatusDeclined
		declined = invite
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrInviteExpired
	}
	return declined, nil
}

// CancelInvite deletes a pending invite on behalf of its inviter.
func (r *Repository) CancelInvite(ctx context.Context, publicID string, requesterID int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		invite, err := lockInvite(ctx, tx, publicID)
		if err != nil {
			return err
		}
		if invite.InviterID != requesterID {
			return ErrNotInviter
		}
		if invite.Status.IsTerminal() {
			return ErrInviteResponded
		}

		if _, err := tx.Exec(ctx, `DELETE FROM chat_invites WHERE id = $1`, invite.ID); err != nil {
			return fmt.Errorf("failed to cancel invite: %w", err)
		}
		return nil
	})
}

// ListChatInvites retrieves a chat's invites, newest first. Pending
// invites past their expiry are flipped to Expired before the read so a
// stale Pending is never reported.
func (r *Repository) ListChatInvites(ctx context.Context, chatID int64) ([]*model.Invite, error) {
	expireQuery := `
		UPDATE chat_invites
		SET status = $2
		WHERE chat_id = $1 AND status = $3 AND expires_at < $4
	`
	if _, err := r.pool.Exec(ctx, expireQuery, chatID, model.InviteStatusExpired, model.InviteStatusPending, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to expire pending invites: %w", err)
	}

	query := `
		SELECT id, public_id, chat_id, inviter_id, invitee_email, status, expires_at, created_at
		FROM chat_invites
		WHERE chat_id = $1
		ORDER BY created_at DESC
	`
	return r.listInvites(ctx, query, chatID)
}

// ListInvitesForEmail retrieves the invites addressed to an email joined
// with their chats, newest first, with the same lazy-expiry pass as
// ListChatInvites.
func (r *Repository) ListInvitesForEmail(ctx context.Context, email string) ([]*model.InviteWithChat, error) {
	email = strings.ToLower(email)
	expireQuery := `
		UPDATE chat_invites
		SET status = $2
		WHERE invitee_email = $1 AND status = $3 AND expires_at < $4
	`
	if _, err := r.pool.Exec(ctx, expireQuery, email, model.InviteStatusExpired, model.InviteStatusPending, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to expire pending invites: %w", err)
	}

	query := `
		SELECT i.id, i.public_id, i.chat_id, i.inviter_id, i.invitee_email,
		       i.status, i.expires_at, i.created_at,
		       c.public_id, c.title
		FROM chat_invites i
		JOIN chats c ON c.id = i.chat_id
		WHERE i.invitee_email = $1
		ORDER BY i.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*model.InviteWithChat
	for rows.Next() {
		var inv model.InviteWithChat
		var status string
		if err := rows.Scan(
			&inv.ID, &inv.PublicID, &inv.ChatID, &inv.InviterID, &inv.Email,
			&status, &inv.ExpiresAt, &inv.CreatedAt,
			&inv.ChatPublicID, &inv.ChatTitle,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		parsed, err := model.ParseInviteStatus(status)
		if err != nil {
			return nil, fmt.Errorf("corrupt invite row %s: %w", inv.PublicID, err)
		}
		inv.Status = parsed
		invites = append(invites, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invites: %w", err)
	}
	return invites, nil
}

// ExpireInvite flips a single pending invite past its expiry to Expired.
// A no-op when the invite already left Pending.
func (r *Repository) ExpireInvite(ctx context.Context, publicID string) error {
	query := `
		UPDATE chat_invites
		SET status = $2
		WHERE public_id = $1 AND status = $3 AND expires_at < $4
	`
	_, err := r.pool.Exec(ctx, query, publicID, model.InviteStatusExpired, model.InviteStatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to expire invite: %w", err)
	}
	return nil
}

func (r *Repository) listInvites(ctx context.Context, query string, arg any) ([]*model.Invite, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*model.Invite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invites: %w", err)
	}
	return invites, nil
}

// lockInvite reads an invite FOR UPDATE inside a transaction.
func lockInvite(ctx context.Context, tx pgx.Tx, publicID string) (*model.Invite, error) {
	query := `
		SELECT id, public_id, chat_id, inviter_id, invitee_email, status, expires_at, created_at
		FROM chat_invites
		WHERE public_id = $1
		FOR UPDATE
	`
	return scanInvite(tx.QueryRow(ctx, query, publicID))
}

// transitionPending verifies the invite is still respondable. A terminal
// status is a conflict. A pending invite past its expiry is flipped to
// Expired in the current transaction and reported via the bool so the
// caller can commit the write before rejecting.
func transitionPending(ctx context.Context, tx pgx.Tx, invite *model.Invite, now time.Time) (expired bool, err error) {
	if invite.Status.IsTerminal() {
		return false, ErrInviteResponded
	}
	if invite.IsExpired(now) {
		if _, err := tx.Exec(ctx,
			`UPDATE chat_invites SET status = $2 WHERE id = $1`,
			invite.ID, model.InviteStatusExpired,
		); err != nil {
			return false, fmt.Errorf("failed to expire invite: %w", err)
		}
		invite.Status = model.InviteStatusExpired
		return true, nil
	}
	return false, nil
}

func scanInvite(row pgx.Row) (*model.Invite, error) {
	var invite model.Invite
	var status string
	err := row.Scan(
		&invite.ID,
		&invite.PublicID,
		&invite.ChatID,
		&invite.InviterID,
		&invite.Email,
		&status,
		&invite.ExpiresAt,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	parsed, err := model.ParseInviteStatus(status)
	if err != nil {
		return nil, fmt.Errorf("corrupt invite row %s: %w", invite.PublicID, err)
	}
	invite.Status = parsed
	return &invite, nil
}
