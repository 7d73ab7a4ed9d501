package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/relaychat/relay/internal/model"
)

// publishTimeout bounds how long a best-effort publish may take.
const publishTimeout = 5 * time.Second

// Publisher creates notification records when workspace events occur.
// Publishing is best-effort: failures are logged, never propagated, so
// the triggering operation is not rolled back over a missed notification.
type Publisher struct {
	repo   *Repository
	logger *slog.Logger
}

// NewPublisher creates a new notification publisher.
func NewPublisher(repo *Repository, logger *slog.Logger) *Publisher {
	return &Publisher{
		repo:   repo,
		logger: logger.With("component", "notify.publisher"),
	}
}

// InviteCreated notifies an existing user that they were invited to a chat.
// No-op when the invited email has no account yet.
func (p *Publisher) InviteCreated(ctx context.Context, recipientID int64, chatTitle, inviterName string) {
	p.publish(ctx, &model.Notification{
		ID:        ulid.Make().String(),
		UserID:    recipientID,
		Kind:      model.NotificationInviteCreated,
		Title:     "Chat invitation",
		Body:      fmt.Sprintf("%s invited you to join %q", inviterName, chatTitle),
		CreatedAt: time.Now(),
	})
}

// InviteAccepted notifies the inviter that their invite was accepted.
func (p *Publisher) InviteAccepted(ctx context.Context, inviterID int64, chatTitle, memberName string) {
	p.publish(ctx, &model.Notification{
		ID:        ulid.Make().String(),
		UserID:    inviterID,
		Kind:      model.NotificationInviteAccepted,
		Title:     "Invitation accepted",
		Body:      fmt.Sprintf("%s joined %q", memberName, chatTitle),
		CreatedAt: time.Now(),
	})
}

func (p *Publisher) publish(ctx context.Context, n *model.Notification) {
	// Detach from the request context so an aborted request does not
	// drop the notification, but keep a hard deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.repo.Create(ctx, n); err != nil {
		p.logger.Warn("failed to create notification",
			"user_id", n.UserID,
			"kind", n.Kind,
			"error", err,
		)
		return
	}

	p.logger.Debug("notification created",
		"notification_id", n.ID,
		"user_id", n.UserID,
		"kind", n.Kind,
	)
}
