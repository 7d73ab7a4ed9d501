package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/relaychat/relay/internal/authz"
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/model"
	"github.com/relaychat/relay/internal/notify"
	"github.com/relaychat/relay/internal/repository"
)

// Invite service errors.
var (
	ErrInviteNotFound  = errors.New("invite not found")
	ErrInviteResponded = errors.New("invite has already been responded to")
	ErrInviteExpired   = errors.New("invite has expired")
	ErrNotInvitee      = errors.New("invite is addressed to a different email")
	ErrNotInviter      = errors.New("only the inviter can cancel an invite")
	ErrAlreadyMember   = errors.New("user is already a member of this chat")
)

// InviteService handles the invite lifecycle: create, respond, cancel.
type InviteService struct {
	repo     *repository.Repository
	notifier *notify.Publisher
	metrics  metrics.Recorder
	ttl      time.Duration
}

// NewInviteService creates a new InviteService. ttl is how long a fresh
// invite stays respondable.
func NewInviteService(repo *repository.Repository, notifier *notify.Publisher, ttl time.Duration, recorder metrics.Recorder) *InviteService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &InviteService{
		repo:     repo,
		notifier: notifier,
		metrics:  recorder,
		ttl:      ttl,
	}
}

// CreateInvite issues a pending invite to an email address. Admins and
// owners only. The invitee does not need an account yet; the invite is
// matched by email when they respond.
func (s *InviteService) CreateInvite(ctx context.Context, requesterID int64, chatPublicID, email string) (*model.Invite, error) {
	chat, err := s.repo.GetChatByPublicID(ctx, chatPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, authz.ErrNotChatMember
		}
		return nil, err
	}

	requester, err := s.repo.GetMember(ctx, chat.ID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, authz.ErrNotChatMember
		}
		return nil, err
	}
	if err := authz.CanInviteMembers(requester.Role); err != nil {
		s.metrics.IncAuthzRejected(err.Error())
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invite := &model.Invite{
		PublicID:  ulid.Make().String(),
		ChatID:    chat.ID,
		InviterID: requesterID,
		Email:     email,
		Status:    model.InviteStatusPending,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	s.metrics.IncInviteCreated()

	s.notifyInviteCreated(ctx, invite, chat)

	return invite, nil
}

// Respond accepts or declines an invite on behalf of the authenticated
// user. The invite must be addressed to the responder's email; accepting
// adds them to the chat as a Member in the same transaction that flips
// the invite state. The repository checks state, then expiry, then the
// responder identity, so a mismatched responder hitting a responded or
// expired invite sees that outcome, not a forbidden. Responding to an
// expired invite reports the expiry and persists it, so a later read
// sees Expired rather than Pending.
func (s *InviteService) Respond(ctx context.Context, responder *model.AuthContext, invitePublicID string, decision model.InviteDecision) (*model.Invite, error) {
	var invite *model.Invite
	var err error
	switch decision {
	case model.InviteAccept:
		invite, err = s.repo.AcceptInvite(ctx, invitePublicID, responder.UserID, responder.Email)
	case model.InviteDecline:
		invite, err = s.repo.DeclineInvite(ctx, invitePublicID, responder.Email)
	default:
		return nil, fmt.Errorf("unknown invite decision %q", decision)
	}

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInviteNotFound):
			return nil, ErrInviteNotFound
		case errors.Is(err, repository.ErrInviteResponded):
			return nil, ErrInviteResponded
		case errors.Is(err, repository.ErrInviteExpired):
			s.metrics.IncInviteExpired()
			return nil, ErrInviteExpired
		case errors.Is(err, repository.ErrNotInvitee):
			return nil, ErrNotInvitee
		case errors.Is(err, repository.ErrMemberExists):
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	if decision == model.InviteAccept {
		s.metrics.IncInviteAccepted()
		s.metrics.IncMemberAdded()
		s.notifyInviteAccepted(ctx, invite, responder.UserID)
	} else {
		s.metrics.IncInviteDeclined()
	}

	return invite, nil
}

// Cancel withdraws a pending invite. Only the inviter may cancel.
func (s *InviteService) Cancel(ctx context.Context, requesterID int64, invitePublicID string) error {
	err := s.repo.CancelInvite(ctx, invitePublicID, requesterID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInviteNotFound):
		return ErrInviteNotFound
	case errors.Is(err, repository.ErrNotInviter):
		return ErrNotInviter
	case errors.Is(err, repository.ErrInviteResponded):
		return ErrInviteResponded
	}
	return err
}

// ListChatInvites retrieves a chat's invites. Admins and owners only,
// matching who can create them.
func (s *InviteService) ListChatInvites(ctx context.Context, requesterID int64, chatPublicID string) ([]*model.Invite, error) {
	chat, err := s.repo.GetChatByPublicID(ctx, chatPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, authz.ErrNotChatMember
		}
		return nil, err
	}

	requester, err := s.repo.GetMember(ctx, chat.ID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, authz.ErrNotChatMember
		}
		return nil, err
	}
	if err := authz.CanInviteMembers(requester.Role); err != nil {
		s.metrics.IncAuthzRejected(err.Error())
		return nil, err
	}

	return s.repo.ListChatInvites(ctx, chat.ID)
}

// ListMyInvites retrieves the invites addressed to the caller's email.
func (s *InviteService) ListMyInvites(ctx context.Context, email string) ([]*model.InviteWithChat, error) {
	return s.repo.ListInvitesForEmail(ctx, email)
}

func (s *InviteService) notifyInviteCreated(ctx context.Context, invite *model.Invite, chat *model.Chat) {
	if s.notifier == nil {
		return
	}

	// Only existing accounts get an in-app notification.
	recipient, err := s.repo.GetUserByEmail(ctx, invite.Email)
	if err != nil {
		return
	}

	inviterName := "Someone"
	if inviter, err := s.repo.GetUserByID(ctx, invite.InviterID); err == nil {
		inviterName = inviter.DisplayName
	}

	s.notifier.InviteCreated(ctx, recipient.ID, chat.Title, inviterName)
}

func (s *InviteService) notifyInviteAccepted(ctx context.Context, invite *model.Invite, responderID int64) {
	if s.notifier == nil {
		return
	}

	chatTitle := ""
	if chat, err := s.repo.GetChatByID(ctx, invite.ChatID); err == nil {
		chatTitle = chat.Title
	}

	memberName := invite.Email
	if member, err := s.repo.GetUserByID(ctx, responderID); err == nil {
		memberName = member.DisplayName
	}

	s.notifier.InviteAccepted(ctx, invite.InviterID, chatTitle, memberName)
}
