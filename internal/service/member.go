package service

import (
	"context"
	"errors"
	"time"

	"github.com/relaychat/relay/internal/authz"
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/model"
	"github.com/relaychat/relay/internal/repository"
)

// Member service errors.
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("user is already a member")
	ErrSecondOwner    = errors.New("chat already has an owner")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidRole    = errors.New("invalid role")
)

// MemberService handles chat membership business logic.
//
// The permission checks that depend on the target's current role (role
// updates, removals) are not evaluated here: the repository re-reads both
// memberships under row locks and runs the gate inside the same
// transaction as the write, so a racing change cannot invalidate the
// decision between check and commit.
type MemberService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewMemberService creates a new MemberService.
func NewMemberService(repo *repository.Repository, recorder metrics.Recorder) *MemberService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &MemberService{repo: repo, metrics: recorder}
}

// ListMembers retrieves a chat's member roster. Any member may list.
func (s *MemberService) ListMembers(ctx context.Context, requesterID int64, chatPublicID string) ([]*model.MemberWithUser, error) {
	chat, _, err := s.resolveChatMember(ctx, requesterID, chatPublicID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, chat.ID)
}

// AddMember directly adds an existing user to a chat. Admins and owners
// only; invited users normally join through the invite flow instead.
// Adding someone who is already a member is an error, never an upsert.
func (s *MemberService) AddMember(ctx context.Context, requesterID int64, chatPublicID, userPublicID string, role model.Role) (*model.Member, error) {
	chat, requester, err := s.resolveChatMember(ctx, requesterID, chatPublicID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanInviteMembers(requester.Role); err != nil {
		s.metrics.IncAuthzRejected(err.Error())
		return nil, err
	}

	target, err := s.repo.GetUserByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	member := &model.Member{
		ChatID:   chat.ID,
		UserID:   target.ID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrMemberExists):
			return nil, ErrMemberExists
		case errors.Is(err, repository.ErrOwnerExists):
			return nil, ErrSecondOwner
		}
		return nil, err
	}
	s.metrics.IncMemberAdded()

	return member, nil
}

// UpdateRole changes a member's role. The authorization decision happens
// inside the repository transaction against freshly locked rows.
func (s *MemberService) UpdateRole(ctx context.Context, requesterID int64, chatPublicID, userPublicID string, role model.Role) (*model.Member, error) {
	chat, target, err := s.resolveTarget(ctx, chatPublicID, userPublicID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateMemberRole(ctx, chat.ID, requesterID, target.ID, role)
	if err != nil {
		if authz.IsRejection(err) {
			s.metrics.IncAuthzRejected(err.Error())
			return nil, err
		}
		switch {
		case errors.Is(err, repository.ErrMemberNotFound):
			return nil, ErrMemberNotFound
		case errors.Is(err, repository.ErrOwnerExists):
			return nil, ErrSecondOwner
		}
		return nil, err
	}
	s.metrics.IncMemberRoleUpdated()

	return updated, nil
}

// RemoveMember removes a member from a chat, with the same transactional
// gate evaluation as UpdateRole.
func (s *MemberService) RemoveMember(ctx context.Context, requesterID int64, chatPublicID, userPublicID string) error {
	chat, target, err := s.resolveTarget(ctx, chatPublicID, userPublicID)
	if err != nil {
		return err
	}

	if err := s.repo.RemoveMember(ctx, chat.ID, requesterID, target.ID); err != nil {
		if authz.IsRejection(err) {
			s.metrics.IncAuthzRejected(err.Error())
			return err
		}
		if errors.Is(err, repository.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	s.metrics.IncMemberRemoved()

	return nil
}

// resolveChatMember resolves a chat and the requester's membership in it.
func (s *MemberService) resolveChatMember(ctx context.Context, requesterID int64, chatPublicID string) (*model.Chat, *model.Member, error) {
	chat, err := s.repo.GetChatByPublicID(ctx, chatPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, nil, authz.ErrNotChatMember
		}
		return nil, nil, err
	}

	member, err := s.repo.GetMember(ctx, chat.ID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, nil, authz.ErrNotChatMember
		}
		return nil, nil, err
	}

	return chat, member, nil
}

// resolveTarget resolves a chat and the target user of a membership
// mutation. The requester's own membership is checked by the repository
// inside the mutation transaction.
func (s *MemberService) resolveTarget(ctx context.Context, chatPublicID, userPublicID string) (*model.Chat, *model.User, error) {
	chat, err := s.repo.GetChatByPublicID(ctx, chatPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, nil, authz.ErrNotChatMember
		}
		return nil, nil, err
	}

	target, err := s.repo.GetUserByPublicID(ctx, userPublicID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	return chat, target, nil
}
