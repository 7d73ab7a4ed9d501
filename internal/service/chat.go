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
	"github.com/relaychat/relay/internal/repository"
)

// Chat service errors.
var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrTitleRequired = errors.New("chat title is required")
	ErrTitleTooLong  = errors.New("chat title too long")
	ErrTooManyModels = errors.New("too many models configured")
)

const (
	maxTitleLength = 200
	maxChatModels  = 10
)

// ChatService handles chat workspace business logic.
type ChatService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewChatService creates a new ChatService.
func NewChatService(repo *repository.Repository, recorder metrics.Recorder) *ChatService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatService{repo: repo, metrics: recorder}
}

// CreateChat creates a chat with the caller as its Owner.
func (s *ChatService) CreateChat(ctx context.Context, userID int64, title string, models []string) (*model.Chat, error) {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if len(models) > maxChatModels {
		return nil, ErrTooManyModels
	}

	now := time.Now().UTC()
	chat := &model.Chat{
		PublicID:  ulid.Make().String(),
		Title:     title,
		Models:    models,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	s.metrics.IncMemberAdded()

	return chat, nil
}

// GetChat retrieves a chat for a member. Non-members are rejected, not
// told whether the chat exists.
func (s *ChatService) GetChat(ctx context.Context, userID int64, publicID string) (*model.Chat, *model.Member, error) {
	chat, member, err := s.requireMembership(ctx, userID, publicID)
	if err != nil {
		return nil, nil, err
	}
	return chat, member, nil
}

// ListChats retrieves every chat the caller belongs to.
func (s *ChatService) ListChats(ctx context.Context, userID int64) ([]*model.Chat, error) {
	return s.repo.ListChatsForUser(ctx, userID)
}

// UpdateChatInput defines input for updating a chat.
type UpdateChatInput struct {
	Title  *string
	Models *[]string
}

// UpdateChat updates chat settings. Owners and admins only.
func (s *ChatService) UpdateChat(ctx context.Context, userID int64, publicID string, input UpdateChatInput) (*model.Chat, error) {
	chat, member, err := s.requireMembership(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanUpdateChat(member.Role); err != nil {
		s.metrics.IncAuthzRejected(err.Error())
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		chat.Title = title
	}
	if input.Models != nil {
		if len(*input.Models) > maxChatModels {
			return nil, ErrTooManyModels
		}
		chat.Models = *input.Models
	}

	if err := s.repo.UpdateChat(ctx, chat); err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	return chat, nil
}

// DeleteChat removes a chat and everything under it. Owner only.
func (s *ChatService) DeleteChat(ctx context.Context, userID int64, publicID string) error {
	chat, member, err := s.requireMembership(ctx, userID, publicID)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteChat(member.Role); err != nil {
		s.metrics.IncAuthzRejected(err.Error())
		return err
	}

	if err := s.repo.DeleteChat(ctx, chat.ID); err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return ErrChatNotFound
		}
		return err
	}
	return nil
}

// requireMembership resolves a chat and the caller's membership in it.
// A missing chat and a missing membership both come back as a membership
// rejection so outsiders cannot probe for chat existence.
func (s *ChatService) requireMembership(ctx context.Context, userID int64, publicID string) (*model.Chat, *model.Member, error) {
	chat, err := s.repo.GetChatByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, nil, authz.ErrNotChatMember
		}
		return nil, nil, err
	}

	member, err := s.repo.GetMember(ctx, chat.ID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return nil, nil, authz.ErrNotChatMember
		}
		return nil, nil, err
	}

	return chat, member, nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
