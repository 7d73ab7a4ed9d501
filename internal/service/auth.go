// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/cache"
	"github.com/relaychat/relay/internal/metrics"
	"github.com/relaychat/relay/internal/model"
	"github.com/relaychat/relay/internal/repository"
)

// Auth service errors.
var (
	ErrStateInvalid       = errors.New("login state is invalid or already used")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrNoVerifiedEmail    = errors.New("GitHub account has no verified email")
)

// Permissive on purpose: real validation happens when mail bounces.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPasswordLength = 8
	maxEmailLength    = 254
)

// AuthService handles login, registration, and session lifecycle.
type AuthService struct {
	repo        *repository.Repository
	cache       *cache.Cache
	github      *auth.GitHubClient
	states      *auth.StateStore
	redirectURI string
	sessionTTL  time.Duration
	metrics     metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	repo *repository.Repository,
	cache *cache.Cache,
	github *auth.GitHubClient,
	states *auth.StateStore,
	redirectURI string,
	sessionTTL time.Duration,
	recorder metrics.Recorder,
) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		repo:        repo,
		cache:       cache,
		github:      github,
		states:      states,
		redirectURI: redirectURI,
		sessionTTL:  sessionTTL,
		metrics:     recorder,
	}
}

// LoginURL issues a fresh one-time state token and builds the GitHub
// authorization redirect for it.
func (s *AuthService) LoginURL() (string, error) {
	state, err := s.states.Issue()
	if err != nil {
		return "", fmt.Errorf("issue login state: %w", err)
	}
	s.metrics.IncLoginStateIssued()

	return s.github.AuthorizationURL(state, s.redirectURI)
}

// Callback completes the OAuth handshake. The state token is consumed
// first: a replayed or expired state is rejected before any call leaves
// the process. On success the GitHub identity is mapped to a local user
// (created on first login) and a session is opened.
func (s *AuthService) Callback(ctx context.Context, code, state string) (*model.Session, *model.User, error) {
	if !s.states.Consume(state) {
		s.metrics.IncLoginStateConsumed(false)
		return nil, nil, ErrStateInvalid
	}
	s.metrics.IncLoginStateConsumed(true)

	accessToken, err := s.github.Exchange(ctx, code, s.redirectURI)
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.github.UserProfile(ctx, accessToken)
	if err != nil {
		return nil, nil, err
	}
	if profile.Email == "" {
		return nil, nil, ErrNoVerifiedEmail
	}

	displayName := profile.Name
	if displayName == "" {
		displayName = profile.Login
	}

	user, err := s.repo.GetOrCreateUser(ctx, &model.User{
		PublicID:    ulid.Make().String(),
		Email:       strings.ToLower(profile.Email),
		DisplayName: displayName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("resolve user: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

// Register creates a password-based account.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	now := time.Now().UTC()
	user := &model.User{
		PublicID:     ulid.Make().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies a password and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if user.PasswordHash == "" {
		// OAuth-only account
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

// Logout deletes a session and evicts its cached auth context.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.DeleteSessionContext(ctx, auth.TokenDigest(token))
	}
	return nil
}

// CurrentUser loads the full user record for an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *AuthService) createSession(ctx context.Context, userID int64) (*model.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now().UTC()
	session := &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.metrics.IncSessionCreated()

	return session, nil
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}
