// Command bootstrap-user creates a user and an open session directly in the
// database. Intended for local development and e2e setup, where a session
// token is needed without going through the login flow.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/model"
	"github.com/relaychat/relay/internal/repository"
)

type output struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
	ExpiresAt   string `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "system@relay.local", "User email")
		displayName = flag.String("display-name", "system", "User display name")
		password    = flag.String("password", "", "Password; empty leaves the account login-less")
		sessionTTL  = flag.Duration("session-ttl", 720*time.Hour, "Session lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureUser(ctx, repo, *email, *displayName, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate session token:", err)
		os.Exit(1)
	}

	session := &model.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(*sessionTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		fmt.Fprintln(os.Stderr, "create session:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      user.PublicID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Token:       token,
		ExpiresAt:   session.ExpiresAt.Format(time.RFC3339),
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureUser(ctx context.Context, repo *repository.Repository, email, displayName, password string) (*model.User, error) {
	if existing, err := repo.GetUserByEmail(ctx, email); err == nil {
		return existing, nil
	}

	var passwordHash string
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = hash
	}

	now := time.Now().UTC()
	user := &model.User{
		PublicID:     ulid.Make().String(),
		Email:        strings.ToLower(email),
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
