package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/relaychat/relay/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// migrationOrder lists the schema migrations in dependency order.
var migrationOrder = []string{
	"000001_users",
	"000002_chats",
	"000003_chat_invites",
	"000004_sessions",
	"000005_notifications",
}

// ResetSchema drops and recreates every table for tests. Down migrations
// run in reverse order so foreign keys unwind cleanly.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	for i := len(migrationOrder) - 1; i >= 0; i-- {
		downPath := filepath.Join(root, "migrations", migrationOrder[i]+".down.sql")
		downSQL, err := os.ReadFile(downPath)
		if err != nil {
			return fmt.Errorf("read down migration %s: %w", migrationOrder[i], err)
		}
		if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
			return fmt.Errorf("apply down migration %s: %w", migrationOrder[i], err)
		}
	}

	for _, name := range migrationOrder {
		upPath := filepath.Join(root, "migrations", name+".up.sql")
		upSQL, err := os.ReadFile(upPath)
		if err != nil {
			return fmt.Errorf("read up migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
			return fmt.Errorf("apply up migration %s: %w", name, err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user struct with sensible defaults. The email is
// made unique so repeated calls never collide on the unique constraint.
func NewTestUser(t testing.TB, prefix string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		PublicID:    ulid.Make().String(),
		Email:       UniqueEmail(prefix),
		DisplayName: prefix,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewTestChat creates a chat struct owned by the given user ID.
func NewTestChat(t testing.TB, title string, createdBy int64) *model.Chat {
	t.Helper()
	now := time.Now().UTC()
	return &model.Chat{
		PublicID:  ulid.Make().String(),
		Title:     title,
		Models:    []string{"gpt-4o"},
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestInvite creates a pending invite struct for the given chat.
func NewTestInvite(t testing.TB, chatID, inviterID int64, email string) *model.Invite {
	t.Helper()
	now := time.Now().UTC()
	return &model.Invite{
		PublicID:  ulid.Make().String(),
		ChatID:    chatID,
		InviterID: inviterID,
		Email:     email,
		Status:    model.InviteStatusPending,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
