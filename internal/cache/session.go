package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/relaychat/relay/internal/model"
)

const (
	// sessionCachePrefix is the Redis key prefix for session auth cache.
	sessionCachePrefix = "session:ctx:"
	// sessionCacheTTL is the time-to-live for cached session contexts.
	sessionCacheTTL = 5 * time.Minute
)

// CachedSession represents a session auth context stored in Redis.
type CachedSession struct {
	UserID       int64  `json:"user_id"`
	UserPublicID string `json:"user_public_id"`
	Email        string `json:"email"`
}

// GetSessionContext retrieves a cached session context by token digest.
// Returns nil if not found (cache miss).
func (c *Cache) GetSessionContext(ctx context.Context, tokenDigest string) (*model.AuthContext, error) {
	key := sessionCachePrefix + tokenDigest

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		UserID:       cached.UserID,
		UserPublicID: cached.UserPublicID,
		Email:        cached.Email,
	}, nil
}

// SetSessionContext caches a session auth context.
func (c *Cache) SetSessionContext(ctx context.Context, tokenDigest string, auth *model.AuthContext) error {
	key := sessionCachePrefix + tokenDigest

	cached := CachedSession{
		UserID:       auth.UserID,
		UserPublicID: auth.UserPublicID,
		Email:        auth.Email,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}

	return c.client.Set(ctx, key, data, sessionCacheTTL).Err()
}

// DeleteSessionContext removes a cached session context.
// Used on logout.
func (c *Cache) DeleteSessionContext(ctx context.Context, tokenDigest string) error {
	key := sessionCachePrefix + tokenDigest
	return c.client.Del(ctx, key).Err()
}
