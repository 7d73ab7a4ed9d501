package auth

import (
	"context"

	"github.com/relaychat/relay/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const authContextKey contextKey = "auth_context"

// ContextWithAuth adds the authenticated caller to the context.
func ContextWithAuth(ctx context.Context, ac *model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromContext retrieves the authenticated caller from the context.
// Returns nil if the request is unauthenticated.
func FromContext(ctx context.Context) *model.AuthContext {
	ac, ok := ctx.Value(authContextKey).(*model.AuthContext)
	if !ok {
		return nil
	}
	return ac
}

// MustFromContext retrieves the authenticated caller and panics if absent.
// Use only behind the session middleware.
func MustFromContext(ctx context.Context) *model.AuthContext {
	ac := FromContext(ctx)
	if ac == nil {
		panic("auth context not found - ensure session middleware is applied")
	}
	return ac
}
