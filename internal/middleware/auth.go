package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/cache"
	"github.com/relaychat/relay/internal/model"
	"github.com/relaychat/relay/internal/repository"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
	Cache      *cache.Cache
}

// Auth returns a middleware that authenticates requests by session token.
// The token comes from the Authorization header; the resolved auth
// context is cached in Redis keyed by a digest of the token, never the
// token itself.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first
			digest := auth.TokenDigest(token)
			authCtx, _ := cfg.Cache.GetSessionContext(r.Context(), digest)

			if authCtx != nil {
				ctx := auth.ContextWithAuth(r.Context(), authCtx)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// Cache miss - look the session up
			session, err := cfg.Repository.GetSession(r.Context(), token)
			if err != nil {
				if !errors.Is(err, repository.ErrSessionNotFound) {
					cfg.Logger.Error("database error during auth",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				} else {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "invalid_session"),
						slog.String("ip", r.RemoteAddr),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				writeAuthError(w)
				return
			}

			user, err := cfg.Repository.GetUserByID(r.Context(), session.UserID)
			if err != nil {
				cfg.Logger.Error("session user lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			authCtx = &model.AuthContext{
				UserID:       user.ID,
				UserPublicID: user.PublicID,
				Email:        user.Email,
			}

			// Cache the result
			_ = cfg.Cache.SetSessionContext(r.Context(), digest, authCtx)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken pulls the bearer token from the Authorization header.
func extractSessionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing session token"}}`))
}
