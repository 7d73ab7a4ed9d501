package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/authz"
	"github.com/relaychat/relay/internal/handler/dto"
	"github.com/relaychat/relay/internal/notify"
	"github.com/relaychat/relay/internal/service"
)

// handleServiceError maps service errors to HTTP responses.
// Authorization rejections keep their exact message: the strings are
// stable and clients render them directly.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if authz.IsRejection(err) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
		return
	}

	switch {
	// Not found
	case errors.Is(err, service.ErrChatNotFound):
		writeError(w, http.StatusNotFound, "CHAT_NOT_FOUND", "Chat not found")
	case errors.Is(err, service.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "MEMBER_NOT_FOUND", "Member not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrInviteNotFound):
		writeError(w, http.StatusNotFound, "INVITE_NOT_FOUND", "Invite not found")
	case errors.Is(err, notify.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found")

	// Conflicts
	case errors.Is(err, service.ErrMemberExists), errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "ALREADY_MEMBER", "User is already a member of this chat")
	case errors.Is(err, service.ErrSecondOwner):
		writeError(w, http.StatusConflict, "OWNER_EXISTS", "Chat already has an owner")
	case errors.Is(err, service.ErrInviteResponded):
		writeError(w, http.StatusConflict, "INVITE_RESPONDED", "Invite has already been responded to")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")

	// An expired invite is gone, not in conflict: the responder did
	// nothing wrong, they were just too late.
	case errors.Is(err, service.ErrInviteExpired):
		writeError(w, http.StatusGone, "INVITE_EXPIRED", "Invite has expired")

	// Identity mismatches
	case errors.Is(err, service.ErrNotInvitee):
		writeError(w, http.StatusForbidden, "NOT_INVITEE", "Invite is addressed to a different email")
	case errors.Is(err, service.ErrNotInviter):
		writeError(w, http.StatusForbidden, "NOT_INVITER", "Only the inviter can cancel an invite")

	// Validation
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Chat title is required")
	case errors.Is(err, service.ErrTitleTooLong):
		writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Chat title exceeds maximum length")
	case errors.Is(err, service.ErrTooManyModels):
		writeError(w, http.StatusBadRequest, "TOO_MANY_MODELS", "Too many models configured")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be one of owner, admin, member")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "Password must be at least 8 characters")
	case errors.Is(err, service.ErrNoVerifiedEmail):
		writeError(w, http.StatusBadRequest, "NO_VERIFIED_EMAIL", "GitHub account has no verified email")

	// Login flow
	case errors.Is(err, service.ErrStateInvalid):
		writeError(w, http.StatusBadRequest, "STATE_INVALID", "Login state is invalid or already used")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, auth.ErrOAuthDisabled):
		writeError(w, http.StatusServiceUnavailable, "OAUTH_DISABLED", "GitHub login is not configured")
	case errors.Is(err, auth.ErrExchangeFailed):
		writeError(w, http.StatusBadGateway, "OAUTH_EXCHANGE_FAILED", "GitHub rejected the authorization code")

	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
