package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relaychat/relay/internal/authz"
	"github.com/relaychat/relay/internal/handler/dto"
	"github.com/relaychat/relay/internal/service"
)

func TestHandleServiceError_StatusMapping(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"chat not found", service.ErrChatNotFound, http.StatusNotFound, "CHAT_NOT_FOUND"},
		{"member not found", service.ErrMemberNotFound, http.StatusNotFound, "MEMBER_NOT_FOUND"},
		{"invite not found", service.ErrInviteNotFound, http.StatusNotFound, "INVITE_NOT_FOUND"},
		{"already member", service.ErrAlreadyMember, http.StatusConflict, "ALREADY_MEMBER"},
		{"second owner", service.ErrSecondOwner, http.StatusConflict, "OWNER_EXISTS"},
		{"invite responded", service.ErrInviteResponded, http.StatusConflict, "INVITE_RESPONDED"},
		{"invite expired", service.ErrInviteExpired, http.StatusGone, "INVITE_EXPIRED"},
		{"not invitee", service.ErrNotInvitee, http.StatusForbidden, "NOT_INVITEE"},
		{"invalid state", service.ErrStateInvalid, http.StatusBadRequest, "STATE_INVALID"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			handleServiceError(rec, logger, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleServiceError_AuthzRejections(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Gate rejections surface as 403 with the rejection message verbatim.
	rejections := []error{
		authz.ErrSelfAction,
		authz.ErrOwnerOnly,
		authz.ErrCannotRemoveOwner,
		authz.ErrAdminPeerRemoval,
		authz.ErrNotChatMember,
	}

	for _, rejection := range rejections {
		rec := httptest.NewRecorder()
		handleServiceError(rec, logger, rejection)

		if rec.Code != http.StatusForbidden {
			t.Errorf("%v: status = %d, want 403", rejection, rec.Code)
		}

		var resp dto.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Error != rejection.Error() {
			t.Errorf("message = %q, want %q", resp.Error, rejection.Error())
		}
		if resp.Code != "FORBIDDEN" {
			t.Errorf("code = %q, want FORBIDDEN", resp.Code)
		}
	}
}
