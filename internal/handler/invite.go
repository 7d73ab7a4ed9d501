package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/handler/dto"
	"github.com/relaychat/relay/internal/model"
	"github.com/relaychat/relay/internal/service"
)

// InviteHandler handles HTTP requests for the invite lifecycle.
type InviteHandler struct {
	svc    *service.InviteService
	logger *slog.Logger
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(svc *service.InviteService, logger *slog.Logger) *InviteHandler {
	return &InviteHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /v1/chats/{chatID}/invites.
func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	var req dto.CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	invite, err := h.svc.CreateInvite(r.Context(), authCtx.UserID, chatID, req.Email)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("invite_created",
		"invite_id", invite.PublicID,
		"chat_id", chatID,
		"inviter_id", authCtx.UserPublicID,
	)

	writeJSON(w, http.StatusCreated, dto.ToInviteResponse(invite))
}

// ListForChat handles GET /v1/chats/{chatID}/invites.
func (h *InviteHandler) ListForChat(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	invites, err := h.svc.ListChatInvites(r.Context(), authCtx.UserID, chatID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToInviteListResponse(invites))
}

// ListMine handles GET /v1/invites.
// Lists invites addressed to the authenticated user's email.
func (h *InviteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	invites, err := h.svc.ListMyInvites(r.Context(), authCtx.Email)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMyInviteListResponse(invites))
}

// Respond handles POST /v1/invites/{inviteID}/respond.
func (h *InviteHandler) Respond(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	inviteID, ok := pathID(w, r, "inviteID")
	if !ok {
		return
	}

	var req dto.RespondInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	decision, err := model.ParseInviteDecision(req.Decision)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DECISION", "Decision must be accept or decline")
		return
	}

	invite, err := h.svc.Respond(r.Context(), authCtx, inviteID, decision)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("invite_responded",
		"invite_id", invite.PublicID,
		"decision", decision,
		"user_id", authCtx.UserPublicID,
	)

	writeJSON(w, http.StatusOK, dto.ToInviteResponse(invite))
}

// Cancel handles DELETE /v1/invites/{inviteID}.
func (h *InviteHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	inviteID, ok := pathID(w, r, "inviteID")
	if !ok {
		return
	}

	if err := h.svc.Cancel(r.Context(), authCtx.UserID, inviteID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("invite_cancelled",
		"invite_id", inviteID,
		"user_id", authCtx.UserPublicID,
	)

	w.WriteHeader(http.StatusNoContent)
}
