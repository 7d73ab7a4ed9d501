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

// ChatHandler handles HTTP requests for chat workspaces.
type ChatHandler struct {
	svc    *service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /v1/chats.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	var req dto.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	chat, err := h.svc.CreateChat(r.Context(), authCtx.UserID, req.Title, req.Models)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("chat_created",
		"chat_id", chat.PublicID,
		"user_id", authCtx.UserPublicID,
	)

	writeJSON(w, http.StatusCreated, dto.ToChatResponse(chat, model.RoleOwner))
}

// Get handles GET /v1/chats/{chatID}.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	chat, member, err := h.svc.GetChat(r.Context(), authCtx.UserID, chatID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChatResponse(chat, member.Role))
}

// List handles GET /v1/chats.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	chats, err := h.svc.ListChats(r.Context(), authCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToChatListResponse(chats))
}

// Update handles PATCH /v1/chats/{chatID}.
func (h *ChatHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	var req dto.UpdateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	chat, err := h.svc.UpdateChat(r.Context(), authCtx.UserID, chatID, service.UpdateChatInput{
		Title:  req.Title,
		Models: req.Models,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("chat_updated",
		"chat_id", chat.PublicID,
		"user_id", authCtx.UserPublicID,
	)

	writeJSON(w, http.StatusOK, dto.ToChatResponse(chat, ""))
}

// Delete handles DELETE /v1/chats/{chatID}.
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	if err := h.svc.DeleteChat(r.Context(), authCtx.UserID, chatID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("chat_deleted",
		"chat_id", chatID,
		"user_id", authCtx.UserPublicID,
	)

	w.WriteHeader(http.StatusNoContent)
}
