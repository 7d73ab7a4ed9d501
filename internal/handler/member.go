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

// MemberHandler handles HTTP requests for chat membership.
type MemberHandler struct {
	svc    *service.MemberService
	logger *slog.Logger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(svc *service.MemberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /v1/chats/{chatID}/members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	members, err := h.svc.ListMembers(r.Context(), authCtx.UserID, chatID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMemberListResponse(members))
}

// Add handles POST /v1/chats/{chatID}/members.
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return
	}

	role := model.RoleMember
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			handleServiceError(w, h.logger, service.ErrInvalidRole)
			return
		}
		role = parsed
	}

	member, err := h.svc.AddMember(r.Context(), authCtx.UserID, chatID, req.UserID, role)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("member_added",
		"chat_id", chatID,
		"target_user_id", req.UserID,
		"role", member.Role,
		"requester_id", authCtx.UserPublicID,
	)

	writeJSON(w, http.StatusCreated, map[string]string{
		"user_id": req.UserID,
		"role":    string(member.Role),
	})
}

// UpdateRole handles PATCH /v1/chats/{chatID}/members/{userID}.
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		handleServiceError(w, h.logger, service.ErrInvalidRole)
		return
	}

	member, err := h.svc.UpdateRole(r.Context(), authCtx.UserID, chatID, userID, role)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("member_role_updated",
		"chat_id", chatID,
		"target_user_id", userID,
		"new_role", member.Role,
		"requester_id", authCtx.UserPublicID,
	)

	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": userID,
		"role":    string(member.Role),
	})
}

// Remove handles DELETE /v1/chats/{chatID}/members/{userID}.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(r.Context(), authCtx.UserID, chatID, userID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("member_removed",
		"chat_id", chatID,
		"target_user_id", userID,
		"requester_id", authCtx.UserPublicID,
	)

	w.WriteHeader(http.StatusNoContent)
}
