package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/handler/dto"
	"github.com/relaychat/relay/internal/notify"
)

const defaultNotificationLimit = 50

// NotificationHandler handles HTTP requests for in-app notifications.
type NotificationHandler struct {
	repo   *notify.Repository
	logger *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(repo *notify.Repository, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		repo:   repo,
		logger: logger,
	}
}

// List handles GET /v1/notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	query := r.URL.Query()

	unreadOnly := query.Get("unread") == "true"

	limit := defaultNotificationLimit
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	notifications, err := h.repo.ListForUser(r.Context(), authCtx.UserID, unreadOnly, limit)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	unread, err := h.repo.CountUnread(r.Context(), authCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNotificationListResponse(notifications, unread))
}

// MarkRead handles POST /v1/notifications/{notificationID}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}

	if err := h.repo.MarkRead(r.Context(), id, authCtx.UserID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	updated, err := h.repo.MarkAllRead(r.Context(), authCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
