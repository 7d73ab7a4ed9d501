package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relaychat/relay/internal/auth"
	"github.com/relaychat/relay/internal/handler/dto"
	"github.com/relaychat/relay/internal/middleware"
	"github.com/relaychat/relay/internal/service"
)

// AuthHandler handles HTTP requests for login and sessions.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// GitHubLogin handles GET /v1/auth/github.
// Issues a one-time state token and returns the GitHub redirect URL.
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.LoginURL()
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginURLResponse{URL: url})
}

// GitHubCallback handles GET /v1/auth/github/callback.
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "code and state are required")
		return
	}

	session, user, err := h.svc.Callback(r.Context(), code, state)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("login_succeeded",
		"user_id", user.PublicID,
		"method", "github",
	)

	writeJSON(w, http.StatusOK, dto.ToSessionResponse(session, user))
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.DisplayName != "" {
		if err := middleware.ValidateDisplayName(req.DisplayName); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DISPLAY_NAME", err.Error())
			return
		}
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.PublicID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	session, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("login_succeeded",
		"user_id", user.PublicID,
		"method", "password",
	)

	writeJSON(w, http.StatusOK, dto.ToSessionResponse(session, user))
}

// Logout handles POST /v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Session token is required")
		return
	}

	if err := h.svc.Logout(r.Context(), token); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	user, err := h.svc.CurrentUser(r.Context(), authCtx.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}
