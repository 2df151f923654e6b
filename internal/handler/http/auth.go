package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/service"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/httputil"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/validator"
)

// AuthHandler handles HTTP requests for session endpoints.
type AuthHandler struct {
	service *service.AuthService
	secure  bool
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler. secure controls the Secure
// attribute on the session cookie and should be false only in development.
func NewAuthHandler(svc *service.AuthService, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, secure: secure, logger: logger}
}

// ExchangeRequest is the JSON request body for exchanging a one-time
// identity session for a portal session.
type ExchangeRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// SessionResponse wraps the authenticated user returned by session endpoints.
type SessionResponse struct {
	User any `json:"user"`
}

// Exchange handles POST /api/auth/session
func (h *AuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.service.ExchangeSession(r.Context(), req.SessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, session.ExpiresAt))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: SessionResponse{User: session.User},
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: SessionResponse{User: user},
	})
}

// Logout handles POST /api/auth/logout. The cookie is cleared even when the
// server-side revocation fails, so the browser always ends up signed out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := tokenFromRequest(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.logger.WarnContext(r.Context(), "logout revocation failed",
				slog.String("error", err.Error()),
			)
		}
	}

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	http.SetCookie(w, expired)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"status": "logged_out"},
	})
}

func (h *AuthHandler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteNoneMode,
	}
}
