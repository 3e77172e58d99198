package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rinkside/internal/auth/service"
	"rinkside/internal/platform/middleware"
	"rinkside/pkg/platform/httputil"
)

// Service defines the interface for login operations.
type Service interface {
	Login(ctx context.Context, cmd service.LoginCommand) (string, error)
}

type Handler struct {
	service    Service
	sessionTTL time.Duration
	logger     *slog.Logger
}

func New(service Service, sessionTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{service: service, sessionTTL: sessionTTL, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/team/login", h.HandleLogin)
	r.Post("/team/logout", h.HandleLogout)
}

// HandleLogin authenticates a (team, role, key) triple and hands back the
// capability token twice: as an HttpOnly cookie for browsers and in the body
// for API callers.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	cmd, err := req.ToCommand(r.RemoteAddr, r.UserAgent())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.service.Login(ctx, cmd)
	if err != nil {
		// Rejections are expected traffic; the service has already counted
		// and audited them.
		h.logger.InfoContext(ctx, "login rejected", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, http.StatusOK, &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.sessionTTL / time.Second),
	})
}

// HandleLogout clears the session cookie. The capability itself stays valid
// until expiry or key rotation; logout is a client-side convenience.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
