package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rinkside/internal/platform/middleware"
	"rinkside/internal/platform/privacy"
	"rinkside/internal/teamkey/models"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
	"rinkside/pkg/platform/httputil"
)

// Service defines the interface for credential management. All operations
// are scoped to the caller's own team; there is no cross-tenant surface.
type Service interface {
	List(ctx context.Context, teamID domain.TeamID) ([]models.Metadata, error)
	Rotate(ctx context.Context, teamID domain.TeamID, targetRole domain.Role, ipFragment string) (string, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterCoach mounts the credential routes. Coach only.
func (h *Handler) RegisterCoach(r chi.Router) {
	r.Get("/team/keys", h.HandleList)
	r.Post("/team/keys/rotate", h.HandleRotate)
}

// HandleList returns credential metadata for the caller's team. Hashes never
// appear here.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cap := middleware.GetCapability(ctx)

	metadata, err := h.service.List(ctx, cap.TeamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list keys failed", "error", err,
			"request_id", middleware.GetRequestID(ctx), "team_id", cap.TeamID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toKeyListResponse(metadata))
}

// HandleRotate mints a fresh key for one role and deactivates the old one.
// Every session minted against the old key dies immediately, including the
// caller's own if they rotate the coach key.
func (h *Handler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	cap := middleware.GetCapability(ctx)

	req, ok := httputil.DecodeJSON[RotateRequest](w, r, h.logger)
	if !ok {
		return
	}
	role, err := domain.ParseRole(strings.TrimSpace(req.Role))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "role must be coach or player"))
		return
	}

	plaintext, err := h.service.Rotate(ctx, cap.TeamID, role, privacy.TruncateIP(r.RemoteAddr))
	if err != nil {
		h.logger.ErrorContext(ctx, "rotate key failed", "error", err,
			"request_id", requestID, "team_id", cap.TeamID.String(), "role", role.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &RotateResponse{
		Role:      role.String(),
		Key:       plaintext,
		RotatedAt: time.Now().UTC(),
	})
}
