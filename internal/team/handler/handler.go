package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rinkside/internal/platform/middleware"
	"rinkside/internal/platform/privacy"
	"rinkside/internal/team/models"
	"rinkside/internal/team/service"
	"rinkside/pkg/domain"
	"rinkside/pkg/platform/httputil"
)

// Service defines the interface for team operations.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Create(ctx context.Context, cmd service.CreateCommand) (*service.CreateResult, error)
	Get(ctx context.Context, teamID domain.TeamID) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Delete(ctx context.Context, teamID domain.TeamID, reason string) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the routes that need no session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/teams", h.HandleList)
	r.Post("/teams", h.HandleCreate)
}

// RegisterSession mounts the routes gated on an authenticated session.
func (h *Handler) RegisterSession(r chi.Router) {
	r.Get("/team", h.HandleGet)
}

// RegisterCoach mounts the routes gated on the coach role.
func (h *Handler) RegisterCoach(r chi.Router) {
	r.Delete("/team", h.HandleDelete)
}

// HandleList returns the team picker: id, name and branding only.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teams, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err,
			"request_id", middleware.GetRequestID(ctx))
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTeamListResponse(teams))
}

// HandleCreate registers a team and returns the plaintext key pair. This is
// the only response that ever carries the keys.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[CreateTeamRequest](w, r, h.logger)
	if !ok {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Create(ctx, service.CreateCommand{
		Name:           req.Name,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		LogoURL:        req.LogoURL,
		IPFragment:     privacy.TruncateIP(r.RemoteAddr),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "create team failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &TeamCreateResponse{
		Team:      toTeamResponse(res.Team),
		CoachKey:  res.CoachKey,
		PlayerKey: res.PlayerKey,
	})
}

// HandleGet returns the caller's own team.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cap := middleware.GetCapability(ctx)

	team, err := h.service.Get(ctx, cap.TeamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get team failed", "error", err,
			"request_id", middleware.GetRequestID(ctx), "team_id", cap.TeamID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTeamResponse(team))
}

// HandleDelete removes the caller's team and everything it owns. Coach only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cap := middleware.GetCapability(ctx)

	if err := h.service.Delete(ctx, cap.TeamID, "coach_request"); err != nil {
		h.logger.ErrorContext(ctx, "delete team failed", "error", err,
			"request_id", middleware.GetRequestID(ctx), "team_id", cap.TeamID.String())
		httputil.WriteError(w, err)
		return
	}

	// The caller's own credential died with the team; drop the cookie too.
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
