package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rinkside/internal/platform/middleware"
	"rinkside/internal/roster/models"
	"rinkside/internal/roster/service"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
	"rinkside/pkg/platform/httputil"
)

// Service defines the interface for roster operations.
type Service interface {
	Add(ctx context.Context, cmd service.AddCommand) (*models.Player, error)
	List(ctx context.Context, teamID domain.TeamID) ([]models.Player, error)
	Remove(ctx context.Context, teamID domain.TeamID, playerID domain.PlayerID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterSession mounts the read side: any authenticated team member.
func (h *Handler) RegisterSession(r chi.Router) {
	r.Get("/team/players", h.HandleList)
}

// RegisterCoach mounts the write side.
func (h *Handler) RegisterCoach(r chi.Router) {
	r.Post("/team/players", h.HandleAdd)
	r.Delete("/team/players/{id}", h.HandleRemove)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cap := middleware.GetCapability(ctx)

	players, err := h.service.List(ctx, cap.TeamID)
	if err != nil {
		h.logger.ErrorContext(ctx, "list players failed", "error", err,
			"request_id", middleware.GetRequestID(ctx), "team_id", cap.TeamID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toPlayerListResponse(players))
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cap := middleware.GetCapability(ctx)

	req, ok := httputil.DecodeJSON[AddPlayerRequest](w, r, h.logger)
	if !ok {
		return
	}

	player, err := h.service.Add(ctx, service.AddCommand{
		TeamID:   cap.TeamID,
		Name:     req.Name,
		Number:   req.Number,
		Position: req.Position,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "add player failed", "error", err,
			"request_id", middleware.GetRequestID(ctx), "team_id", cap.TeamID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toPlayerResponse(player))
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cap := middleware.GetCapability(ctx)

	playerID, err := domain.ParsePlayerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid player id"))
		return
	}

	if err := h.service.Remove(ctx, cap.TeamID, playerID); err != nil {
		h.logger.ErrorContext(ctx, "remove player failed", "error", err,
			"request_id", middleware.GetRequestID(ctx), "team_id", cap.TeamID.String())
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
