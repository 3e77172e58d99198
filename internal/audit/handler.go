package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rinkside/internal/platform/middleware"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
	"rinkside/pkg/platform/httputil"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Reader is the query side of the log.
type Reader interface {
	ListRecent(ctx context.Context, teamID domain.TeamID, limit int) ([]Event, error)
}

type Handler struct {
	reader Reader
	logger *slog.Logger
}

func NewHandler(reader Reader, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, logger: logger}
}

// RegisterCoach mounts the audit view. Coach only.
func (h *Handler) RegisterCoach(r chi.Router) {
	r.Get("/team/audit", h.HandleList)
}

type EventResponse struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Role         string    `json:"role,omitempty"`
	IPFragment   string    `json:"ip_fragment,omitempty"`
	TargetRole   string    `json:"target_role,omitempty"`
	TermsVersion string    `json:"terms_version,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListResponse struct {
	Events []EventResponse `json:"events"`
}

// HandleList returns the caller's team activity, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cap := middleware.GetCapability(ctx)

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 200"))
			return
		}
		limit = n
	}

	events, err := h.reader.ListRecent(ctx, cap.TeamID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list audit events failed", "error", err,
			"request_id", middleware.GetRequestID(ctx), "team_id", cap.TeamID.String())
		httputil.WriteError(w, err)
		return
	}

	resp := ListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, EventResponse{
			ID:           e.ID,
			Kind:         e.Kind,
			Role:         e.Role.String(),
			IPFragment:   e.IPFragment,
			TargetRole:   e.TargetRole.String(),
			TermsVersion: e.TermsVersion,
			UserAgent:    e.UserAgent,
			CreatedAt:    e.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, &resp)
}
