package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rinkside/internal/platform/middleware"
	"rinkside/internal/session"
	"rinkside/pkg/domain"
)

type allActiveChecker struct{}

func (allActiveChecker) IsActive(context.Context, domain.KeyID) (bool, error) { return true, nil }

func auditTestRouter(store *MemoryStore, sessions *session.Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(store, logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions, allActiveChecker{}, logger))
		r.Use(middleware.RequireCoach(logger))
		h.RegisterCoach(r)
	})
	return r
}

func TestAuditListIsTenantScoped(t *testing.T) {
	store := NewMemoryStore()
	recorder := NewRecorder(store)
	sessions := session.New("k", time.Hour)
	router := auditTestRouter(store, sessions)

	mine := domain.NewTeamID()
	other := domain.NewTeamID()
	require.NoError(t, recorder.Record(context.Background(), Event{Kind: KindLogin, TeamID: mine, Role: domain.RoleCoach}))
	require.NoError(t, recorder.Record(context.Background(), Event{Kind: KindLogin, TeamID: other, Role: domain.RoleCoach}))
	require.NoError(t, recorder.Record(context.Background(), Event{Kind: KindKeyRotated, TeamID: mine, Role: domain.RoleCoach, TargetRole: domain.RolePlayer}))

	token, err := sessions.Issue(mine, domain.RoleCoach, domain.NewKeyID())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/team/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)

	// Newest first.
	assert.Equal(t, KindKeyRotated, resp.Events[0].Kind)
	assert.Equal(t, "player", resp.Events[0].TargetRole)
	assert.Equal(t, KindLogin, resp.Events[1].Kind)
}

func TestAuditListIsCoachOnly(t *testing.T) {
	sessions := session.New("k", time.Hour)
	router := auditTestRouter(NewMemoryStore(), sessions)

	token, err := sessions.Issue(domain.NewTeamID(), domain.RolePlayer, domain.NewKeyID())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/team/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuditListRejectsBadLimit(t *testing.T) {
	sessions := session.New("k", time.Hour)
	router := auditTestRouter(NewMemoryStore(), sessions)

	token, err := sessions.Issue(domain.NewTeamID(), domain.RoleCoach, domain.NewKeyID())
	require.NoError(t, err)

	for _, limit := range []string{"0", "-3", "9999", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/team/audit?limit="+limit, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", limit)
	}
}
