package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rinkside/internal/platform/middleware"
	"rinkside/internal/session"
	"rinkside/internal/teamkey/models"
	"rinkside/pkg/domain"
)

type fakeKeyService struct {
	metadata    []models.Metadata
	rotated     string
	lastTeam    domain.TeamID
	lastRole    domain.Role
	lastFrag    string
	rotateCalls int
}

func (f *fakeKeyService) List(_ context.Context, teamID domain.TeamID) ([]models.Metadata, error) {
	f.lastTeam = teamID
	return f.metadata, nil
}

func (f *fakeKeyService) Rotate(_ context.Context, teamID domain.TeamID, role domain.Role, frag string) (string, error) {
	f.rotateCalls++
	f.lastTeam = teamID
	f.lastRole = role
	f.lastFrag = frag
	return f.rotated, nil
}

type allActive struct{}

func (allActive) IsActive(context.Context, domain.KeyID) (bool, error) { return true, nil }

func testRouter(svc *fakeKeyService, sessions *session.Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions, allActive{}, logger))
		r.Use(middleware.RequireCoach(logger))
		h.RegisterCoach(r)
	})
	return r
}

func TestKeyRoutesAreCoachOnly(t *testing.T) {
	sessions := session.New("k", time.Hour)
	router := testRouter(&fakeKeyService{}, sessions)

	playerToken, err := sessions.Issue(domain.NewTeamID(), domain.RolePlayer, domain.NewKeyID())
	require.NoError(t, err)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/team/keys"},
		{http.MethodPost, "/team/keys/rotate"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"role":"player"}`))
		req.Header.Set("Authorization", "Bearer "+playerToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestListKeysScopedToOwnTeam(t *testing.T) {
	now := time.Now()
	svc := &fakeKeyService{metadata: []models.Metadata{
		{Role: domain.RoleCoach, Active: true, CreatedAt: now},
		{Role: domain.RolePlayer, Active: true, CreatedAt: now},
	}}
	sessions := session.New("k", time.Hour)
	router := testRouter(svc, sessions)

	teamID := domain.NewTeamID()
	token, err := sessions.Issue(teamID, domain.RoleCoach, domain.NewKeyID())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/team/keys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, teamID, svc.lastTeam)

	var resp KeyListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Keys, 2)
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestRotateReturnsFreshPlaintext(t *testing.T) {
	svc := &fakeKeyService{rotated: "fresh-plain"}
	sessions := session.New("k", time.Hour)
	router := testRouter(svc, sessions)

	teamID := domain.NewTeamID()
	token, err := sessions.Issue(teamID, domain.RoleCoach, domain.NewKeyID())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/team/keys/rotate", strings.NewReader(`{"role":"player"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.RemoteAddr = "203.0.113.9:1000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RotateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "fresh-plain", resp.Key)
	assert.Equal(t, "player", resp.Role)

	assert.Equal(t, teamID, svc.lastTeam)
	assert.Equal(t, domain.RolePlayer, svc.lastRole)
	assert.Equal(t, "203.0.113.0", svc.lastFrag)
}

func TestRotateRejectsUnknownRole(t *testing.T) {
	svc := &fakeKeyService{rotated: "fresh-plain"}
	sessions := session.New("k", time.Hour)
	router := testRouter(svc, sessions)

	token, err := sessions.Issue(domain.NewTeamID(), domain.RoleCoach, domain.NewKeyID())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/team/keys/rotate", strings.NewReader(`{"role":"referee"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.rotateCalls)
}
