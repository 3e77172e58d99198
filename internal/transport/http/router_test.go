package httptransport

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

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"rinkside/internal/audit"
	authhandler "rinkside/internal/auth/handler"
	authservice "rinkside/internal/auth/service"
	lockoutservice "rinkside/internal/lockout/service"
	lockoutstore "rinkside/internal/lockout/store"
	"rinkside/internal/platform/health"
	rosterhandler "rinkside/internal/roster/handler"
	rosterservice "rinkside/internal/roster/service"
	rosterstore "rinkside/internal/roster/store"
	"rinkside/internal/session"
	teamhandler "rinkside/internal/team/handler"
	teamservice "rinkside/internal/team/service"
	teamstore "rinkside/internal/team/store"
	keyhandler "rinkside/internal/teamkey/handler"
	keyservice "rinkside/internal/teamkey/service"
	keystore "rinkside/internal/teamkey/store"
	"rinkside/pkg/domain"
)

// RouterSuite exercises the whole HTTP surface against memory stores: real
// guards, real scrypt hashing, real tokens.
type RouterSuite struct {
	suite.Suite
	server   *httptest.Server
	auditLog *audit.MemoryStore

	teamID    string
	coachKey  string
	playerKey string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditStore := audit.NewMemoryStore()
	s.auditLog = auditStore
	recorder := audit.NewRecorder(auditStore, audit.WithLogger(logger))

	keyStore := keystore.NewMemoryStore()
	keys := keyservice.New(keyStore, keyservice.WithAuditRecorder(recorder))
	lockouts := lockoutservice.New(lockoutstore.NewMemoryStore())
	rosterStore := rosterstore.NewMemoryStore()
	roster := rosterservice.New(rosterStore)
	teams := teamservice.New(teamstore.NewMemoryStore(), keys,
		teamservice.WithAuditRecorder(recorder),
		teamservice.WithCascades(keyStore, rosterStore, auditStore),
	)
	sessions := session.New("router-test-key", time.Hour)
	auth := authservice.New(teams, keys, lockouts, sessions,
		authservice.WithAuditRecorder(recorder))

	router := NewRouter(Handlers{
		Auth:   authhandler.New(auth, time.Hour, logger),
		Team:   teamhandler.New(teams, logger),
		Keys:   keyhandler.New(keys, logger),
		Audit:  audit.NewHandler(auditStore, logger),
		Roster: rosterhandler.New(roster, logger),
		Health: health.New("test"),
	}, Guards{Sessions: sessions, Keys: keys}, logger)

	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)

	// Register one team through the API itself.
	resp := s.post("/teams", `{"name":"Falcons","terms_accepted":true}`, "")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var created struct {
		Team struct {
			ID string `json:"id"`
		} `json:"team"`
		CoachKey  string `json:"coach_key"`
		PlayerKey string `json:"player_key"`
	}
	s.decode(resp, &created)
	s.teamID = created.Team.ID
	s.coachKey = created.CoachKey
	s.playerKey = created.PlayerKey
}

func (s *RouterSuite) post(path, body, token string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *RouterSuite) get(path, token string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *RouterSuite) decode(resp *http.Response, target any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(target))
}

func (s *RouterSuite) login(role, key string) (string, int) {
	resp := s.post("/team/login",
		`{"team_id":"`+s.teamID+`","role":"`+role+`","key":"`+key+`","terms_accepted":true}`, "")
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", resp.StatusCode
	}
	var body struct {
		Token string `json:"token"`
	}
	s.decode(resp, &body)
	return body.Token, http.StatusOK
}

func (s *RouterSuite) TestHealthAndMetricsArePublic() {
	resp := s.get("/healthz", "")
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.get("/metrics", "")
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *RouterSuite) TestLoginCookieAndTokenBothWork() {
	token, code := s.login("coach", s.coachKey)
	s.Require().Equal(http.StatusOK, code)

	resp := s.get("/team", token)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/team", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: "rinkside_session", Value: token})
	cookieResp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	cookieResp.Body.Close()
	s.Equal(http.StatusOK, cookieResp.StatusCode)
}

func (s *RouterSuite) TestGuardMatrix() {
	playerToken, code := s.login("player", s.playerKey)
	s.Require().Equal(http.StatusOK, code)

	cases := []struct {
		name   string
		call   func() *http.Response
		status int
	}{
		{"no session on /team", func() *http.Response { return s.get("/team", "") }, http.StatusUnauthorized},
		{"player reads roster", func() *http.Response { return s.get("/team/players", playerToken) }, http.StatusOK},
		{"player cannot see keys", func() *http.Response { return s.get("/team/keys", playerToken) }, http.StatusForbidden},
		{"player cannot see audit", func() *http.Response { return s.get("/team/audit", playerToken) }, http.StatusForbidden},
		{"player cannot rotate", func() *http.Response {
			return s.post("/team/keys/rotate", `{"role":"player"}`, playerToken)
		}, http.StatusForbidden},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			resp := tc.call()
			resp.Body.Close()
			s.Equal(tc.status, resp.StatusCode)
		})
	}
}

func (s *RouterSuite) TestRotationRevokesLiveSession() {
	coachToken, code := s.login("coach", s.coachKey)
	s.Require().Equal(http.StatusOK, code)

	resp := s.post("/team/keys/rotate", `{"role":"coach"}`, coachToken)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var rotated struct {
		Key string `json:"key"`
	}
	s.decode(resp, &rotated)
	s.Require().NotEmpty(rotated.Key)

	// The very token that performed the rotation is now dead.
	resp = s.get("/team", coachToken)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	// The new key logs in fine.
	_, code = s.login("coach", rotated.Key)
	s.Equal(http.StatusOK, code)

	// The old plaintext does not.
	_, code = s.login("coach", s.coachKey)
	s.Equal(http.StatusUnauthorized, code)
}

func (s *RouterSuite) TestTeamDeleteCascades() {
	coachToken, code := s.login("coach", s.coachKey)
	s.Require().Equal(http.StatusOK, code)

	resp := s.post("/team/players", `{"name":"Sam","number":9}`, coachToken)
	resp.Body.Close()
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, s.server.URL+"/team", nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+coachToken)
	delResp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	delResp.Body.Close()
	s.Require().Equal(http.StatusNoContent, delResp.StatusCode)

	// The credential died with the team, so the session is gone too.
	resp = s.get("/team", coachToken)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	// And logging in again reports the tenant as missing.
	_, code = s.login("coach", s.coachKey)
	s.Equal(http.StatusNotFound, code)
}

func (s *RouterSuite) TestAuditEventsCarryRequestID() {
	_, code := s.login("coach", s.coachKey)
	s.Require().Equal(http.StatusOK, code)

	teamID, err := domain.ParseTeamID(s.teamID)
	s.Require().NoError(err)

	// Creation and login events alike were written while serving a request,
	// so each one must be tagged with that request's id.
	events, err := s.auditLog.ListRecent(context.Background(), teamID, 10)
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	for _, e := range events {
		s.NotEmpty(e.RequestID, string(e.Kind))
	}
}

func (s *RouterSuite) TestUnsupportedContentTypeIs415() {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/teams", strings.NewReader("name=Falcons"))
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnsupportedMediaType, resp.StatusCode)
}
