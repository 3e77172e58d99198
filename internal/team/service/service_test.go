package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rinkside/internal/audit"
	"rinkside/internal/team/store"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
)

type fakeKeyCreator struct {
	err   error
	calls int
}

func (f *fakeKeyCreator) CreatePair(context.Context, domain.TeamID) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return "coach-key", "player-key", nil
}

type recordingCascade struct {
	deleted []domain.TeamID
}

func (c *recordingCascade) DeleteByTeam(_ context.Context, teamID domain.TeamID) error {
	c.deleted = append(c.deleted, teamID)
	return nil
}

// TeamServiceSuite tests tenant lifecycle orchestration.
//
// Justification: create must be all-or-nothing across the team row and the
// key pair, and delete must cascade; partial tenants are the failure mode
// the whole store layering exists to prevent.
type TeamServiceSuite struct {
	suite.Suite
	store    *store.MemoryStore
	keys     *fakeKeyCreator
	cascade  *recordingCascade
	auditLog *audit.MemoryStore
	svc      *Service
}

func TestTeamServiceSuite(t *testing.T) {
	suite.Run(t, new(TeamServiceSuite))
}

func (s *TeamServiceSuite) SetupTest() {
	s.store = store.NewMemoryStore()
	s.keys = &fakeKeyCreator{}
	s.cascade = &recordingCascade{}
	s.auditLog = audit.NewMemoryStore()
	s.svc = New(s.store, s.keys,
		WithCascades(s.cascade),
		WithAuditRecorder(audit.NewRecorder(s.auditLog)),
		WithTermsVersion("v2.1"),
	)
}

func (s *TeamServiceSuite) TestCreate() {
	res, err := s.svc.Create(context.Background(), CreateCommand{
		Name:         "Falcons",
		PrimaryColor: "#102a43",
		IPFragment:   "203.0.113.0",
	})
	s.Require().NoError(err)
	s.Equal("Falcons", res.Team.Name)
	s.Equal("coach-key", res.CoachKey)
	s.Equal("player-key", res.PlayerKey)

	s.Run("audit trail", func() {
		events, err := s.auditLog.ListRecent(context.Background(), res.Team.ID, 10)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		// newest first: terms acceptance follows creation
		s.Equal(audit.KindTermsAccepted, events[0].Kind)
		s.Equal("v2.1", events[0].TermsVersion)
		s.Equal(audit.KindTeamCreated, events[1].Kind)
	})
}

func (s *TeamServiceSuite) TestCreateRejectsBlankName() {
	_, err := s.svc.Create(context.Background(), CreateCommand{Name: "   "})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Zero(s.keys.calls)
}

func (s *TeamServiceSuite) TestCreateDuplicateNameConflicts() {
	_, err := s.svc.Create(context.Background(), CreateCommand{Name: "Falcons"})
	s.Require().NoError(err)

	_, err = s.svc.Create(context.Background(), CreateCommand{Name: "falcons"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "names are unique case-insensitively")
}

func (s *TeamServiceSuite) TestCreateRollsBackOnKeyFailure() {
	s.keys.err = errors.New("store down")
	_, err := s.svc.Create(context.Background(), CreateCommand{Name: "Falcons"})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	teams, listErr := s.svc.List(context.Background())
	s.Require().NoError(listErr)
	s.Empty(teams, "no team row may survive a failed key pair")
}

func (s *TeamServiceSuite) TestDeleteCascades() {
	res, err := s.svc.Create(context.Background(), CreateCommand{Name: "Falcons"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(context.Background(), res.Team.ID, "coach_request"))
	s.Equal([]domain.TeamID{res.Team.ID}, s.cascade.deleted)

	_, err = s.svc.Get(context.Background(), res.Team.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *TeamServiceSuite) TestDeleteMissingTeam() {
	err := s.svc.Delete(context.Background(), domain.NewTeamID(), "coach_request")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Empty(s.cascade.deleted)
}

func (s *TeamServiceSuite) TestSweepInactive() {
	ctx := context.Background()
	old, err := s.svc.Create(ctx, CreateCommand{Name: "Dormant"})
	s.Require().NoError(err)
	fresh, err := s.svc.Create(ctx, CreateCommand{Name: "Active"})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.TouchLastActive(ctx, fresh.Team.ID))

	// Only teams idle past the cutoff go; the cutoff here is in the future
	// relative to Dormant's creation but before Active's touch.
	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now().Add(-2 * time.Millisecond)
	s.Require().NoError(s.svc.TouchLastActive(ctx, fresh.Team.ID))

	deleted, err := s.svc.SweepInactive(ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(1, deleted)

	_, err = s.svc.Get(ctx, old.Team.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.svc.Get(ctx, fresh.Team.ID)
	s.NoError(err)
}
