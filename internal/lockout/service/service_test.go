package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rinkside/internal/lockout/store"
	"rinkside/pkg/domain"
)

// LockoutSuite tests the sliding-window policy against the memory store.
//
// Justification: the ceiling/window/reset semantics are the service's
// brute-force defence; each boundary (10th vs 11th attempt, expiry,
// success reset) changes whether a correct key is even looked at.
type LockoutSuite struct {
	suite.Suite
	svc    *Service
	teamID domain.TeamID
	clock  time.Time
}

func TestLockoutSuite(t *testing.T) {
	suite.Run(t, new(LockoutSuite))
}

const fragment = "203.0.113.0"

func (s *LockoutSuite) SetupTest() {
	s.teamID = domain.NewTeamID()
	s.clock = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s.svc = New(store.NewMemoryStore(),
		WithClock(func() time.Time { return s.clock }),
	)
}

func (s *LockoutSuite) fail(n int) {
	for i := 0; i < n; i++ {
		s.Require().NoError(s.svc.RecordFailure(context.Background(), s.teamID, fragment))
	}
}

func (s *LockoutSuite) TestAllowedWithNoWindow() {
	allowed, err := s.svc.Allowed(context.Background(), s.teamID, fragment)
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *LockoutSuite) TestCeilingDeniesEleventhAttempt() {
	s.fail(9)
	allowed, err := s.svc.Allowed(context.Background(), s.teamID, fragment)
	s.Require().NoError(err)
	s.True(allowed, "9 failures still under the ceiling")

	s.fail(1)
	allowed, err = s.svc.Allowed(context.Background(), s.teamID, fragment)
	s.Require().NoError(err)
	s.False(allowed, "10 failures inside the window must deny")
}

func (s *LockoutSuite) TestExpiredWindowAllowsWithoutWaitingForSweep() {
	s.fail(10)

	s.clock = s.clock.Add(31 * time.Minute)
	allowed, err := s.svc.Allowed(context.Background(), s.teamID, fragment)
	s.Require().NoError(err)
	s.True(allowed, "an expired window is treated as absent")
}

func (s *LockoutSuite) TestFailureAfterExpiryRestartsWindow() {
	s.fail(10)
	s.clock = s.clock.Add(31 * time.Minute)

	// One more failure starts a fresh window at attempts=1, not 11.
	s.fail(1)
	allowed, err := s.svc.Allowed(context.Background(), s.teamID, fragment)
	s.Require().NoError(err)
	s.True(allowed)

	s.fail(9)
	allowed, err = s.svc.Allowed(context.Background(), s.teamID, fragment)
	s.Require().NoError(err)
	s.False(allowed, "ceiling applies to the restarted window")
}

func (s *LockoutSuite) TestSuccessResetsCounter() {
	s.fail(9)
	s.Require().NoError(s.svc.RecordSuccess(context.Background(), s.teamID, fragment))

	s.fail(9)
	allowed, err := s.svc.Allowed(context.Background(), s.teamID, fragment)
	s.Require().NoError(err)
	s.True(allowed, "counter restarts from zero after a success")
}

func (s *LockoutSuite) TestKeysAreIndependent() {
	s.fail(10)

	allowed, err := s.svc.Allowed(context.Background(), s.teamID, "198.51.100.0")
	s.Require().NoError(err)
	s.True(allowed, "different fragment, different window")

	allowed, err = s.svc.Allowed(context.Background(), domain.NewTeamID(), fragment)
	s.Require().NoError(err)
	s.True(allowed, "different team, different window")
}

func (s *LockoutSuite) TestSweepSparesRecentWindows() {
	s.fail(3)
	ctx := context.Background()

	deleted, err := s.svc.SweepExpired(ctx)
	s.Require().NoError(err)
	s.Zero(deleted, "live windows are never swept")

	s.clock = s.clock.Add(45 * time.Minute)
	deleted, err = s.svc.SweepExpired(ctx)
	s.Require().NoError(err)
	s.Zero(deleted, "recently expired windows stay for reuse")

	s.clock = s.clock.Add(30 * time.Minute)
	deleted, err = s.svc.SweepExpired(ctx)
	s.Require().NoError(err)
	s.Equal(1, deleted)
}

func (s *LockoutSuite) TestConfigurableCeiling() {
	svc := New(store.NewMemoryStore(),
		WithClock(func() time.Time { return s.clock }),
		WithCeiling(3),
	)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		s.Require().NoError(svc.RecordFailure(ctx, s.teamID, fragment))
	}
	allowed, err := svc.Allowed(ctx, s.teamID, fragment)
	s.Require().NoError(err)
	s.False(allowed)
}
