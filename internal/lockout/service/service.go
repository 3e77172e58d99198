// Package service enforces the brute-force lockout rule: a fixed attempt
// ceiling inside a sliding window per (team, truncated caller IP).
package service

import (
	"context"
	"log/slog"
	"time"

	lockoutmetrics "rinkside/internal/lockout/metrics"
	"rinkside/internal/lockout/models"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
)

// Defaults match the product rule: 10 failed attempts per 30 minutes.
const (
	DefaultWindow  = 30 * time.Minute
	DefaultCeiling = 10
)

type Store interface {
	Get(ctx context.Context, teamID domain.TeamID, ipFragment string) (*models.Window, error)
	RecordFailure(ctx context.Context, teamID domain.TeamID, ipFragment string, now, expiredBefore time.Time) (*models.Window, error)
	ClearAttempts(ctx context.Context, teamID domain.TeamID, ipFragment string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// Service applies window and ceiling policy over the store.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *lockoutmetrics.Metrics
	window  time.Duration
	ceiling int
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *lockoutmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

func WithCeiling(ceiling int) Option {
	return func(s *Service) {
		if ceiling > 0 {
			s.ceiling = ceiling
		}
	}
}

// WithClock overrides the time source. Tests use it to cross window
// boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		window:  DefaultWindow,
		ceiling: DefaultCeiling,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allowed reports whether a login attempt for (team, fragment) may proceed.
// No window, an expired window, or a counter under the ceiling all allow; an
// expired window is treated as absent but not deleted.
func (s *Service) Allowed(ctx context.Context, teamID domain.TeamID, ipFragment string) (bool, error) {
	w, err := s.store.Get(ctx, teamID, ipFragment)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "could not check lockout window")
	}
	if w == nil || w.Expired(s.now().Add(-s.window)) {
		return true, nil
	}
	return w.Attempts < s.ceiling, nil
}

// RecordFailure counts one failed attempt. The store performs the whole
// restart-or-increment as a single atomic upsert.
func (s *Service) RecordFailure(ctx context.Context, teamID domain.TeamID, ipFragment string) error {
	now := s.now()
	w, err := s.store.RecordFailure(ctx, teamID, ipFragment, now, now.Add(-s.window))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not record login failure")
	}
	if s.metrics != nil {
		s.metrics.FailuresRecorded.Inc()
	}
	if w.Attempts == s.ceiling {
		if s.metrics != nil {
			s.metrics.LockoutsTriggered.Inc()
		}
		if s.logger != nil {
			s.logger.WarnContext(ctx, "lockout ceiling reached",
				"team_id", teamID.String(),
				"ip", ipFragment,
				"attempts", w.Attempts,
			)
		}
	}
	return nil
}

// RecordSuccess zeroes the counter for (team, fragment).
func (s *Service) RecordSuccess(ctx context.Context, teamID domain.TeamID, ipFragment string) error {
	if err := s.store.ClearAttempts(ctx, teamID, ipFragment); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not clear login attempts")
	}
	return nil
}

// SweepExpired deletes windows that lapsed more than one window-length before
// now. Recently expired rows stay in place so the next failure reuses them.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx, s.now().Add(-2*s.window))
}
