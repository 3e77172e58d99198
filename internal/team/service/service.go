// Package service orchestrates the team (tenant) lifecycle. Creating a team
// also mints its coach/player key pair; deleting one takes every owned
// credential, lockout window, audit event and roster record with it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rinkside/internal/audit"
	"rinkside/internal/sentinel"
	teammetrics "rinkside/internal/team/metrics"
	"rinkside/internal/team/models"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
	txcontext "rinkside/pkg/platform/tx"
)

type Store interface {
	CreateIfNameAvailable(ctx context.Context, team *models.Team) error
	FindByID(ctx context.Context, teamID domain.TeamID) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	TouchLastActive(ctx context.Context, teamID domain.TeamID, now time.Time) error
	Delete(ctx context.Context, teamID domain.TeamID) error
	ListInactive(ctx context.Context, cutoff time.Time) ([]models.Team, error)
}

// KeyCreator mints the coach/player credential pair for a new team.
type KeyCreator interface {
	CreatePair(ctx context.Context, teamID domain.TeamID) (coachKey, playerKey string, err error)
}

// Cascade deletes a store's records for a team. The PostgreSQL schema
// cascades through foreign keys; memory stores register themselves here so
// both modes observe the same "tenant delete removes everything" contract.
type Cascade interface {
	DeleteByTeam(ctx context.Context, teamID domain.TeamID) error
}

type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event) error
}

// CreateCommand carries the validated inputs for team creation.
type CreateCommand struct {
	Name           string
	PrimaryColor   string
	SecondaryColor string
	LogoURL        string
	IPFragment     string
}

// CreateResult is returned once: the plaintext keys are not recoverable
// afterwards.
type CreateResult struct {
	Team      *models.Team
	CoachKey  string
	PlayerKey string
}

// Service orchestrates team management.
type Service struct {
	store        Store
	keys         KeyCreator
	tx           StoreTx
	cascades     []Cascade
	logger       *slog.Logger
	auditor      AuditRecorder
	metrics      *teammetrics.Metrics
	termsVersion string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditRecorder(auditor AuditRecorder) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

func WithMetrics(m *teammetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCascades(cascades ...Cascade) Option {
	return func(s *Service) {
		s.cascades = append(s.cascades, cascades...)
	}
}

func WithTermsVersion(version string) Option {
	return func(s *Service) {
		s.termsVersion = version
	}
}

// WithStoreTx sets the transactional boundary for creation. PostgreSQL
// deployments pass a runner over the shared connection so the team row and
// both credential rows commit together; without it an in-memory lock is used.
func WithStoreTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(store Store, keys KeyCreator, opts ...Option) *Service {
	s := &Service{store: store, keys: keys, termsVersion: "v1.0"}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newInMemoryStoreTx()
	}
	return s
}

// Create registers a new team and mints its key pair. The team row and both
// credential rows are written inside one transactional boundary: a tenant
// either exists with both keys or not at all.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*CreateResult, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "team name is required")
	}

	team := &models.Team{
		ID:             domain.NewTeamID(),
		Name:           name,
		PrimaryColor:   strings.TrimSpace(cmd.PrimaryColor),
		SecondaryColor: strings.TrimSpace(cmd.SecondaryColor),
		LogoURL:        strings.TrimSpace(cmd.LogoURL),
		CreatedAt:      time.Now(),
	}

	var coachKey, playerKey string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.CreateIfNameAvailable(txCtx, team); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "team name is already taken")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not create team")
		}

		var err error
		coachKey, playerKey, err = s.keys.CreatePair(txCtx, team.ID)
		if err != nil {
			// A database transaction takes the team row down with it on
			// rollback; non-transactional stores need the explicit undo.
			if _, inTx := txcontext.From(txCtx); !inTx {
				if delErr := s.store.Delete(txCtx, team.ID); delErr != nil && s.logger != nil {
					s.logger.ErrorContext(txCtx, "failed to undo team after key creation failure",
						"error", delErr, "team_id", team.ID.String())
				}
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not create team keys")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TeamsCreated.Inc()
	}
	if s.auditor != nil {
		// The recorder logs and counts its own failures.
		_ = s.auditor.Record(ctx, audit.Event{
			Kind:       audit.KindTeamCreated,
			TeamID:     team.ID,
			Role:       domain.RoleCoach,
			IPFragment: cmd.IPFragment,
		})
		_ = s.auditor.Record(ctx, audit.Event{
			Kind:         audit.KindTermsAccepted,
			TeamID:       team.ID,
			Role:         domain.RoleCoach,
			IPFragment:   cmd.IPFragment,
			TermsVersion: s.termsVersion,
		})
	}

	return &CreateResult{Team: team, CoachKey: coachKey, PlayerKey: playerKey}, nil
}

// Get returns one team.
func (s *Service) Get(ctx context.Context, teamID domain.TeamID) (*models.Team, error) {
	team, err := s.store.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "team not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load team")
	}
	return team, nil
}

// List returns all teams, for the public team picker.
func (s *Service) List(ctx context.Context) ([]models.Team, error) {
	teams, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list teams")
	}
	return teams, nil
}

// TouchLastActive stamps team activity. Failures only cost retention
// accuracy, so the caller may ignore the error.
func (s *Service) TouchLastActive(ctx context.Context, teamID domain.TeamID) error {
	return s.store.TouchLastActive(ctx, teamID, time.Now())
}

// Delete removes the team and everything it owns.
func (s *Service) Delete(ctx context.Context, teamID domain.TeamID, reason string) error {
	if err := s.store.Delete(ctx, teamID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "team not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not delete team")
	}
	for _, c := range s.cascades {
		if err := c.DeleteByTeam(ctx, teamID); err != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "cascade delete failed",
				"error", err, "team_id", teamID.String())
		}
	}
	if s.metrics != nil {
		s.metrics.TeamsDeleted.WithLabelValues(reason).Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "team deleted", "team_id", teamID.String(), "reason", reason)
	}
	return nil
}

// SweepInactive deletes teams idle past the cutoff. Returns how many were
// removed.
func (s *Service) SweepInactive(ctx context.Context, cutoff time.Time) (int, error) {
	teams, err := s.store.ListInactive(ctx, cutoff)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "could not list inactive teams")
	}
	deleted := 0
	for _, t := range teams {
		if err := s.Delete(ctx, t.ID, "retention"); err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "retention delete failed",
					"error", err, "team_id", t.ID.String())
			}
			continue
		}
		deleted++
	}
	return deleted, nil
}
