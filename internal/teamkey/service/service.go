// Package service owns the credential lifecycle: pair creation at team
// setup, active-key lookup for login, and idempotent rotation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rinkside/internal/audit"
	"rinkside/internal/sentinel"
	keymetrics "rinkside/internal/teamkey/metrics"
	"rinkside/internal/teamkey/models"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
	"rinkside/pkg/secrets"
)

type Store interface {
	CreatePair(ctx context.Context, coach, player *models.TeamKey) error
	FindActive(ctx context.Context, teamID domain.TeamID, role domain.Role) (*models.TeamKey, error)
	Rotate(ctx context.Context, teamID domain.TeamID, role domain.Role, replacement *models.TeamKey) error
	ListByTeam(ctx context.Context, teamID domain.TeamID) ([]models.TeamKey, error)
	IsActive(ctx context.Context, keyID domain.KeyID) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event) error
}

// Service orchestrates credential operations.
type Service struct {
	store   Store
	logger  *slog.Logger
	auditor AuditRecorder
	metrics *keymetrics.Metrics
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

func WithMetrics(m *keymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePair generates fresh coach and player keys for a new team and
// persists their hashes as one transaction. The plaintexts are returned for
// one-time display and never stored.
func (s *Service) CreatePair(ctx context.Context, teamID domain.TeamID) (coachKey, playerKey string, err error) {
	coachKey, coachRow, err := s.newKey(teamID, domain.RoleCoach)
	if err != nil {
		return "", "", err
	}
	playerKey, playerRow, err := s.newKey(teamID, domain.RolePlayer)
	if err != nil {
		return "", "", err
	}
	if err := s.store.CreatePair(ctx, coachRow, playerRow); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeInternal, "could not create key pair")
	}
	if s.metrics != nil {
		s.metrics.PairsCreated.Inc()
	}
	return coachKey, playerKey, nil
}

// ActiveKey returns the live credential for (team, role). Absence fails
// closed: the caller gets not_found and must surface it as a generic
// invalid-key rejection.
func (s *Service) ActiveKey(ctx context.Context, teamID domain.TeamID, role domain.Role) (*models.TeamKey, error) {
	key, err := s.store.FindActive(ctx, teamID, role)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active key")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load team key")
	}
	return key, nil
}

// Rotate replaces the active credential for (team, targetRole): the old row
// is deactivated and stamped, a fresh one inserted, atomically. Returns the
// new plaintext for one-time display. Every session minted against the old
// key is invalidated because the guard checks the key id it was bound to.
func (s *Service) Rotate(ctx context.Context, teamID domain.TeamID, targetRole domain.Role, ipFragment string) (string, error) {
	plaintext, row, err := s.newKey(teamID, targetRole)
	if err != nil {
		return "", err
	}
	if err := s.store.Rotate(ctx, teamID, targetRole, row); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not rotate key")
	}
	if s.metrics != nil {
		s.metrics.KeysRotated.WithLabelValues(string(targetRole)).Inc()
	}
	if s.auditor != nil {
		// The recorder logs and counts its own failures.
		_ = s.auditor.Record(ctx, audit.Event{
			Kind:       audit.KindKeyRotated,
			TeamID:     teamID,
			Role:       domain.RoleCoach,
			TargetRole: targetRole,
			IPFragment: ipFragment,
		})
	}
	return plaintext, nil
}

// List returns the coach-visible credential metadata for the team: lifecycle
// fields only, never hashes or plaintext.
func (s *Service) List(ctx context.Context, teamID domain.TeamID) ([]models.Metadata, error) {
	keys, err := s.store.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list team keys")
	}
	out := make([]models.Metadata, 0, len(keys))
	for i := range keys {
		out = append(out, models.MetadataOf(&keys[i]))
	}
	return out, nil
}

// IsActive reports whether a credential is still live. Consumed by the
// session guard as its revocation check.
func (s *Service) IsActive(ctx context.Context, keyID domain.KeyID) (bool, error) {
	active, err := s.store.IsActive(ctx, keyID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "could not check key state")
	}
	return active, nil
}

func (s *Service) newKey(teamID domain.TeamID, role domain.Role) (string, *models.TeamKey, error) {
	plaintext, err := secrets.GenerateKey()
	if err != nil {
		return "", nil, err
	}
	hash, err := secrets.Hash(plaintext)
	if err != nil {
		return "", nil, err
	}
	return plaintext, &models.TeamKey{
		ID:        domain.NewKeyID(),
		TeamID:    teamID,
		Role:      role,
		KeyHash:   hash,
		Active:    true,
		CreatedAt: time.Now(),
	}, nil
}
