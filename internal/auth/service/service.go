// Package service runs the login sequence: lockout check, active credential
// fetch, scrypt verification, capability issue. Every failure except lockout
// collapses into one uniform "invalid key" rejection so a caller can never
// learn which sub-step failed.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"

	"rinkside/internal/audit"
	authmetrics "rinkside/internal/auth/metrics"
	"rinkside/internal/platform/privacy"
	teammodels "rinkside/internal/team/models"
	keymodels "rinkside/internal/teamkey/models"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
	"rinkside/pkg/secrets"
)

// Login metric outcomes.
const (
	outcomeSuccess    = "success"
	outcomeInvalidKey = "invalid_key"
	outcomeLockedOut  = "locked_out"
)

type TeamReader interface {
	Get(ctx context.Context, teamID domain.TeamID) (*teammodels.Team, error)
	TouchLastActive(ctx context.Context, teamID domain.TeamID) error
}

type KeyReader interface {
	ActiveKey(ctx context.Context, teamID domain.TeamID, role domain.Role) (*keymodels.TeamKey, error)
}

type LockoutTracker interface {
	Allowed(ctx context.Context, teamID domain.TeamID, ipFragment string) (bool, error)
	RecordFailure(ctx context.Context, teamID domain.TeamID, ipFragment string) error
	RecordSuccess(ctx context.Context, teamID domain.TeamID, ipFragment string) error
}

type CapabilityIssuer interface {
	Issue(teamID domain.TeamID, role domain.Role, keyID domain.KeyID) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event) error
}

// LoginCommand carries one login attempt. RemoteAddr is the raw caller
// address; only its truncated fragment is ever stored.
type LoginCommand struct {
	TeamID        domain.TeamID
	Role          domain.Role
	Key           string
	TermsAccepted bool
	RemoteAddr    string
	UserAgent     string
}

// Service wires the login sequence together.
type Service struct {
	teams        TeamReader
	keys         KeyReader
	lockout      LockoutTracker
	sessions     CapabilityIssuer
	logger       *slog.Logger
	auditor      AuditRecorder
	metrics      *authmetrics.Metrics
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

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTermsVersion(version string) Option {
	return func(s *Service) {
		s.termsVersion = version
	}
}

func New(teams TeamReader, keys KeyReader, lockout LockoutTracker, sessions CapabilityIssuer, opts ...Option) *Service {
	s := &Service{
		teams:        teams,
		keys:         keys,
		lockout:      lockout,
		sessions:     sessions,
		termsVersion: "v1.0",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates one (team, role, key) attempt and returns a signed
// capability token.
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (string, error) {
	if cmd.Key == "" {
		return "", dErrors.New(dErrors.CodeValidation, "key is required")
	}
	if !cmd.TermsAccepted {
		return "", dErrors.New(dErrors.CodeValidation, "terms of use must be accepted")
	}

	// Tenant existence is checked before any credential work; a missing team
	// is not a secrecy-sensitive distinction.
	if _, err := s.teams.Get(ctx, cmd.TeamID); err != nil {
		return "", err
	}

	ipFragment := privacy.TruncateIP(cmd.RemoteAddr)

	allowed, err := s.lockout.Allowed(ctx, cmd.TeamID, ipFragment)
	if err != nil {
		return "", err
	}
	if !allowed {
		// Already locked: no extra failure is counted.
		s.observe(outcomeLockedOut)
		s.recordAudit(ctx, audit.Event{
			Kind:       audit.KindLoginLockedOut,
			TeamID:     cmd.TeamID,
			Role:       cmd.Role,
			IPFragment: ipFragment,
		})
		return "", dErrors.New(dErrors.CodeLockedOut, "too many attempts, try again later")
	}

	key, err := s.keys.ActiveKey(ctx, cmd.TeamID, cmd.Role)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return "", s.reject(ctx, cmd, ipFragment)
		}
		return "", err
	}
	if !secrets.Verify(cmd.Key, key.KeyHash) {
		return "", s.reject(ctx, cmd, ipFragment)
	}

	token, err := s.sessions.Issue(cmd.TeamID, cmd.Role, key.ID)
	if err != nil {
		return "", err
	}

	if err := s.lockout.RecordSuccess(ctx, cmd.TeamID, ipFragment); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to reset login attempts",
			"error", err, "team_id", cmd.TeamID.String())
	}
	// Activity stamp only affects retention; a failure here must not fail the login.
	_ = s.teams.TouchLastActive(ctx, cmd.TeamID)

	s.observe(outcomeSuccess)
	s.recordAudit(ctx, audit.Event{
		Kind:       audit.KindLogin,
		TeamID:     cmd.TeamID,
		Role:       cmd.Role,
		IPFragment: ipFragment,
		UserAgent:  agentFamily(cmd.UserAgent),
	})
	s.recordAudit(ctx, audit.Event{
		Kind:         audit.KindTermsAccepted,
		TeamID:       cmd.TeamID,
		Role:         cmd.Role,
		IPFragment:   ipFragment,
		TermsVersion: s.termsVersion,
	})

	return token, nil
}

// reject counts the failure and returns the uniform invalid-key error. Wrong
// key and absent credential are indistinguishable on purpose.
func (s *Service) reject(ctx context.Context, cmd LoginCommand, ipFragment string) error {
	if err := s.lockout.RecordFailure(ctx, cmd.TeamID, ipFragment); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure",
			"error", err, "team_id", cmd.TeamID.String())
	}
	s.observe(outcomeInvalidKey)
	s.recordAudit(ctx, audit.Event{
		Kind:       audit.KindLoginFailed,
		TeamID:     cmd.TeamID,
		Role:       cmd.Role,
		IPFragment: ipFragment,
	})
	return dErrors.New(dErrors.CodeUnauthorized, "invalid key")
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.Observe(outcome)
	}
}

func (s *Service) recordAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	// The recorder logs and counts its own failures.
	_ = s.auditor.Record(ctx, event)
}

// agentFamily reduces a User-Agent header to a coarse "browser on os"
// label for the audit trail. Nothing host-identifying is kept.
func agentFamily(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	browser = strings.ToLower(strings.TrimSpace(browser))
	os := strings.ToLower(strings.TrimSpace(ua.OS()))
	switch {
	case browser == "" && os == "":
		return "unknown"
	case os == "":
		return browser
	case browser == "":
		return os
	}
	return browser + " on " + os
}
