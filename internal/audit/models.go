// Package audit keeps an append-only log of security-relevant actions.
package audit

import (
	"time"

	"rinkside/pkg/domain"
)

// Kind identifies what happened. Each kind documents which optional Event
// fields it fills; there is no free-form payload column.
type Kind string

const (
	// KindTeamCreated: Role is coach (the creator's role).
	KindTeamCreated Kind = "team.created"
	// KindLogin: Role is the authenticated role; UserAgent may be set.
	KindLogin Kind = "team.login"
	// KindLoginFailed: Role is the attempted role.
	KindLoginFailed Kind = "login.failed"
	// KindLoginLockedOut: Role is the attempted role.
	KindLoginLockedOut Kind = "login.locked_out"
	// KindKeyRotated: Role is coach (the actor); TargetRole is the rotated key's role.
	KindKeyRotated Kind = "team.key_rotated"
	// KindTermsAccepted: TermsVersion carries the accepted version.
	KindTermsAccepted Kind = "terms.accepted"
)

// Event is one immutable audit record. ID is a ULID, so the log sorts by id
// in insertion order.
type Event struct {
	ID           string
	Kind         Kind
	TeamID       domain.TeamID
	Role         domain.Role
	IPFragment   string
	TargetRole   domain.Role
	TermsVersion string
	UserAgent    string
	RequestID    string
	CreatedAt    time.Time
}
