// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "rinkside/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a KeyID where a TeamID is expected.
type (
	TeamID   uuid.UUID
	KeyID    uuid.UUID
	PlayerID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseTeamID(s string) (TeamID, error) {
	id, err := parseUUID(s, "team ID")
	return TeamID(id), err
}

func ParseKeyID(s string) (KeyID, error) {
	id, err := parseUUID(s, "key ID")
	return KeyID(id), err
}

func ParsePlayerID(s string) (PlayerID, error) {
	id, err := parseUUID(s, "player ID")
	return PlayerID(id), err
}

// New functions - use when minting fresh identifiers.

func NewTeamID() TeamID     { return TeamID(uuid.New()) }
func NewKeyID() KeyID       { return KeyID(uuid.New()) }
func NewPlayerID() PlayerID { return PlayerID(uuid.New()) }

// String methods - for logging and debugging.

func (id TeamID) String() string   { return uuid.UUID(id).String() }
func (id KeyID) String() string    { return uuid.UUID(id).String() }
func (id PlayerID) String() string { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id TeamID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id KeyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PlayerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic. Nil UUIDs are allowed here so
// store lookups can return proper "not found" errors; use IsNil() at the
// service layer for business validation.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
