package domain

import (
	dErrors "rinkside/pkg/domain-errors"
)

// Role is the coarse capability class a caller assumes inside a team.
// There are exactly two: coaches read and write, players are read-mostly.
type Role string

const (
	RoleCoach  Role = "coach"
	RolePlayer Role = "player"
)

// ParseRole validates a role string at trust boundaries.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCoach:
		return RoleCoach, nil
	case RolePlayer:
		return RolePlayer, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "role must be coach or player")
}

func (r Role) String() string { return string(r) }
