package models

import (
	"time"

	"rinkside/pkg/domain"
)

// Player is one roster entry. Roster data is team-owned and dies with the
// team; there are no per-player accounts.
type Player struct {
	ID        domain.PlayerID
	TeamID    domain.TeamID
	Name      string
	Number    int
	Position  string
	CreatedAt time.Time
}
