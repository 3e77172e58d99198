package models

import (
	"time"

	"rinkside/pkg/domain"
)

// TeamKey is one credential record for a (team, role) pair. At most one row
// per pair is active at a time; rotation deactivates the old row and keeps it
// for forensics; a deactivated hash can never verify again.
type TeamKey struct {
	ID        domain.KeyID
	TeamID    domain.TeamID
	Role      domain.Role
	KeyHash   string
	Active    bool
	CreatedAt time.Time
	RotatedAt *time.Time
}

// Metadata is the coach-visible view of a credential: lifecycle only, never
// the hash.
type Metadata struct {
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	RotatedAt *time.Time  `json:"rotated_at,omitempty"`
}

// MetadataOf strips a credential down to its lifecycle view.
func MetadataOf(k *TeamKey) Metadata {
	return Metadata{
		Role:      k.Role,
		Active:    k.Active,
		CreatedAt: k.CreatedAt,
		RotatedAt: k.RotatedAt,
	}
}
