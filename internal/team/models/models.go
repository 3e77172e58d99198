package models

import (
	"time"

	"rinkside/pkg/domain"
)

// Team is one tenant. All credentials, lockout windows, audit events and
// roster records hang off it and die with it.
type Team struct {
	ID             domain.TeamID
	Name           string
	PrimaryColor   string
	SecondaryColor string
	LogoURL        string
	CreatedAt      time.Time
	LastActiveAt   *time.Time
}
