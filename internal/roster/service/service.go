// Package service manages a team's roster. Coaches add and remove players;
// any authenticated team member can read the list.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"rinkside/internal/roster/models"
	"rinkside/internal/sentinel"
	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
)

const (
	maxRosterSize    = 50
	maxPlayerName    = 80
	maxJerseyNumber  = 99
	maxPositionChars = 30
)

type Store interface {
	Create(ctx context.Context, player *models.Player) error
	ListByTeam(ctx context.Context, teamID domain.TeamID) ([]models.Player, error)
	Delete(ctx context.Context, teamID domain.TeamID, playerID domain.PlayerID) error
}

// AddCommand carries the validated inputs for adding a player.
type AddCommand struct {
	TeamID   domain.TeamID
	Name     string
	Number   int
	Position string
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Add(ctx context.Context, cmd AddCommand) (*models.Player, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "player name is required")
	}
	if len(name) > maxPlayerName {
		return nil, dErrors.New(dErrors.CodeValidation, "player name is too long")
	}
	if cmd.Number < 0 || cmd.Number > maxJerseyNumber {
		return nil, dErrors.New(dErrors.CodeValidation, "number must be between 0 and 99")
	}
	position := strings.TrimSpace(cmd.Position)
	if len(position) > maxPositionChars {
		return nil, dErrors.New(dErrors.CodeValidation, "position is too long")
	}

	existing, err := s.store.ListByTeam(ctx, cmd.TeamID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not read roster")
	}
	if len(existing) >= maxRosterSize {
		return nil, dErrors.New(dErrors.CodeConflict, "roster is full")
	}

	player := &models.Player{
		ID:        domain.NewPlayerID(),
		TeamID:    cmd.TeamID,
		Name:      name,
		Number:    cmd.Number,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, player); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not add player")
	}
	return player, nil
}

func (s *Service) List(ctx context.Context, teamID domain.TeamID) ([]models.Player, error) {
	players, err := s.store.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not read roster")
	}
	return players, nil
}

func (s *Service) Remove(ctx context.Context, teamID domain.TeamID, playerID domain.PlayerID) error {
	if playerID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "player id is required")
	}
	if err := s.store.Delete(ctx, teamID, playerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "player not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not remove player")
	}
	return nil
}
