package store

import (
	"context"
	"sort"
	"sync"

	"rinkside/internal/roster/models"
	"rinkside/internal/sentinel"
	"rinkside/pkg/domain"
)

// MemoryStore is an in-memory roster store for tests and single-node
// development runs.
type MemoryStore struct {
	mu      sync.Mutex
	players map[domain.PlayerID]*models.Player
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[domain.PlayerID]*models.Player)}
}

func (s *MemoryStore) Create(_ context.Context, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *player
	s.players[p.ID] = &p
	return nil
}

func (s *MemoryStore) ListByTeam(_ context.Context, teamID domain.TeamID) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Player
	for _, p := range s.players {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Delete removes one player. The team id scopes the lookup so a caller can
// never remove another tenant's player by guessing ids.
func (s *MemoryStore) Delete(_ context.Context, teamID domain.TeamID, playerID domain.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok || p.TeamID != teamID {
		return sentinel.ErrNotFound
	}
	delete(s.players, playerID)
	return nil
}

// DeleteByTeam removes a team's roster as part of tenant cascade delete.
func (s *MemoryStore) DeleteByTeam(_ context.Context, teamID domain.TeamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.players {
		if p.TeamID == teamID {
			delete(s.players, id)
		}
	}
	return nil
}
