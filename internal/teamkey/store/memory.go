package store

import (
	"context"
	"sync"
	"time"

	"rinkside/internal/sentinel"
	"rinkside/internal/teamkey/models"
	"rinkside/pkg/domain"
)

// MemoryStore is an in-memory credential store for tests and single-node
// development runs. Mutations take the store lock so the same
// both-rows-or-neither and deactivate-then-insert semantics hold as in the
// PostgreSQL store.
type MemoryStore struct {
	mu   sync.Mutex
	keys []*models.TeamKey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) CreatePair(_ context.Context, coach, player *models.TeamKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, p := *coach, *player
	s.keys = append(s.keys, &c, &p)
	return nil
}

func (s *MemoryStore) FindActive(_ context.Context, teamID domain.TeamID, role domain.Role) (*models.TeamKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.TeamKey
	for _, k := range s.keys {
		if k.TeamID == teamID && k.Role == role && k.Active {
			if latest == nil || k.CreatedAt.After(latest.CreatedAt) {
				latest = k
			}
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	out := *latest
	return &out, nil
}

// Rotate deactivates the active rows for (team, role) and inserts the
// replacement as one unit.
func (s *MemoryStore) Rotate(_ context.Context, teamID domain.TeamID, role domain.Role, replacement *models.TeamKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, k := range s.keys {
		if k.TeamID == teamID && k.Role == role && k.Active {
			k.Active = false
			k.RotatedAt = &now
		}
	}
	r := *replacement
	s.keys = append(s.keys, &r)
	return nil
}

func (s *MemoryStore) ListByTeam(_ context.Context, teamID domain.TeamID) ([]models.TeamKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TeamKey
	for _, k := range s.keys {
		if k.TeamID == teamID {
			out = append(out, *k)
		}
	}
	return out, nil
}

func (s *MemoryStore) IsActive(_ context.Context, keyID domain.KeyID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.ID == keyID {
			return k.Active, nil
		}
	}
	return false, nil
}

// DeleteByTeam removes a team's credentials as part of tenant cascade delete.
func (s *MemoryStore) DeleteByTeam(_ context.Context, teamID domain.TeamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.keys[:0]
	for _, k := range s.keys {
		if k.TeamID != teamID {
			kept = append(kept, k)
		}
	}
	s.keys = kept
	return nil
}
