package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rinkside/internal/sentinel"
	"rinkside/internal/team/models"
	"rinkside/pkg/domain"
)

// MemoryStore is an in-memory team store for tests and single-node
// development runs.
type MemoryStore struct {
	mu    sync.Mutex
	teams map[domain.TeamID]*models.Team
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{teams: make(map[domain.TeamID]*models.Team)}
}

// CreateIfNameAvailable creates the team unless the name is already taken
// (case-insensitive).
func (s *MemoryStore) CreateIfNameAvailable(_ context.Context, team *models.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if strings.EqualFold(t.Name, team.Name) {
			return sentinel.ErrAlreadyUsed
		}
	}
	c := *team
	s.teams[team.ID] = &c
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, teamID domain.TeamID) (*models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *t
	return &out, nil
}

// List returns all teams sorted by name.
func (s *MemoryStore) List(_ context.Context) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *MemoryStore) TouchLastActive(_ context.Context, teamID domain.TeamID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.teams[teamID]; ok {
		t.LastActiveAt = &now
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, teamID domain.TeamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[teamID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.teams, teamID)
	return nil
}

// ListInactive returns teams whose last activity predates the cutoff
// (teams that never logged in count from creation).
func (s *MemoryStore) ListInactive(_ context.Context, cutoff time.Time) ([]models.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Team
	for _, t := range s.teams {
		last := t.CreatedAt
		if t.LastActiveAt != nil {
			last = *t.LastActiveAt
		}
		if last.Before(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}
