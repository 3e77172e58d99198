package audit

import (
	"context"
	"sync"

	"rinkside/pkg/domain"
)

// MemoryStore is an in-memory audit store for tests and single-node
// development runs.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListRecent returns up to limit events for the team, newest first.
func (s *MemoryStore) ListRecent(_ context.Context, teamID domain.TeamID, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if s.events[i].TeamID == teamID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// DeleteByTeam removes a team's events as part of tenant cascade delete.
func (s *MemoryStore) DeleteByTeam(_ context.Context, teamID domain.TeamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.events[:0]
	for _, e := range s.events {
		if e.TeamID != teamID {
			kept = append(kept, e)
		}
	}
	s.events = kept
	return nil
}
