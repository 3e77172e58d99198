package store

import (
	"context"
	"sync"
	"time"

	"rinkside/internal/lockout/models"
	"rinkside/pkg/domain"
)

type windowKey struct {
	teamID     domain.TeamID
	ipFragment string
}

// MemoryStore is an in-memory lockout store for tests and single-node
// development runs. The store lock makes RecordFailure a single atomic
// read-modify-write, matching the PostgreSQL upsert.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[windowKey]*models.Window
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[windowKey]*models.Window)}
}

// Get returns the window for (team, fragment), or nil if none was ever created.
func (s *MemoryStore) Get(_ context.Context, teamID domain.TeamID, ipFragment string) (*models.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[windowKey{teamID, ipFragment}]
	if !ok {
		return nil, nil
	}
	out := *w
	return &out, nil
}

// RecordFailure upserts the window: a missing or expired window restarts at
// attempts=1, a live one increments. expiredBefore is the caller-computed
// cutoff (now minus window length) so window-length policy stays out of the
// store.
func (s *MemoryStore) RecordFailure(_ context.Context, teamID domain.TeamID, ipFragment string, now, expiredBefore time.Time) (*models.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := windowKey{teamID, ipFragment}
	w, ok := s.windows[key]
	if !ok || w.WindowStart.Before(expiredBefore) {
		w = &models.Window{TeamID: teamID, IPFragment: ipFragment, Attempts: 1, WindowStart: now}
		s.windows[key] = w
	} else {
		w.Attempts++
	}
	out := *w
	return &out, nil
}

// ClearAttempts zeroes the counter for (team, fragment). The window timestamp
// is left as-is; only the counter matters for future checks.
func (s *MemoryStore) ClearAttempts(_ context.Context, teamID domain.TeamID, ipFragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.windows[windowKey{teamID, ipFragment}]; ok {
		w.Attempts = 0
	}
	return nil
}

// DeleteExpired removes windows that lapsed before the cutoff. Used by the
// cleanup worker to bound table growth.
func (s *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, w := range s.windows {
		if w.WindowStart.Before(cutoff) {
			delete(s.windows, key)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteByTeam removes a team's windows as part of tenant cascade delete.
func (s *MemoryStore) DeleteByTeam(_ context.Context, teamID domain.TeamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.windows {
		if key.teamID == teamID {
			delete(s.windows, key)
		}
	}
	return nil
}
