package models

import (
	"time"

	"rinkside/pkg/domain"
)

// Window is one sliding-window failure counter, keyed by the team and the
// caller's truncated network fragment. The row is created on the first
// failure and reused after expiry rather than deleted.
type Window struct {
	TeamID      domain.TeamID
	IPFragment  string
	Attempts    int
	WindowStart time.Time
}

// Expired reports whether the window lapsed before the given cutoff and
// should be treated as if it does not exist.
func (w *Window) Expired(cutoff time.Time) bool {
	return w.WindowStart.Before(cutoff)
}
