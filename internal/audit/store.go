package audit

import (
	"context"

	"rinkside/pkg/domain"
)

// Store persists audit events. Append is insert-only; events are never
// updated and only removed by tenant cascade delete.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, teamID domain.TeamID, limit int) ([]Event, error)
}
