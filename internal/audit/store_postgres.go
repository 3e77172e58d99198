package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"rinkside/pkg/domain"
)

// PostgresStore persists audit events in PostgreSQL. Rows are removed only by
// the teams FK cascade.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, kind, team_id, role, ip_fragment, target_role, terms_version, user_agent, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Kind),
		uuid.UUID(event.TeamID),
		string(event.Role),
		event.IPFragment,
		string(event.TargetRole),
		event.TermsVersion,
		event.UserAgent,
		event.RequestID,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events for the team, newest first.
// ULID ids sort in insertion order, so ordering by id is ordering by time.
func (s *PostgresStore) ListRecent(ctx context.Context, teamID domain.TeamID, limit int) ([]Event, error) {
	query := `
		SELECT id, kind, team_id, role, ip_fragment, target_role, terms_version, user_agent, request_id, created_at
		FROM audit_events
		WHERE team_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(teamID), limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind, role, targetRole string
		var tid uuid.UUID
		if err := rows.Scan(&e.ID, &kind, &tid, &role, &e.IPFragment, &targetRole, &e.TermsVersion, &e.UserAgent, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Kind = Kind(kind)
		e.TeamID = domain.TeamID(tid)
		e.Role = domain.Role(role)
		e.TargetRole = domain.Role(targetRole)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
