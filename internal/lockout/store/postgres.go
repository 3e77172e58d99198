package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rinkside/internal/lockout/models"
	"rinkside/pkg/domain"
)

// PostgresStore persists lockout windows in PostgreSQL. This store is pure
// I/O; window-length and ceiling policy live in the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed lockout store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, teamID domain.TeamID, ipFragment string) (*models.Window, error) {
	query := `
		SELECT team_id, ip_fragment, attempts, window_start
		FROM login_attempts
		WHERE team_id = $1 AND ip_fragment = $2
	`
	w, err := scanWindow(s.db.QueryRowContext(ctx, query, uuid.UUID(teamID), ipFragment))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lockout window: %w", err)
	}
	return w, nil
}

// RecordFailure is a single atomic upsert per key: a missing or expired
// window restarts at attempts=1, a live one increments. Two concurrent
// failures can never each lose an increment because the whole
// read-modify-write happens inside one statement.
func (s *PostgresStore) RecordFailure(ctx context.Context, teamID domain.TeamID, ipFragment string, now, expiredBefore time.Time) (*models.Window, error) {
	query := `
		INSERT INTO login_attempts (team_id, ip_fragment, attempts, window_start)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (team_id, ip_fragment) DO UPDATE SET
			attempts = CASE WHEN login_attempts.window_start < $4 THEN 1 ELSE login_attempts.attempts + 1 END,
			window_start = CASE WHEN login_attempts.window_start < $4 THEN $3 ELSE login_attempts.window_start END
		RETURNING team_id, ip_fragment, attempts, window_start
	`
	w, err := scanWindow(s.db.QueryRowContext(ctx, query, uuid.UUID(teamID), ipFragment, now, expiredBefore))
	if err != nil {
		return nil, fmt.Errorf("record login failure: %w", err)
	}
	return w, nil
}

// ClearAttempts zeroes the counter, leaving the row and its timestamp in
// place for reuse on the next failure.
func (s *PostgresStore) ClearAttempts(ctx context.Context, teamID domain.TeamID, ipFragment string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE login_attempts SET attempts = 0 WHERE team_id = $1 AND ip_fragment = $2`,
		uuid.UUID(teamID), ipFragment,
	)
	if err != nil {
		return fmt.Errorf("clear login attempts: %w", err)
	}
	return nil
}

// DeleteExpired removes windows that lapsed before the cutoff.
func (s *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE window_start < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired lockout windows: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired lockout windows: %w", err)
	}
	return int(rows), nil
}

type windowRow interface {
	Scan(dest ...any) error
}

func scanWindow(row windowRow) (*models.Window, error) {
	var w models.Window
	var teamID uuid.UUID
	if err := row.Scan(&teamID, &w.IPFragment, &w.Attempts, &w.WindowStart); err != nil {
		return nil, err
	}
	w.TeamID = domain.TeamID(teamID)
	return &w, nil
}
