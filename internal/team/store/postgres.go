package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"rinkside/internal/sentinel"
	"rinkside/internal/team/models"
	"rinkside/pkg/domain"
	txcontext "rinkside/pkg/platform/tx"
)

// PostgresStore persists teams in PostgreSQL. Deleting a team cascades to
// team_keys, login_attempts, audit_events and players through FK constraints.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed team store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// CreateIfNameAvailable atomically creates the team if the name is not
// already taken (case-insensitive, enforced by a unique index on lower(name)).
func (s *PostgresStore) CreateIfNameAvailable(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, primary_color, secondary_color, logo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(team.ID),
		team.Name,
		team.PrimaryColor,
		team.SecondaryColor,
		team.LogoURL,
		team.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("team name must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, teamID domain.TeamID) (*models.Team, error) {
	query := `
		SELECT id, name, primary_color, secondary_color, logo_url, created_at, last_active_at
		FROM teams
		WHERE id = $1
	`
	team, err := scanTeam(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(teamID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find team by id: %w", err)
	}
	return team, nil
}

// List returns all teams ordered by name.
func (s *PostgresStore) List(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT id, name, primary_color, secondary_color, logo_url, created_at, last_active_at
		FROM teams
		ORDER BY lower(name) ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *PostgresStore) TouchLastActive(ctx context.Context, teamID domain.TeamID, now time.Time) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE teams SET last_active_at = $2 WHERE id = $1`,
		uuid.UUID(teamID), now,
	)
	if err != nil {
		return fmt.Errorf("touch team activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, teamID domain.TeamID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, uuid.UUID(teamID))
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete team rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ListInactive returns teams whose last activity (or creation, if they never
// logged in) predates the cutoff.
func (s *PostgresStore) ListInactive(ctx context.Context, cutoff time.Time) ([]models.Team, error) {
	query := `
		SELECT id, name, primary_color, secondary_color, logo_url, created_at, last_active_at
		FROM teams
		WHERE COALESCE(last_active_at, created_at) < $1
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list inactive teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inactive teams: %w", err)
	}
	return teams, nil
}

type teamRow interface {
	Scan(dest ...any) error
}

func scanTeam(row teamRow) (*models.Team, error) {
	var team models.Team
	var teamID uuid.UUID
	var lastActive sql.NullTime
	if err := row.Scan(&teamID, &team.Name, &team.PrimaryColor, &team.SecondaryColor, &team.LogoURL, &team.CreatedAt, &lastActive); err != nil {
		return nil, err
	}
	team.ID = domain.TeamID(teamID)
	if lastActive.Valid {
		team.LastActiveAt = &lastActive.Time
	}
	return &team, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
