package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"rinkside/internal/roster/models"
	"rinkside/internal/sentinel"
	"rinkside/pkg/domain"
)

// PostgresStore persists roster entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed roster store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, team_id, name, number, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(player.ID), uuid.UUID(player.TeamID),
		player.Name, player.Number, player.Position, player.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTeam(ctx context.Context, teamID domain.TeamID) ([]models.Player, error) {
	query := `
		SELECT id, team_id, name, number, position, created_at
		FROM players
		WHERE team_id = $1
		ORDER BY number, name
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(teamID))
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		var p models.Player
		var id, tid uuid.UUID
		if err := rows.Scan(&id, &tid, &p.Name, &p.Number, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.ID = domain.PlayerID(id)
		p.TeamID = domain.TeamID(tid)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return out, nil
}

// Delete removes one player. The team id scopes the statement so a caller
// can never remove another tenant's player by guessing ids.
func (s *PostgresStore) Delete(ctx context.Context, teamID domain.TeamID, playerID domain.PlayerID) error {
	query := `DELETE FROM players WHERE team_id = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, uuid.UUID(teamID), uuid.UUID(playerID))
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// DeleteByTeam removes a team's roster. The schema also cascades this via
// foreign key; having it here keeps memory and PostgreSQL modes symmetric.
func (s *PostgresStore) DeleteByTeam(ctx context.Context, teamID domain.TeamID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE team_id = $1`, uuid.UUID(teamID)); err != nil {
		return fmt.Errorf("delete team players: %w", err)
	}
	return nil
}
