package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rinkside/internal/sentinel"
	"rinkside/internal/teamkey/models"
	"rinkside/pkg/domain"
	txcontext "rinkside/pkg/platform/tx"
)

// PostgresStore persists credentials in PostgreSQL. The schema backs the
// one-active-row invariant with a partial unique index on (team_id, role)
// WHERE active, so a racing rotation fails instead of leaving two live keys.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertKey = `
		INSERT INTO team_keys (id, team_id, role, key_hash, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

// CreatePair inserts both credentials in one transaction: either both rows
// are written or neither. When the context carries an enclosing transaction,
// team creation for instance, the inserts join it instead of committing on
// their own.
func (s *PostgresStore) CreatePair(ctx context.Context, coach, player *models.TeamKey) error {
	if tx, ok := txcontext.From(ctx); ok {
		return insertPair(ctx, tx, coach, player)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create pair: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertPair(ctx, tx, coach, player); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create pair: %w", err)
	}
	return nil
}

func insertPair(ctx context.Context, tx *sql.Tx, coach, player *models.TeamKey) error {
	for _, k := range []*models.TeamKey{coach, player} {
		if _, err := tx.ExecContext(ctx, insertKey,
			uuid.UUID(k.ID), uuid.UUID(k.TeamID), string(k.Role), k.KeyHash, k.Active, k.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert team key: %w", err)
		}
	}
	return nil
}

// FindActive returns the most recently created active credential for
// (team, role), or sentinel.ErrNotFound.
func (s *PostgresStore) FindActive(ctx context.Context, teamID domain.TeamID, role domain.Role) (*models.TeamKey, error) {
	query := `
		SELECT id, team_id, role, key_hash, active, created_at, rotated_at
		FROM team_keys
		WHERE team_id = $1 AND role = $2 AND active
		ORDER BY created_at DESC
		LIMIT 1
	`
	key, err := scanKey(s.db.QueryRowContext(ctx, query, uuid.UUID(teamID), string(role)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active team key: %w", err)
	}
	return key, nil
}

// Rotate deactivates the current active rows and inserts the replacement as
// one transaction.
func (s *PostgresStore) Rotate(ctx context.Context, teamID domain.TeamID, role domain.Role, replacement *models.TeamKey) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rotate: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deactivate := `
		UPDATE team_keys
		SET active = FALSE, rotated_at = NOW()
		WHERE team_id = $1 AND role = $2 AND active
	`
	if _, err := tx.ExecContext(ctx, deactivate, uuid.UUID(teamID), string(role)); err != nil {
		return fmt.Errorf("deactivate team key: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertKey,
		uuid.UUID(replacement.ID), uuid.UUID(replacement.TeamID), string(replacement.Role),
		replacement.KeyHash, replacement.Active, replacement.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert replacement key: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rotate: %w", err)
	}
	return nil
}

// ListByTeam returns every credential row for the team, active and rotated.
func (s *PostgresStore) ListByTeam(ctx context.Context, teamID domain.TeamID) ([]models.TeamKey, error) {
	query := `
		SELECT id, team_id, role, key_hash, active, created_at, rotated_at
		FROM team_keys
		WHERE team_id = $1
		ORDER BY role ASC, created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(teamID))
	if err != nil {
		return nil, fmt.Errorf("list team keys: %w", err)
	}
	defer rows.Close()

	var keys []models.TeamKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team key: %w", err)
		}
		keys = append(keys, *key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list team keys: %w", err)
	}
	return keys, nil
}

// IsActive reports whether the credential row still exists and is active.
// Used by the session guard: rotation or tenant deletion flips this to false
// and every capability minted against the key dies with it.
func (s *PostgresStore) IsActive(ctx context.Context, keyID domain.KeyID) (bool, error) {
	var active bool
	err := s.db.QueryRowContext(ctx,
		`SELECT active FROM team_keys WHERE id = $1`, uuid.UUID(keyID),
	).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check team key active: %w", err)
	}
	return active, nil
}

type keyRow interface {
	Scan(dest ...any) error
}

func scanKey(row keyRow) (*models.TeamKey, error) {
	var key models.TeamKey
	var id, teamID uuid.UUID
	var role string
	var rotatedAt sql.NullTime
	if err := row.Scan(&id, &teamID, &role, &key.KeyHash, &key.Active, &key.CreatedAt, &rotatedAt); err != nil {
		return nil, err
	}
	key.ID = domain.KeyID(id)
	key.TeamID = domain.TeamID(teamID)
	key.Role = domain.Role(role)
	if rotatedAt.Valid {
		key.RotatedAt = &rotatedAt.Time
	}
	return &key, nil
}
