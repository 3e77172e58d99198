package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rinkside/pkg/domain"
)

func TestPostgresRecordFailure_SingleUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	teamID := domain.NewTeamID()
	now := time.Now()
	cutoff := now.Add(-30 * time.Minute)

	mock.ExpectQuery("INSERT INTO login_attempts").
		WithArgs(uuid.UUID(teamID), "203.0.113.0", now, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"team_id", "ip_fragment", "attempts", "window_start"}).
			AddRow(uuid.UUID(teamID), "203.0.113.0", 4, now.Add(-5*time.Minute)))

	w, err := NewPostgres(db).RecordFailure(context.Background(), teamID, "203.0.113.0", now, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 4, w.Attempts)
	assert.Equal(t, teamID, w.TeamID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet_MissingRowIsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	teamID := domain.NewTeamID()
	mock.ExpectQuery("SELECT team_id, ip_fragment, attempts, window_start").
		WithArgs(uuid.UUID(teamID), "203.0.113.0").
		WillReturnError(sql.ErrNoRows)

	w, err := NewPostgres(db).Get(context.Background(), teamID, "203.0.113.0")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestPostgresClearAttempts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	teamID := domain.NewTeamID()
	mock.ExpectExec("UPDATE login_attempts SET attempts = 0").
		WithArgs(uuid.UUID(teamID), "203.0.113.0").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgres(db).ClearAttempts(context.Background(), teamID, "203.0.113.0"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Now().Add(-time.Hour)
	mock.ExpectExec("DELETE FROM login_attempts").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	deleted, err := NewPostgres(db).DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 12, deleted)
}
