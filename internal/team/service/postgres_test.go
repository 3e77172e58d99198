package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	teamstore "rinkside/internal/team/store"
	keyservice "rinkside/internal/teamkey/service"
	keystore "rinkside/internal/teamkey/store"
	dErrors "rinkside/pkg/domain-errors"
	"rinkside/pkg/platform/tx"
)

func newPostgresBackedService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	keys := keyservice.New(keystore.NewPostgres(db))
	svc := New(teamstore.NewPostgres(db), keys, WithStoreTx(tx.NewPostgres(db)))
	return svc, mock
}

func TestCreateCommitsTeamAndKeysTogether(t *testing.T) {
	svc, mock := newPostgresBackedService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO teams").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO team_keys").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO team_keys").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Create(context.Background(), CreateCommand{Name: "Falcons"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.CoachKey)
	assert.NotEmpty(t, res.PlayerKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateKeyInsertFailureRollsBackTeamRow(t *testing.T) {
	svc, mock := newPostgresBackedService(t)

	// The team row lands first, then the first credential insert fails. The
	// only statement allowed afterwards is the rollback: the team row must not
	// survive, and no compensating delete runs on its own connection where it
	// could fail and strand a keyless tenant squatting the name.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO teams").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO team_keys").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), CreateCommand{Name: "Falcons"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
