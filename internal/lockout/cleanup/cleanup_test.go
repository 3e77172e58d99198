package cleanup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSweeper struct {
	calls   int
	deleted int
	err     error
}

func (m *mockSweeper) SweepExpired(context.Context) (int, error) {
	m.calls++
	return m.deleted, m.err
}

func TestRunOnce(t *testing.T) {
	t.Run("reports deleted count", func(t *testing.T) {
		sweeper := &mockSweeper{deleted: 7}
		deleted, err := New(sweeper).RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, deleted)
		assert.Equal(t, 1, sweeper.calls)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		sweeper := &mockSweeper{err: errors.New("connection lost")}
		_, err := New(sweeper).RunOnce(context.Background())
		assert.Error(t, err)
	})
}

func TestStartStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(&mockSweeper{}).Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
