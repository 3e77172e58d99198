// Package retention deletes teams that went quiet. Inactive tenants keep
// credentials, audit rows and roster data alive for no one; the sweep
// enforces the configured idle cutoff.
package retention

import (
	"context"
	"log/slog"
	"time"
)

type TeamSweeper interface {
	SweepInactive(ctx context.Context, cutoff time.Time) (int, error)
}

type Worker struct {
	sweeper  TeamSweeper
	logger   *slog.Logger
	interval time.Duration
	cutoff   time.Duration
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithCutoff(cutoff time.Duration) Option {
	return func(w *Worker) {
		if cutoff > 0 {
			w.cutoff = cutoff
		}
	}
}

func New(sweeper TeamSweeper, opts ...Option) *Worker {
	w := &Worker{
		sweeper:  sweeper,
		logger:   slog.Default(),
		interval: 24 * time.Hour,
		cutoff:   365 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the retention loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.Error("team_retention_failed", "error", err)
				continue
			}
			w.logger.Info("team_retention_completed", "teams_deleted", deleted)

		case <-ctx.Done():
			w.logger.Info("team retention worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single sweep against the configured cutoff.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	return w.sweeper.SweepInactive(ctx, time.Now().Add(-w.cutoff))
}
