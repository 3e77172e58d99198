// Package cleanup bounds lockout table growth. Windows are created per
// (team, truncated IP) and never deleted on the request path, so a periodic
// sweep removes the ones that expired long enough ago to be useless.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	lockoutmetrics "rinkside/internal/lockout/metrics"
)

type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type Worker struct {
	sweeper  Sweeper
	logger   *slog.Logger
	interval time.Duration
	metrics  *lockoutmetrics.Metrics
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

func WithMetrics(m *lockoutmetrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func New(sweeper Sweeper, opts ...Option) *Worker {
	w := &Worker{
		sweeper:  sweeper,
		logger:   slog.Default(),
		interval: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the sweep loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			deleted, err := w.RunOnce(ctx)
			duration := time.Since(start)

			if err != nil {
				w.logger.Error("lockout_cleanup_failed",
					"error", err,
					"duration_ms", duration.Milliseconds(),
				)
				if w.metrics != nil {
					w.metrics.CleanupRuns.WithLabelValues("error").Inc()
					w.metrics.CleanupDuration.Observe(duration.Seconds())
				}
				continue
			}

			w.logger.Info("lockout_cleanup_completed",
				"windows_deleted", deleted,
				"duration_ms", duration.Milliseconds(),
			)
			if w.metrics != nil {
				w.metrics.CleanupRuns.WithLabelValues("success").Inc()
				w.metrics.CleanupDuration.Observe(duration.Seconds())
			}

		case <-ctx.Done():
			w.logger.Info("lockout cleanup worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single sweep. Logging is handled by the caller (Start).
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	return w.sweeper.SweepExpired(ctx)
}
