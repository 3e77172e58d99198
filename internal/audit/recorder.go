package audit

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	auditmetrics "rinkside/internal/audit/metrics"
	"rinkside/internal/platform/middleware"
)

// Recorder stamps and appends audit events.
//
// Record returns an error, but callers on primary code paths are expected to
// discard it deliberately: a failed audit write must never abort a login or a
// rotation. The failure is still logged here and counted in metrics so the
// degraded observability is visible, not silent.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *auditmetrics.Metrics
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func WithMetrics(m *auditmetrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record assigns the event a ULID and timestamp and appends it. The request
// id is picked up from the context so every event written while serving an
// HTTP request can be correlated with the request log line.
func (r *Recorder) Record(ctx context.Context, event Event) error {
	now := time.Now()
	event.ID = ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	event.CreatedAt = now
	if event.RequestID == "" {
		event.RequestID = middleware.GetRequestID(ctx)
	}

	if err := r.store.Append(ctx, event); err != nil {
		if r.metrics != nil {
			r.metrics.WriteFailures.Inc()
		}
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to write audit event",
				"error", err,
				"kind", string(event.Kind),
				"team_id", event.TeamID.String(),
			)
		}
		return err
	}
	if r.metrics != nil {
		r.metrics.EventsRecorded.Inc()
	}
	if r.logger != nil {
		r.logger.InfoContext(ctx, string(event.Kind),
			"log_type", "audit",
			"team_id", event.TeamID.String(),
			"role", string(event.Role),
			"ip", event.IPFragment,
		)
	}
	return nil
}
