package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FailuresRecorded  prometheus.Counter
	LockoutsTriggered prometheus.Counter
	CleanupRuns       *prometheus.CounterVec
	CleanupDuration   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		FailuresRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rinkside_login_failures_recorded_total",
			Help: "Total number of failed login attempts recorded",
		}),
		LockoutsTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rinkside_lockouts_triggered_total",
			Help: "Total number of times a (team, ip) key reached the attempt ceiling",
		}),
		CleanupRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rinkside_lockout_cleanup_runs_total",
			Help: "Total number of lockout cleanup runs by outcome",
		}, []string{"outcome"}),
		CleanupDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rinkside_lockout_cleanup_duration_seconds",
			Help:    "Duration of lockout cleanup runs",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}
