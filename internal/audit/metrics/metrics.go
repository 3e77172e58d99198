package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsRecorded prometheus.Counter
	WriteFailures  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rinkside_audit_events_recorded_total",
			Help: "Total number of audit events written",
		}),
		WriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rinkside_audit_write_failures_total",
			Help: "Total number of audit events dropped because the store write failed",
		}),
	}
}
