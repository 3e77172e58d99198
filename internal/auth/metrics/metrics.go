package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LoginAttempts *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rinkside_login_attempts_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Observe(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}
