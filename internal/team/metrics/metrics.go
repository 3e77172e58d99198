package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TeamsCreated prometheus.Counter
	TeamsDeleted *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		TeamsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rinkside_teams_created_total",
			Help: "Total number of teams created",
		}),
		TeamsDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rinkside_teams_deleted_total",
			Help: "Total number of teams deleted by reason",
		}, []string{"reason"}),
	}
}
