package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PairsCreated prometheus.Counter
	KeysRotated  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		PairsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rinkside_key_pairs_created_total",
			Help: "Total number of coach/player key pairs created",
		}),
		KeysRotated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rinkside_keys_rotated_total",
			Help: "Total number of key rotations by role",
		}, []string{"role"}),
	}
}
