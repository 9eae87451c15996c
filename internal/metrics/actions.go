package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instaapp_actions_total",
		Help: "User actions by outcome.",
	}, []string{"action", "outcome"})
)

// ObserveAction counts one user action, failed when err is not nil.
func ObserveAction(action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	actions.WithLabelValues(action, outcome).Inc()
}
