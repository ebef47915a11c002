package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_flow_sessions_started_total",
			Help: "Number of donation sessions created",
		},
	)

	OutcomesReported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donation_flow_outcomes_total",
			Help: "Terminal payment outcomes by kind",
		},
		[]string{"outcome"},
	)

	InactivityResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_flow_inactivity_resets_total",
			Help: "Sessions reset by the inactivity guard",
		},
	)

	ClassificationMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_flow_gateway_classification_misses_total",
			Help: "Gateway navigation events that matched no known status",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SessionsStarted, OutcomesReported, InactivityResets, ClassificationMisses)
	})
}
