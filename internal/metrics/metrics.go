// Package metrics exposes Prometheus instrumentation for the simulation
// core. Metrics are registered via promauto on the default registry; a
// service layer embedding the engine can serve them with promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovesTotal counts committed MOVE operations.
	MovesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hexsim_moves_total",
			Help: "Total number of committed move operations",
		},
	)

	// EngagementsTotal counts committed ENGAGE operations by outcome
	// ("damaged" or "destroyed").
	EngagementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexsim_engagements_total",
			Help: "Total number of committed engagements by outcome",
		},
		[]string{"outcome"},
	)

	// UnitsDestroyedTotal counts units removed from the field by combat.
	UnitsDestroyedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hexsim_units_destroyed_total",
			Help: "Total number of units destroyed in engagements",
		},
	)

	// OpFailuresTotal counts rejected operations by typed error code
	// (UNIT_NOT_FOUND, INSUFFICIENT_ENERGY, CONTENDED, ...).
	OpFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexsim_op_failures_total",
			Help: "Total number of rejected operations by error code",
		},
		[]string{"code"},
	)

	// LockWaitSeconds measures time spent acquiring per-unit locks.
	// The upper buckets sit around the default acquisition timeout.
	LockWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hexsim_lock_wait_seconds",
			Help:    "Time spent acquiring per-unit locks",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2, 5},
		},
	)

	// LogAppendSeconds measures action log append latency.
	LogAppendSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hexsim_log_append_seconds",
			Help:    "Action log append latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)
)
