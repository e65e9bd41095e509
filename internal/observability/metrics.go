package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counter: total output-chain rebuilds, by outcome.
	ChainRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caster_chain_rebuilds_total",
			Help: "The total number of output chain rebuild attempts",
		},
		[]string{"outcome"}, // "success", "refused", "build_failed"
	)

	// Gauge: chains currently alive (should never exceed 1 per session).
	ActiveChains = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "caster_active_chains_current",
			Help: "The current number of live output chain instances",
		},
	)

	// Counter: cast-proxy gate admissions, by transition.
	GateAdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caster_gate_admissions_total",
			Help: "The total number of cast-proxy gate admission events",
		},
		[]string{"transition"}, // "first_admit", "blocked_completeness", "blocked_keyframe"
	)

	// Counter: SOAP actions sent to the renderer, by action and outcome.
	SoapActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caster_soap_actions_total",
			Help: "The total number of SOAP actions sent to the renderer",
		},
		[]string{"action", "outcome"},
	)

	// Histogram: SOAP action round-trip latency.
	SoapActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "caster_soap_action_duration_seconds",
			Help:    "The latency of SOAP action round-trips to the renderer",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
)
