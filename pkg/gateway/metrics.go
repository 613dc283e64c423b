package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks gateway traffic.
type Metrics struct {
	Issued    *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Applied   *prometheus.CounterVec
	InFlight  prometheus.Gauge
	RoundTrip *prometheus.HistogramVec
}

// NewMetrics creates the gateway collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Issued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sheetsync",
				Subsystem: "gateway",
				Name:      "commands_issued_total",
				Help:      "Commands sent to the backend.",
			},
			[]string{"command"},
		),
		Failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sheetsync",
				Subsystem: "gateway",
				Name:      "commands_failed_total",
				Help:      "Commands whose round-trip or patch application failed, by error code.",
			},
			[]string{"command", "code"},
		),
		Applied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sheetsync",
				Subsystem: "gateway",
				Name:      "results_applied_total",
				Help:      "Results applied to the state store, by kind.",
			},
			[]string{"kind"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sheetsync",
				Subsystem: "gateway",
				Name:      "calls_in_flight",
				Help:      "Issued calls not yet applied.",
			},
		),
		RoundTrip: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sheetsync",
				Subsystem: "gateway",
				Name:      "round_trip_seconds",
				Help:      "Backend round-trip latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Issued, m.Failed, m.Applied, m.InFlight, m.RoundTrip)
	}
	return m
}
