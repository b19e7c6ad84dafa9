package waitlist

import (
	"errors"

	"github.com/akeren/trustlink-waitlist/pkg/circuitbreaker"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess   = "success"
	outcomeInvalid   = "invalid"
	outcomeDuplicate = "duplicate"
	outcomeNotFound  = "not_found"
	outcomeError     = "error"
)

// Metrics holds the waitlist counters. A nil *Metrics records nothing.
type Metrics struct {
	signups       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	exports       *prometheus.CounterVec
	exportedRows  prometheus.Counter
	storeCircuit  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		signups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_signups_total",
				Help: "Signup attempts by actor type and outcome.",
			},
			[]string{"actor_type", "outcome"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_notifications_total",
				Help: "Notify mutations by outcome.",
			},
			[]string{"outcome"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_exports_total",
				Help: "CSV exports by outcome.",
			},
			[]string{"outcome"},
		),
		exportedRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "waitlist_exported_rows_total",
				Help: "Rows written across all CSV exports.",
			},
		),
		storeCircuit: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "waitlist_store_circuit_state",
				Help: "Store circuit breaker state: 0 closed, 1 open, 2 half-open.",
			},
		),
	}

	if reg != nil {
		m.signups = register(reg, m.signups)
		m.notifications = register(reg, m.notifications)
		m.exports = register(reg, m.exports)
		m.exportedRows = register(reg, m.exportedRows)
		m.storeCircuit = register(reg, m.storeCircuit)
	}

	return m
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) observeSignup(actorType, outcome string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(actorType, outcome).Inc()
}

func (m *Metrics) observeNotify(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeExport(outcome string, rows int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(outcome).Inc()
	m.exportedRows.Add(float64(rows))
}

func (m *Metrics) setStoreCircuitState(state circuitbreaker.CircuitState) {
	if m == nil {
		return
	}
	m.storeCircuit.Set(float64(state))
}
