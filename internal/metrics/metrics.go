// Package metrics exposes Prometheus instrumentation for the order engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters and histograms the services record into.
type Metrics struct {
	ordersCreated     prometheus.Counter
	ordersRejected    *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	claimConflicts    prometheus.Counter
	orderTotal        prometheus.Histogram
}

// New registers the metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on a caller-supplied registerer.
// Tests pass a fresh registry to avoid duplicate-registration panics.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fronteira_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fronteira_orders_rejected_total",
			Help: "Total number of order creations rejected, by error code",
		}, []string{"code"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fronteira_status_transitions_total",
			Help: "Total number of applied status transitions, by entity and status",
		}, []string{"entity", "status"}),
		claimConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fronteira_delivery_claim_conflicts_total",
			Help: "Total number of delivery claims lost to another driver",
		}),
		orderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fronteira_order_total_base_currency",
			Help:    "Order totals in base currency",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}

	registerer.MustRegister(
		m.ordersCreated, m.ordersRejected, m.statusTransitions,
		m.claimConflicts, m.orderTotal,
	)

	return m
}

// OrderCreated records a successful order and its base-currency total.
func (m *Metrics) OrderCreated(total float64) {
	m.ordersCreated.Inc()
	m.orderTotal.Observe(total)
}

// OrderRejected records a rejected order creation by error code.
func (m *Metrics) OrderRejected(code string) {
	m.ordersRejected.WithLabelValues(code).Inc()
}

// StatusTransition records an applied transition on an order or delivery.
func (m *Metrics) StatusTransition(entity, status string) {
	m.statusTransitions.WithLabelValues(entity, status).Inc()
}

// ClaimConflict records a claim attempt that lost the race.
func (m *Metrics) ClaimConflict() {
	m.claimConflicts.Inc()
}
