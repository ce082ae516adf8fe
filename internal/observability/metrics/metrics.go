// Package metrics exposes the application's prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the checkout and pricing instruments.
type Metrics struct {
	checkoutOps      *prometheus.CounterVec
	checkoutDuration *prometheus.HistogramVec
	invoicesWritten  prometheus.Counter
	pricingSaves     prometheus.Counter
}

// New registers the application instruments on the default registry.
func New() (*Metrics, error) {
	m := &Metrics{
		checkoutOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lodgia_checkout_operations_total",
			Help: "Checkout operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		checkoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lodgia_checkout_duration_seconds",
			Help:    "Checkout operation duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		invoicesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lodgia_invoices_written_total",
			Help: "Paid invoice rows written.",
		}),
		pricingSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lodgia_pricing_saves_total",
			Help: "Tariff settings saves.",
		}),
	}

	for _, collector := range []prometheus.Collector{
		m.checkoutOps, m.checkoutDuration, m.invoicesWritten, m.pricingSaves,
	} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

// ObserveCheckout records one checkout operation.
func (m *Metrics) ObserveCheckout(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.checkoutOps.WithLabelValues(op, outcome).Inc()
	m.checkoutDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// IncInvoicesWritten counts a persisted paid invoice.
func (m *Metrics) IncInvoicesWritten() {
	if m == nil {
		return
	}
	m.invoicesWritten.Inc()
}

// IncPricingSaves counts a tariff settings save.
func (m *Metrics) IncPricingSaves() {
	if m == nil {
		return
	}
	m.pricingSaves.Inc()
}

// Module provides the prometheus instruments.
var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
