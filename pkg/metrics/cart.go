package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutations and backend round trips. A zero value is
// safe to use and records nothing.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	items     *prometheus.GaugeVec
	remote    *prometheus.HistogramVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation, mode and outcome.",
	}, []string{"op", "mode", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_mutation_duration_seconds",
		Help:    "Duration of cart mutations in seconds, including remote round trips.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "mode"})
	items := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cart_items",
		Help: "Current number of units in the cart.",
	}, []string{"mode"})
	remote := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_remote_request_duration_seconds",
		Help:    "Duration of storefront backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	reg.MustRegister(mutations, duration, items, remote)
	return &CartMetrics{
		mutations: mutations,
		duration:  duration,
		items:     items,
		remote:    remote,
	}
}

// ObserveMutation counts one cart mutation and records its duration.
func (c *CartMetrics) ObserveMutation(op, mode, outcome string, elapsed time.Duration) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(mode), normalizeLabel(outcome)).Inc()
	c.duration.WithLabelValues(normalizeLabel(op), normalizeLabel(mode)).Observe(elapsed.Seconds())
}

// SetItemCount publishes the unit count for the active mode. The other mode is
// reset so only one series is non-zero.
func (c *CartMetrics) SetItemCount(mode string, count int) {
	if c == nil || c.items == nil {
		return
	}
	for _, m := range []string{"guest", "authenticated"} {
		if m != mode {
			c.items.WithLabelValues(m).Set(0)
		}
	}
	c.items.WithLabelValues(normalizeLabel(mode)).Set(float64(count))
}

// ObserveRemote records a backend request; it satisfies cartapi.Observer.
func (c *CartMetrics) ObserveRemote(operation, outcome string, elapsed time.Duration) {
	if c == nil || c.remote == nil {
		return
	}
	c.remote.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
