// Package prom exports the policy.Metrics signals as Prometheus series.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cachekit/polycache/policy"
)

// Metrics mirrors the four policy.Metrics hooks onto Prometheus
// collectors: hit/miss counters for Get outcomes, one eviction counter
// per reason, and a gauge tracking resident entries. Pass it to a policy
// constructor via its WithMetrics option.
//
// The per-reason counters are resolved once at construction, so Evict
// never touches the label index on the hot path and every reason series
// exists (at zero) from startup.
type Metrics struct {
	hit      prometheus.Counter
	miss     prometheus.Counter
	evicted  map[policy.EvictReason]prometheus.Counter
	resident prometheus.Gauge
}

// New builds and registers the collectors.
//   - reg: target registry; nil means prometheus.DefaultRegisterer
//   - namespace, subsystem: series name prefix, e.g. "polycache"/"bench"
//   - constLabels: static labels stamped on every series (may be nil)
func New(reg prometheus.Registerer, namespace, subsystem string, constLabels prometheus.Labels) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}

	evictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "evictions_total",
		Help:        "Entries removed from the cache, by reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})

	m := &Metrics{
		hit:  counter("hits_total", "Get calls answered by a resident entry."),
		miss: counter("misses_total", "Get calls that found no entry."),
		evicted: map[policy.EvictReason]prometheus.Counter{
			policy.EvictPolicy:   evictions.WithLabelValues("policy"),
			policy.EvictGhost:    evictions.WithLabelValues("ghost"),
			policy.EvictExplicit: evictions.WithLabelValues("explicit"),
		},
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "entries",
			Help:        "Value-carrying entries currently resident.",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(m.hit, m.miss, evictions, m.resident)
	return m
}

// Hit records a Get served from the cache.
func (m *Metrics) Hit() { m.hit.Inc() }

// Miss records a Get that found nothing.
func (m *Metrics) Miss() { m.miss.Inc() }

// Evict counts one removed entry under its reason label. A reason this
// package does not know folds into "policy".
func (m *Metrics) Evict(r policy.EvictReason) {
	c, ok := m.evicted[r]
	if !ok {
		c = m.evicted[policy.EvictPolicy]
	}
	c.Inc()
}

// Size tracks the resident entry count reported by the cache.
func (m *Metrics) Size(entries int) { m.resident.Set(float64(entries)) }

var _ policy.Metrics = (*Metrics)(nil)
