// Package metrics exposes Prometheus instrumentation for simulation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector holds the per-run collectors. All collectors are registered
// against the Registerer passed to New, so tests can use isolated registries.
type SimCollector struct {
	registry prometheus.Registerer
	gatherer prometheus.Gatherer

	TickDuration  prometheus.Histogram
	TicksTotal    prometheus.Counter
	AgentsStepped prometheus.Counter
	AgentsLive    prometheus.Gauge
}

// New creates and registers the simulation collectors. Passing nil uses a
// fresh registry.
func New(reg *prometheus.Registry) *SimCollector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &SimCollector{
		registry: reg,
		gatherer: reg,
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swarm",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of each scheduler tick.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 2, 16),
		}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "ticks_total",
			Help:      "Completed scheduler ticks.",
		}),
		AgentsStepped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "agents_stepped_total",
			Help:      "Agents whose rule ran, summed over ticks.",
		}),
		AgentsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swarm",
			Name:      "agents_live",
			Help:      "Agents alive after the most recent tick.",
		}),
	}

	reg.MustRegister(c.TickDuration, c.TicksTotal, c.AgentsStepped, c.AgentsLive)
	return c
}

// Observer returns a callback suitable for engine.Scheduler.Observe.
// The live count is reported by the caller since the collector has no
// reference to the model.
func (c *SimCollector) Observer(live func() int) func(tick uint64, elapsed time.Duration, processed int) {
	return func(tick uint64, elapsed time.Duration, processed int) {
		c.TickDuration.Observe(elapsed.Seconds())
		c.TicksTotal.Inc()
		c.AgentsStepped.Add(float64(processed))
		if live != nil {
			c.AgentsLive.Set(float64(live()))
		}
	}
}

// Handler returns an HTTP handler serving the collector's registry.
func (c *SimCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
