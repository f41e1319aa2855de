// Package metrics exports run counters as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/sortviz/internal/ir"
)

const namespace = "sortviz"

// Collector owns a registry with the engine metrics. One Collector may serve
// several controllers; each controller gets its own Observer.
type Collector struct {
	registry *prometheus.Registry

	steps    *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	dropped  *prometheus.CounterVec
	active   prometheus.Gauge
}

// NewCollector creates a collector on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Count of step events emitted by sorting drivers.",
			},
			[]string{"algorithm", "kind"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Count of finished runs by outcome.",
			},
			[]string{"algorithm", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of finished runs, including throttling and pauses.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"algorithm"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_events_total",
				Help:      "Count of step events coalesced away by a bounded observer queue.",
			},
			[]string{"algorithm"},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Number of runs currently executing.",
			},
		),
	}
	c.registry.MustRegister(c.steps, c.runs, c.duration, c.dropped, c.active)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteText writes every metric family in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Observer returns a run observer feeding this collector. Runs of one
// controller are sequential, so the observer keeps per-run state.
func (c *Collector) Observer() *Observer {
	return &Observer{c: c}
}

// Observer records the metrics of one controller's runs.
//
// Step counters advance by the running totals carried on each event rather
// than by event count, so events coalesced by a bounded queue are still
// counted. OnFinish settles any remainder from the run's final stats.
type Observer struct {
	c *Collector

	mu       sync.Mutex
	compares prometheus.Counter
	mutates  prometheus.Counter
	seen     ir.Stats
}

// OnStart resolves the step counters of the run's algorithm.
func (o *Observer) OnStart(info ir.RunInfo) {
	alg := info.Algorithm.String()
	o.mu.Lock()
	o.compares = o.c.steps.WithLabelValues(alg, ir.EventCompare.String())
	o.mutates = o.c.steps.WithLabelValues(alg, ir.EventMutate.String())
	o.seen = ir.Stats{}
	o.mu.Unlock()
	o.c.active.Inc()
}

// OnStep advances the step counters to the event's totals.
func (o *Observer) OnStep(e ir.StepEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advance(e.Comparisons, e.Swaps)
}

// OnFinish settles the step counters and records the outcome.
func (o *Observer) OnFinish(res ir.Result) {
	o.mu.Lock()
	if o.compares != nil {
		o.advance(res.Stats.Comparisons, res.Stats.Swaps)
	}
	o.mu.Unlock()

	alg := res.Algorithm.String()
	o.c.runs.WithLabelValues(alg, string(res.Outcome)).Inc()
	o.c.duration.WithLabelValues(alg).Observe(res.Stats.ElapsedSeconds())
	if res.Dropped > 0 {
		o.c.dropped.WithLabelValues(alg).Add(float64(res.Dropped))
	}
	o.c.active.Dec()
}

// advance must be called with o.mu held. Totals never decrease within a run.
func (o *Observer) advance(comparisons, swaps uint64) {
	if comparisons > o.seen.Comparisons {
		o.compares.Add(float64(comparisons - o.seen.Comparisons))
		o.seen.Comparisons = comparisons
	}
	if swaps > o.seen.Swaps {
		o.mutates.Add(float64(swaps - o.seen.Swaps))
		o.seen.Swaps = swaps
	}
}
