// Package metrics exposes optimization run metrics to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vsinha/prodplan/pkg/domain/entities"
)

const namespace = "prodplan"

// Run outcomes, used as the outcome label
const (
	OutcomePlanned  = "planned"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder records the outcome and size of optimization runs
type Recorder struct {
	optimizations *prometheus.CounterVec
	duration      prometheus.Histogram
	units         prometheus.Gauge
	value         prometheus.Gauge
	gap           prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		optimizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizations_total",
			Help:      "Optimization runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimization_duration_seconds",
			Help:      "Wall time of optimization runs, including catalog reads.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		units: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "planned_units",
			Help:      "Total units in the last computed plan.",
		}),
		value: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_value",
			Help:      "Grand total of the last computed plan.",
		}),
		gap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plan_gap_ratio",
			Help:      "Relative gap between the last plan and its LP relaxation bound.",
		}),
	}

	for _, c := range []prometheus.Collector{r.optimizations, r.duration, r.units, r.value, r.gap} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	for _, outcome := range []string{OutcomePlanned, OutcomeEmpty, OutcomeRejected, OutcomeError} {
		r.optimizations.WithLabelValues(outcome)
	}
	return r, nil
}

// ObservePlan records a run that produced a plan, possibly empty
func (r *Recorder) ObservePlan(elapsed time.Duration, result *entities.OptimizationResult) {
	outcome := OutcomePlanned
	if result.IsEmpty() {
		outcome = OutcomeEmpty
	}
	r.optimizations.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
	r.units.Set(float64(result.TotalUnits))
	r.value.Set(result.GrandTotal.InexactFloat64())
	r.gap.Set(result.Gap().InexactFloat64())
}

// ObserveFailure records a run that ended without a plan
func (r *Recorder) ObserveFailure(elapsed time.Duration, outcome string) {
	r.optimizations.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// Optimizations returns the run counter for outcome
func (r *Recorder) Optimizations(outcome string) prometheus.Counter {
	return r.optimizations.WithLabelValues(outcome)
}

// WriteTextfile writes every metric gathered by g in the text exposition
// format, for node_exporter's textfile collector
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
