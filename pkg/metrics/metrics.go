// Package metrics exposes Prometheus instrumentation for signals.
//
// An Instruments value owns the metric families; Instrument wraps any
// signal so that its element throughput, terminal events, and
// observation lifetimes are recorded under a caller-chosen name.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rivulet-dev/rivulet/pkg/signal"
)

// Config configures the metric families.
type Config struct {
	// Namespace is the metrics namespace (default: "rivulet").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for observation lifetime.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metric families.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the lifetime histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "rivulet",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Instruments holds the metric families for instrumented signals. All
// families are labelled by signal name.
type Instruments struct {
	elements            *prometheus.CounterVec
	failures            *prometheus.CounterVec
	completions         *prometheus.CounterVec
	activeObservations  *prometheus.GaugeVec
	observationLifetime *prometheus.HistogramVec
}

// New registers the metric families and returns the handle used to
// instrument signals.
func New(opts ...Option) *Instruments {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	return &Instruments{
		elements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "elements_total",
			Help:        "Total number of elements delivered by the signal",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "failures_total",
			Help:        "Total number of observations terminated by a failure",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "completions_total",
			Help:        "Total number of observations terminated by completion",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		activeObservations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_observations",
			Help:        "Number of live observations of the signal",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		observationLifetime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "observation_lifetime_seconds",
			Help:        "Time from observation start to terminal event or disposal",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"signal"}),
	}
}

// Instrument wraps the signal so every observation of the result is
// recorded under name: elements delivered, terminal kind, concurrent
// observation count, and observation lifetime. The wrapped signal's
// events pass through unchanged.
func Instrument[E any, F error](ins *Instruments, name string, s signal.Signal[E, F]) signal.Signal[E, F] {
	return signal.New(func(obs signal.Observer[E, F]) signal.Disposable {
		ins.activeObservations.WithLabelValues(name).Inc()
		start := time.Now()

		var ended atomic.Bool
		finish := func() {
			if ended.CompareAndSwap(false, true) {
				ins.activeObservations.WithLabelValues(name).Dec()
				ins.observationLifetime.WithLabelValues(name).Observe(time.Since(start).Seconds())
			}
		}

		sub := s.Observe(signal.NewObserver(
			func(e E) {
				ins.elements.WithLabelValues(name).Inc()
				obs.SendNext(e)
			},
			func(f F) {
				ins.failures.WithLabelValues(name).Inc()
				finish()
				obs.SendFailed(f)
			},
			func() {
				ins.completions.WithLabelValues(name).Inc()
				finish()
				obs.SendCompleted()
			},
		))
		return signal.NewDisposable(func() {
			finish()
			sub.Dispose()
		})
	})
}

// InstrumentSubject exposes a hot subject as an instrumented signal:
// every observation of the result is recorded under name exactly as
// with Instrument, while sends keep going through the subject itself.
func InstrumentSubject[E any, F error](ins *Instruments, name string, s *signal.Subject[E, F]) signal.Signal[E, F] {
	return Instrument(ins, name, s.Signal())
}
