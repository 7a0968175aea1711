// Package metrics implements the Metrics port on a Prometheus registry.
package metrics

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "protanno"

// Registry collects the counters of one process.
type Registry struct {
	reg *prometheus.Registry

	requests    *prometheus.CounterVec
	identifiers *prometheus.CounterVec
	failed      *prometheus.CounterVec
	outages     *prometheus.CounterVec
	lookups     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

var _ ports.Metrics = (*Registry)(nil)

// New creates a Registry with every collector registered.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_calls_total",
			Help:      "Fetch calls per annotation source.",
		}, []string{"source"}),
		identifiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_fetched_total",
			Help:      "Identifiers sent to each annotation source.",
		}, []string{"source"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_failed_total",
			Help:      "Identifiers an annotation source could not resolve.",
		}, []string{"source"}),
		outages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_outages_total",
			Help:      "Fetch calls where every chunk failed.",
		}, []string{"source"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by outcome.",
		}, []string{"hit"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one fetch call per source.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"source"}),
	}
	r.reg.MustRegister(r.requests, r.identifiers, r.failed, r.outages, r.lookups, r.duration)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveFetch records one source call.
func (r *Registry) ObserveFetch(source domain.Source, identifiers, failed int, elapsed time.Duration) {
	label := source.String()
	r.requests.WithLabelValues(label).Inc()
	r.identifiers.WithLabelValues(label).Add(float64(identifiers))
	r.failed.WithLabelValues(label).Add(float64(failed))
	r.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// ObserveOutage records a source that failed completely.
func (r *Registry) ObserveOutage(source domain.Source) {
	r.outages.WithLabelValues(source.String()).Inc()
}

// ObserveCacheLookup records a cache hit or miss.
func (r *Registry) ObserveCacheLookup(hit bool) {
	r.lookups.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

// Flush writes the registry to path in text exposition format.
func (r *Registry) Flush(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "path", path)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "path", path)
	}
	return nil
}
