// Package metrics provides Prometheus metrics for the kicktip engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Custom registry to avoid the default Go runtime collectors.
var registry = prometheus.NewRegistry()

var (
	// Batch evaluation metrics
	fixturesEvaluated = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "kicktip",
		Subsystem: "engine",
		Name:      "fixtures_evaluated_total",
		Help:      "Total number of fixtures successfully evaluated",
	})

	fixturesSkipped = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "kicktip",
		Subsystem: "engine",
		Name:      "fixtures_skipped_total",
		Help:      "Total number of fixtures dropped from a batch due to errors",
	})

	// Cache metrics, labelled by the tier that satisfied the read
	cacheReads = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kicktip",
			Subsystem: "cache",
			Name:      "reads_total",
			Help:      "Total cache reads by serving tier (memory, disk, store, fresh)",
		},
		[]string{"tier"},
	)

	cacheInvalidations = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "kicktip",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Total number of explicit cache invalidations",
	})

	// Feature resolution metrics, labelled by the tier that supplied a field
	featureResolutions = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kicktip",
			Subsystem: "features",
			Name:      "resolutions_total",
			Help:      "Total feature field resolutions by fallback tier",
		},
		[]string{"tier"},
	)
)

// RecordFixtureEvaluated increments the evaluated fixtures counter.
func RecordFixtureEvaluated() {
	fixturesEvaluated.Inc()
}

// RecordFixtureSkipped increments the skipped fixtures counter.
func RecordFixtureSkipped() {
	fixturesSkipped.Inc()
}

// RecordCacheRead records a cache read served by the given tier.
func RecordCacheRead(tier string) {
	cacheReads.WithLabelValues(tier).Inc()
}

// RecordCacheInvalidation increments the invalidation counter.
func RecordCacheInvalidation() {
	cacheInvalidations.Inc()
}

// RecordFeatureResolution records a feature field resolved at the given tier.
func RecordFeatureResolution(tier string) {
	featureResolutions.WithLabelValues(tier).Inc()
}

// Registry returns the Prometheus registry used by the engine metrics.
func Registry() *prometheus.Registry {
	return registry
}
