package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BatchesScored counts completed batch scoring runs
	BatchesScored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netposture",
			Name:      "batches_scored_total",
			Help:      "Total number of completed batch scoring runs",
		},
	)

	// ProfilesScored counts scored profiles by resulting label
	ProfilesScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netposture",
			Name:      "profiles_scored_total",
			Help:      "Total number of profiles scored, by resulting label",
		},
		[]string{"label"},
	)

	// ScoringDefects counts profiles whose score was nulled by an internal fault
	ScoringDefects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netposture",
			Name:      "scoring_defects_total",
			Help:      "Total number of profiles excluded from scoring due to internal faults",
		},
	)

	// EnrichmentHits counts enrichment lookups served from the fresh cache
	EnrichmentHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netposture",
			Name:      "enrichment_cache_hits_total",
			Help:      "Total number of enrichment lookups served from cache",
		},
	)

	// EnrichmentMisses counts enrichment lookups that went to the provider
	EnrichmentMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netposture",
			Name:      "enrichment_cache_misses_total",
			Help:      "Total number of enrichment lookups that required a provider fetch",
		},
	)

	// EnrichmentFallbacks counts provider failures degraded to local-only data
	EnrichmentFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netposture",
			Name:      "enrichment_fallbacks_total",
			Help:      "Total number of provider failures degraded to local-only data",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(BatchesScored)
		prometheus.DefaultRegisterer.Register(ProfilesScored)
		prometheus.DefaultRegisterer.Register(ScoringDefects)
		prometheus.DefaultRegisterer.Register(EnrichmentHits)
		prometheus.DefaultRegisterer.Register(EnrichmentMisses)
		prometheus.DefaultRegisterer.Register(EnrichmentFallbacks)
	})
}
