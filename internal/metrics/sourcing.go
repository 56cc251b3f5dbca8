package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider outcomes.
const (
	ProviderOK                 = "ok"
	ProviderError              = "error"
	ProviderTimeout            = "timeout"
	ProviderThrottled          = "throttled"
	ProviderSkippedCredentials = "skipped_credentials"
	ProviderSkippedCooldown    = "skipped_cooldown"
	ProviderSkippedPacing      = "skipped_pacing"
)

// Rerank outcomes.
const (
	RerankApplied     = "applied"
	RerankFailed      = "failed"
	RerankSkipped     = "skipped"
	RerankCircuitOpen = "circuit_open"
)

// Recommendation sourcing modes.
const (
	ModeLocal = "local"
	ModeMixed = "mixed"
	ModeEmpty = "empty"
)

// Sourcing and ranking Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "External job provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "External job provider call duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"provider"},
	)

	ProviderPostingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_postings_total",
			Help:      "Postings returned by external job providers",
		},
		[]string{"provider"},
	)

	RerankTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rerank_total",
			Help:      "Language-model rerank attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests served by sourcing mode",
		},
		[]string{"mode"},
	)

	RecommendationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "End-to-end recommendation latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
	)
)

var sourcingOnce sync.Once

// RegisterSourcingMetrics registers provider, rerank and recommendation metrics. Safe to call more than once.
func RegisterSourcingMetrics() {
	sourcingOnce.Do(func() {
		prometheus.MustRegister(
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderPostingsTotal,
			RerankTotal,
			RecommendationsTotal,
			RecommendationDuration,
		)
	})
}
