// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	RateLimitWait    *prometheus.HistogramVec

	// Discovery metrics
	TokensDiscovered *prometheus.CounterVec
	DiscoveryErrors  *prometheus.CounterVec

	// Enrichment metrics
	TokensSkipped  *prometheus.CounterVec
	TokensDegraded *prometheus.CounterVec
	TokensScored   *prometheus.CounterVec

	// Ranking metrics
	OpportunitiesQualified prometheus.Counter
	OpportunitiesPersisted prometheus.Counter
	OpportunityScore       prometheus.Histogram

	// Hunt metrics
	HuntRunsTotal *prometheus.CounterVec
	HuntDuration  prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulHunt prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "memecoin_hunter"
	}

	return &Metrics{
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of upstream API requests by source and outcome",
		}, []string{"source", "outcome"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "Upstream API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		RateLimitWait: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the per-source rate limit floor",
			Buckets:   []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"source"}),

		TokensDiscovered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "tokens_discovered_total",
			Help:      "Total number of eligible tokens discovered by chain",
		}, []string{"chain"}),
		DiscoveryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "errors_total",
			Help:      "Total number of failed discovery calls by chain",
		}, []string{"chain"}),

		TokensSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "tokens_skipped_total",
			Help:      "Total number of tokens skipped due to enrichment errors",
		}, []string{"chain", "error_type"}),
		TokensDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "tokens_degraded_total",
			Help:      "Total number of tokens scored without one provider's contribution",
		}, []string{"chain", "provider"}),
		TokensScored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "tokens_scored_total",
			Help:      "Total number of tokens scored by potential type",
		}, []string{"potential_type"}),

		OpportunitiesQualified: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "opportunities_qualified_total",
			Help:      "Total number of opportunities at or above the score threshold",
		}),
		OpportunitiesPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "opportunities_persisted_total",
			Help:      "Total number of opportunities written to the store",
		}),
		OpportunityScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "opportunity_score",
			Help:      "Distribution of overall opportunity scores",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		HuntRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hunt",
			Name:      "runs_total",
			Help:      "Total number of hunt passes by status",
		}, []string{"status"}),
		HuntDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "hunt",
			Name:      "duration_seconds",
			Help:      "Hunt pass duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulHunt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_hunt_timestamp",
			Help:      "Unix timestamp of last successful hunt pass",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordUpstreamRequest records one upstream request outcome and latency.
func RecordUpstreamRequest(source, outcome string, seconds float64) {
	DefaultMetrics.UpstreamRequests.WithLabelValues(source, outcome).Inc()
	DefaultMetrics.UpstreamLatency.WithLabelValues(source).Observe(seconds)
}

// RecordRateLimitWait records time spent waiting on a source's rate limiter.
func RecordRateLimitWait(source string, seconds float64) {
	DefaultMetrics.RateLimitWait.WithLabelValues(source).Observe(seconds)
}

// RecordTokensDiscovered adds eligible tokens discovered on a chain.
func RecordTokensDiscovered(chain string, n int) {
	DefaultMetrics.TokensDiscovered.WithLabelValues(chain).Add(float64(n))
}

// RecordDiscoveryError records a failed discovery call.
func RecordDiscoveryError(chain string) {
	DefaultMetrics.DiscoveryErrors.WithLabelValues(chain).Inc()
}

// RecordTokenSkipped records a token dropped from a pass.
func RecordTokenSkipped(chain, errorType string) {
	DefaultMetrics.TokensSkipped.WithLabelValues(chain, errorType).Inc()
}

// RecordTokenDegraded records a token scored without one provider's data.
func RecordTokenDegraded(chain, provider string) {
	DefaultMetrics.TokensDegraded.WithLabelValues(chain, provider).Inc()
}

// RecordTokenScored records a scored token.
func RecordTokenScored(potentialType string, score float64) {
	DefaultMetrics.TokensScored.WithLabelValues(potentialType).Inc()
	DefaultMetrics.OpportunityScore.Observe(score)
}

// RecordRanking records qualified and persisted counts of one pass.
func RecordRanking(qualified, persisted int) {
	DefaultMetrics.OpportunitiesQualified.Add(float64(qualified))
	DefaultMetrics.OpportunitiesPersisted.Add(float64(persisted))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHuntRun records a hunt pass.
func RecordHuntRun(status string, durationSeconds float64) {
	DefaultMetrics.HuntRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.HuntDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulHunt.Set(float64(time.Now().Unix()))
	}
}
