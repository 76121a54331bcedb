// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// ProviderCalls counts adapter attempts. outcome is one of success,
	// empty, failure or skipped_balance.
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_provider_calls_total",
			Help: "Provider adapter calls by outcome",
		},
		[]string{"provider", "capability", "outcome"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrichment_provider_call_duration_seconds",
			Help:    "Duration of provider adapter calls, rate limit wait included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "capability"},
	)

	CreditsCharged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_credits_charged_total",
			Help: "Credits charged to clients per provider",
		},
		[]string{"provider", "capability"},
	)

	WaterfallProvidersUsed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrichment_waterfall_providers_used",
			Help:    "Number of providers that contributed to one waterfall",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
		},
		[]string{"capability"},
	)

	WaterfallEarlyStops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_waterfall_early_stops_total",
			Help: "Waterfalls that stopped on reaching the quality threshold",
		},
		[]string{"capability"},
	)

	RateLimiterQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "enrichment_rate_limiter_queue_depth",
			Help: "Callers waiting on a provider rate limiter",
		},
		[]string{"provider"},
	)
)
