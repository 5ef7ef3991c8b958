package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RuleOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_rule_operations_total",
			Help: "Total number of rule store operations (count)",
		},
		[]string{"operation", "status"},
	)

	ImportRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_import_rows_total",
			Help: "Total number of bulk import rows by outcome (count)",
		},
		[]string{"outcome"},
	)

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_submissions_total",
			Help: "Total number of submission workflow transitions (count)",
		},
		[]string{"status"},
	)

	LookupCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_lookup_cache_total",
			Help: "Lookup cache hits and misses (count)",
		},
		[]string{"lookup", "result"},
	)

	RuleQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compliance_rule_query_duration_ms",
			Help:    "Rule query latency in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"query"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Requests seen by the rate limiter (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Failed requests through a circuit breaker (count)",
		},
		[]string{"name"},
	)
)

var registered = false

func RegisterComplianceMetrics() {
	if registered {
		return
	}
	registered = true

	prometheus.MustRegister(
		RuleOperationsTotal,
		ImportRowsTotal,
		SubmissionsTotal,
		LookupCacheTotal,
		RuleQueryDuration,
		RateLimitRequestsTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}
