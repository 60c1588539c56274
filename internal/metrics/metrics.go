// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Sync run outcomes and durations per resource
// - Fanline API request latency, retries, and quota headroom
// - Credential resolution and fallback behavior
// - Circuit breaker state transitions
// - Database upsert performance
// - HTTP API endpoint latency and throughput

// Retry reasons recorded by the upstream transport.
const (
	RetryReasonRateLimited = "rate_limited"
	RetryReasonNetwork     = "network"
)

// Credential fallback reasons recorded by the resolver. These mirror the
// unusable credential statuses.
const (
	FallbackReasonExpired = "expired"
	FallbackReasonRevoked = "revoked"
)

var (
	// Sync Run Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "sync_runs_total",
			Help:      "Total number of sync runs by terminal status",
		},
		[]string{"resource", "status"}, // "completed", "completed_with_errors", "failed"
	)

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "upsync",
			Name:      "sync_run_duration_seconds",
			Help:      "Duration of sync runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Runs over many creators can take minutes
		},
		[]string{"resource"},
	)

	SyncRecordsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "sync_records_upserted_total",
			Help:      "Total number of records written during sync runs",
		},
		[]string{"resource"},
	)

	SyncCreatorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "sync_creator_failures_total",
			Help:      "Total number of creators skipped due to errors during sync runs",
		},
		[]string{"resource"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "upsync",
			Name:      "sync_last_success_timestamp",
			Help:      "Unix timestamp of the last fully successful sync run",
		},
		[]string{"resource"},
	)

	SyncLockContention = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "sync_lock_contention_total",
			Help:      "Total number of sync requests rejected because a run was already in progress",
		},
		[]string{"resource"},
	)

	// Fanline Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "fanline_requests_total",
			Help:      "Total number of Fanline API requests",
		},
		[]string{"resource", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "upsync",
			Name:      "fanline_request_duration_seconds",
			Help:      "Fanline API request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource"},
	)

	UpstreamRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "fanline_retries_total",
			Help:      "Total number of Fanline request retries",
		},
		[]string{"reason"}, // "rate_limited", "network"
	)

	UpstreamRateLimitRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "upsync",
			Name:      "fanline_rate_limit_remaining",
			Help:      "Requests remaining in the current Fanline rate limit window",
		},
		[]string{"credential"}, // masked credential identifier
	)

	UpstreamQuotaLow = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "fanline_quota_low_total",
			Help:      "Total number of times a credential dropped below the low quota threshold",
		},
		[]string{"credential"},
	)

	// Credential Metrics
	CredentialFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "credential_fallbacks_total",
			Help:      "Total number of creator-to-tenant credential fallbacks",
		},
		[]string{"reason"}, // "expired", "revoked"
	)

	CredentialCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "credential_cache_hits_total",
			Help:      "Total number of credential resolver cache hits",
		},
	)

	CredentialCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "credential_cache_misses_total",
			Help:      "Total number of credential resolver cache misses",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "upsync",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "upsync",
			Name:      "db_query_duration_seconds",
			Help:      "Duration of PostgreSQL queries in seconds",
			Buckets:   prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "db_query_errors_total",
			Help:      "Total number of PostgreSQL query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "upsync",
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "upsync",
			Name:      "api_active_requests",
			Help:      "Current number of active API requests",
		},
	)

	// Run Event Metrics
	RunEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "run_events_published_total",
			Help:      "Total number of run lifecycle events published",
		},
		[]string{"event"}, // "started", "completed"
	)

	RunEventErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upsync",
			Name:      "run_event_errors_total",
			Help:      "Total number of run lifecycle event publish failures",
		},
		[]string{"event"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "upsync",
			Name:      "app_info",
			Help:      "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordSyncRun records a completed sync run. The status label must be a
// terminal run status; running runs are never reported here.
func RecordSyncRun(resource, status string, duration time.Duration, upserted int) {
	SyncRunsTotal.WithLabelValues(resource, status).Inc()
	SyncRunDuration.WithLabelValues(resource).Observe(duration.Seconds())
	SyncRecordsUpserted.WithLabelValues(resource).Add(float64(upserted))
	if status == "completed" {
		SyncLastSuccess.WithLabelValues(resource).Set(float64(time.Now().Unix()))
	}
}

// RecordCreatorFailure records a creator skipped during a sync run.
func RecordCreatorFailure(resource string) {
	SyncCreatorFailures.WithLabelValues(resource).Inc()
}

// RecordLockContention records a sync request rejected by the run lock.
func RecordLockContention(resource string) {
	SyncLockContention.WithLabelValues(resource).Inc()
}

// RecordUpstreamRequest records a Fanline API request metric.
func RecordUpstreamRequest(resource string, statusCode int, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(resource, strconv.Itoa(statusCode)).Inc()
	UpstreamRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordUpstreamRetry records a retried Fanline request by reason.
func RecordUpstreamRetry(reason string) {
	UpstreamRetriesTotal.WithLabelValues(reason).Inc()
}

// SetRateLimitRemaining updates the quota gauge for a masked credential.
func SetRateLimitRemaining(credential string, remaining int) {
	UpstreamRateLimitRemaining.WithLabelValues(credential).Set(float64(remaining))
}

// RecordQuotaLow records a credential crossing the low quota threshold.
func RecordQuotaLow(credential string) {
	UpstreamQuotaLow.WithLabelValues(credential).Inc()
}

// RecordCredentialFallback records a creator credential that was unusable,
// causing the resolver to fall back to the tenant credential.
func RecordCredentialFallback(reason string) {
	CredentialFallbacks.WithLabelValues(reason).Inc()
}

// RecordCredentialCache records a credential resolver cache lookup.
func RecordCredentialCache(hit bool) {
	if hit {
		CredentialCacheHits.Inc()
	} else {
		CredentialCacheMisses.Inc()
	}
}

// SetCircuitBreakerState updates the breaker state gauge. State names follow
// gobreaker: "closed", "half-open", "open".
func SetCircuitBreakerState(name, state string) {
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(state))
}

// RecordBreakerTransition records a circuit breaker state change.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRunEvent records a run lifecycle event publish attempt.
func RecordRunEvent(event string, err error) {
	if err != nil {
		RunEventErrors.WithLabelValues(event).Inc()
		return
	}
	RunEventsPublished.WithLabelValues(event).Inc()
}

// SetAppInfo publishes the application version gauge.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
