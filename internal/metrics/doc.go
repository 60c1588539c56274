// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring sync throughput, upstream API health,
and system performance.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8640/metrics

# Available Metrics

All collectors register under the "upsync" namespace, so the exported series
carry an upsync_ prefix (upsync_sync_runs_total and so on). The names below
omit the prefix.

Sync Run Metrics:
  - sync_runs_total: Terminal sync runs (counter)
    Labels: resource, status (completed, completed_with_errors, failed)
  - sync_run_duration_seconds: Run duration (histogram)
    Labels: resource
    Buckets: 1, 5, 10, 30, 60, 120, 300, 600
  - sync_records_upserted_total: Records written (counter)
    Labels: resource
  - sync_creator_failures_total: Creators skipped due to errors (counter)
    Labels: resource
  - sync_last_success_timestamp: Unix timestamp of last clean run (gauge)
    Labels: resource
  - sync_lock_contention_total: Sync requests rejected while a run held the lock (counter)
    Labels: resource

Fanline Upstream Metrics:
  - fanline_requests_total: Upstream API requests (counter)
    Labels: resource, status_code
  - fanline_request_duration_seconds: Upstream latency (histogram)
    Labels: resource
  - fanline_retries_total: Retried requests (counter)
    Labels: reason (rate_limited, network)
  - fanline_rate_limit_remaining: Quota headroom per credential (gauge)
    Labels: credential (masked)
  - fanline_quota_low_total: Low-quota threshold crossings (counter)
    Labels: credential (masked)

Credential Metrics:
  - credential_fallbacks_total: Creator-to-tenant fallbacks (counter)
    Labels: reason (expired, revoked)
  - credential_cache_hits_total / credential_cache_misses_total: Resolver cache efficiency (counters)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_state_transitions_total: State changes (counter)
    Labels: name, from_state, to_state

Database Metrics:
  - db_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - db_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

API Metrics:
  - api_requests_total: HTTP requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)

# Usage Example

Recording a completed sync run:

	start := time.Now()
	report, err := engine.SyncResource(ctx, tenantID, models.ResourceEarnings)
	metrics.RecordSyncRun("earnings", string(report.Status), time.Since(start), report.Synced)

Recording upstream requests from the transport layer:

	metrics.RecordUpstreamRequest("tracking-links", resp.StatusCode, time.Since(start))
	if retried {
	    metrics.RecordUpstreamRetry(metrics.RetryReasonRateLimited)
	}

# Cardinality Management

To prevent high cardinality issues:

  - Credential labels use masked identifiers, never raw tokens
  - Endpoint labels are chi route patterns, not raw URLs
  - Retry and fallback reasons are limited to predefined constants
  - Tenant and creator IDs are never used as labels

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.
*/
package metrics
