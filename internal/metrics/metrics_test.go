// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// TestRecordSyncRun tests sync run metric recording
func TestRecordSyncRun(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		status   string
		duration time.Duration
		upserted int
	}{
		{
			name:     "completed tracking links run",
			resource: "tracking-links",
			status:   "completed",
			duration: 12 * time.Second,
			upserted: 240,
		},
		{
			name:     "partial earnings run",
			resource: "earnings",
			status:   "completed_with_errors",
			duration: 95 * time.Second,
			upserted: 1800,
		},
		{
			name:     "failed subscribers run",
			resource: "subscribers",
			status:   "failed",
			duration: 2 * time.Second,
			upserted: 0,
		},
		{
			name:     "long chat run over five minutes",
			resource: "chats",
			duration: 340 * time.Second,
			status:   "completed",
			upserted: 50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(SyncRunsTotal.WithLabelValues(tt.resource, tt.status))

			RecordSyncRun(tt.resource, tt.status, tt.duration, tt.upserted)

			after := testutil.ToFloat64(SyncRunsTotal.WithLabelValues(tt.resource, tt.status))
			if after != before+1 {
				t.Errorf("SyncRunsTotal = %v, want %v", after, before+1)
			}
		})
	}
}

// TestRecordSyncRun_LastSuccess verifies the success timestamp is only set for clean runs
func TestRecordSyncRun_LastSuccess(t *testing.T) {
	RecordSyncRun("media", "failed", time.Second, 0)
	if v := testutil.ToFloat64(SyncLastSuccess.WithLabelValues("media")); v != 0 {
		t.Errorf("SyncLastSuccess after failed run = %v, want 0", v)
	}

	before := time.Now().Unix()
	RecordSyncRun("media", "completed", time.Second, 10)
	v := testutil.ToFloat64(SyncLastSuccess.WithLabelValues("media"))
	if int64(v) < before {
		t.Errorf("SyncLastSuccess after completed run = %v, want >= %v", int64(v), before)
	}
}

// TestRecordUpstreamRequest tests Fanline request metric recording
func TestRecordUpstreamRequest(t *testing.T) {
	tests := []struct {
		name       string
		resource   string
		statusCode int
		duration   time.Duration
	}{
		{
			name:       "successful page fetch",
			resource:   "tracking-links",
			statusCode: 200,
			duration:   45 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			resource:   "earnings",
			statusCode: 429,
			duration:   5 * time.Millisecond,
		},
		{
			name:       "forbidden request",
			resource:   "chats",
			statusCode: 403,
			duration:   12 * time.Millisecond,
		},
		{
			name:       "upstream server error",
			resource:   "media",
			statusCode: 503,
			duration:   2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordUpstreamRequest(tt.resource, tt.statusCode, tt.duration)
		})
	}

	// Status codes are recorded as string labels
	RecordUpstreamRequest("subscribers", 404, time.Millisecond)
	v := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("subscribers", "404"))
	if v < 1 {
		t.Errorf("UpstreamRequestsTotal[subscribers,404] = %v, want >= 1", v)
	}
}

// TestRecordUpstreamRetry tests retry metric recording by reason
func TestRecordUpstreamRetry(t *testing.T) {
	beforeRL := testutil.ToFloat64(UpstreamRetriesTotal.WithLabelValues(RetryReasonRateLimited))
	beforeNet := testutil.ToFloat64(UpstreamRetriesTotal.WithLabelValues(RetryReasonNetwork))

	RecordUpstreamRetry(RetryReasonRateLimited)
	RecordUpstreamRetry(RetryReasonNetwork)
	RecordUpstreamRetry(RetryReasonNetwork)

	if v := testutil.ToFloat64(UpstreamRetriesTotal.WithLabelValues(RetryReasonRateLimited)); v != beforeRL+1 {
		t.Errorf("rate_limited retries = %v, want %v", v, beforeRL+1)
	}
	if v := testutil.ToFloat64(UpstreamRetriesTotal.WithLabelValues(RetryReasonNetwork)); v != beforeNet+2 {
		t.Errorf("network retries = %v, want %v", v, beforeNet+2)
	}
}

// TestSetRateLimitRemaining tests the quota gauge
func TestSetRateLimitRemaining(t *testing.T) {
	SetRateLimitRemaining("flk_****abcd", 42)
	if v := testutil.ToFloat64(UpstreamRateLimitRemaining.WithLabelValues("flk_****abcd")); v != 42 {
		t.Errorf("UpstreamRateLimitRemaining = %v, want 42", v)
	}

	// Gauge reflects the latest observation, including decreases
	SetRateLimitRemaining("flk_****abcd", 3)
	if v := testutil.ToFloat64(UpstreamRateLimitRemaining.WithLabelValues("flk_****abcd")); v != 3 {
		t.Errorf("UpstreamRateLimitRemaining = %v, want 3", v)
	}
}

// TestRecordCredentialFallback tests fallback metric recording
func TestRecordCredentialFallback(t *testing.T) {
	reasons := []string{FallbackReasonExpired, FallbackReasonRevoked}

	for _, reason := range reasons {
		t.Run("reason_"+reason, func(t *testing.T) {
			before := testutil.ToFloat64(CredentialFallbacks.WithLabelValues(reason))
			RecordCredentialFallback(reason)
			after := testutil.ToFloat64(CredentialFallbacks.WithLabelValues(reason))
			if after != before+1 {
				t.Errorf("CredentialFallbacks[%s] = %v, want %v", reason, after, before+1)
			}
		})
	}
}

// TestRecordCredentialCache tests resolver cache hit/miss counting
func TestRecordCredentialCache(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CredentialCacheHits)
	missesBefore := testutil.ToFloat64(CredentialCacheMisses)

	RecordCredentialCache(true)
	RecordCredentialCache(true)
	RecordCredentialCache(false)

	if v := testutil.ToFloat64(CredentialCacheHits); v != hitsBefore+2 {
		t.Errorf("CredentialCacheHits = %v, want %v", v, hitsBefore+2)
	}
	if v := testutil.ToFloat64(CredentialCacheMisses); v != missesBefore+1 {
		t.Errorf("CredentialCacheMisses = %v, want %v", v, missesBefore+1)
	}
}

// TestBreakerStateValue verifies the gobreaker state name mapping
func TestBreakerStateValue(t *testing.T) {
	tests := []struct {
		state string
		want  float64
	}{
		{"closed", 0},
		{"half-open", 1},
		{"open", 2},
		{"unknown", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run("state_"+tt.state, func(t *testing.T) {
			if got := breakerStateValue(tt.state); got != tt.want {
				t.Errorf("breakerStateValue(%q) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

// TestSetCircuitBreakerState tests the breaker state gauge
func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("fanline-cred-1", "open")
	if v := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("fanline-cred-1")); v != 2 {
		t.Errorf("CircuitBreakerState = %v, want 2", v)
	}

	SetCircuitBreakerState("fanline-cred-1", "closed")
	if v := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("fanline-cred-1")); v != 0 {
		t.Errorf("CircuitBreakerState = %v, want 0", v)
	}
}

// TestRecordBreakerTransition verifies transitions update both counter and gauge
func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("fanline-cred-2", "closed", "open")

	if v := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("fanline-cred-2", "closed", "open")); v != 1 {
		t.Errorf("CircuitBreakerTransitions = %v, want 1", v)
	}
	if v := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("fanline-cred-2")); v != 2 {
		t.Errorf("CircuitBreakerState after transition = %v, want 2", v)
	}
}

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful upsert",
			operation: "UPSERT",
			table:     "tracking-links",
			duration:  8 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful select",
			operation: "SELECT",
			table:     "credentials",
			duration:  2 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed insert with short error",
			operation: "INSERT",
			table:     "sync_runs",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error - should truncate to 50 chars",
			operation: "UPDATE",
			table:     "sync_runs",
			duration:  50 * time.Millisecond,
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the query - should not panic
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

// TestRecordDBQuery_ErrorTruncation verifies error messages are truncated at 50 chars
func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	err100 := errors.New(strings.Repeat("x", 100))
	RecordDBQuery("SELECT", "truncation_test", time.Millisecond, err100)

	want := strings.Repeat("x", 50)
	v := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "truncation_test", want))
	if v != 1 {
		t.Errorf("DBQueryErrors with truncated label = %v, want 1", v)
	}
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "sync trigger accepted",
			method:     "POST",
			endpoint:   "/api/v1/tenants/{tenantID}/sync/{resource}",
			statusCode: "202",
			duration:   3 * time.Millisecond,
		},
		{
			name:       "run status lookup",
			method:     "GET",
			endpoint:   "/api/v1/sync/runs/{runID}",
			statusCode: "200",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "unauthorized sweep",
			method:     "POST",
			endpoint:   "/api/v1/sync/sweep",
			statusCode: "401",
			duration:   1 * time.Millisecond,
		},
		{
			name:       "conflicting sync trigger",
			method:     "POST",
			endpoint:   "/api/v1/tenants/{tenantID}/sync/{resource}",
			statusCode: "409",
			duration:   1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

// TestTrackActiveRequest tests the in-flight request gauge
func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if v := testutil.ToFloat64(APIActiveRequests); v != before+2 {
		t.Errorf("APIActiveRequests = %v, want %v", v, before+2)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if v := testutil.ToFloat64(APIActiveRequests); v != before {
		t.Errorf("APIActiveRequests = %v, want %v", v, before)
	}
}

// TestRecordRunEvent tests run event publish metric recording
func TestRecordRunEvent(t *testing.T) {
	pubBefore := testutil.ToFloat64(RunEventsPublished.WithLabelValues("started"))
	errBefore := testutil.ToFloat64(RunEventErrors.WithLabelValues("started"))

	RecordRunEvent("started", nil)
	RecordRunEvent("started", errors.New("nats unavailable"))

	if v := testutil.ToFloat64(RunEventsPublished.WithLabelValues("started")); v != pubBefore+1 {
		t.Errorf("RunEventsPublished = %v, want %v", v, pubBefore+1)
	}
	if v := testutil.ToFloat64(RunEventErrors.WithLabelValues("started")); v != errBefore+1 {
		t.Errorf("RunEventErrors = %v, want %v", v, errBefore+1)
	}
}

// TestSyncRunDurationBuckets verifies run duration observations land in histogram buckets
func TestSyncRunDurationBuckets(t *testing.T) {
	RecordSyncRun("bucket_test", "completed", 45*time.Second, 1)

	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var hist *dto.Histogram
	for _, mf := range mfs {
		if mf.GetName() != "upsync_sync_run_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "resource" && lp.GetValue() == "bucket_test" {
					hist = m.GetHistogram()
				}
			}
		}
	}

	if hist == nil {
		t.Fatal("upsync_sync_run_duration_seconds{resource=bucket_test} not found")
	}
	if hist.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", hist.GetSampleCount())
	}

	// 45s should be counted in the 60s bucket but not the 30s bucket
	for _, b := range hist.GetBucket() {
		switch b.GetUpperBound() {
		case 30:
			if b.GetCumulativeCount() != 0 {
				t.Errorf("30s bucket count = %d, want 0", b.GetCumulativeCount())
			}
		case 60:
			if b.GetCumulativeCount() != 1 {
				t.Errorf("60s bucket count = %d, want 1", b.GetCumulativeCount())
			}
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordSyncRun("gather_test", "completed", time.Second, 5)
	RecordUpstreamRequest("gather_test", 200, time.Millisecond)
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	// Verify we can lint the metrics (checks for consistency issues)
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

// TestMetricDescriptors verifies all collectors expose at least one descriptor
func TestMetricDescriptors(t *testing.T) {
	collectors := []prometheus.Collector{
		SyncRunsTotal,
		SyncRunDuration,
		SyncRecordsUpserted,
		SyncCreatorFailures,
		SyncLastSuccess,
		SyncLockContention,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		UpstreamRetriesTotal,
		UpstreamRateLimitRemaining,
		UpstreamQuotaLow,
		CredentialFallbacks,
		CredentialCacheHits,
		CredentialCacheMisses,
		CircuitBreakerState,
		CircuitBreakerTransitions,
		DBQueryDuration,
		DBQueryErrors,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		RunEventsPublished,
		RunEventErrors,
		AppInfo,
	}

	for _, c := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		c.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Collector has no descriptors")
		}
	}
}

// Benchmark tests for metrics performance

func BenchmarkRecordSyncRun(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordSyncRun("tracking-links", "completed", 10*time.Second, 100)
	}
}

func BenchmarkRecordUpstreamRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordUpstreamRequest("earnings", 200, 25*time.Millisecond)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/tenants", "200", 5*time.Millisecond)
	}
}
