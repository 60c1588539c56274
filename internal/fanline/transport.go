// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

/*
transport.go - Resilient HTTP transport for the Fanline API

The transport owns the retry policy and nothing else: rate-limit (429)
absorption with Retry-After waits, exponential backoff on network errors,
and rate-limit quota header observation. API semantics (paths, headers,
status translation) belong to the Client.

Retry behavior:
  - HTTP 429: wait Retry-After seconds (default 60 when absent) plus up to
    1s of uniform jitter, then retry. Budget exhausted: ErrRateLimitExceeded.
  - Network error: wait min(base * 2^attempt, cap) plus jitter, then retry.
    Budget exhausted: the last network error.
  - Any other response (2xx or non-429 error) is returned as-is.

The retry loop is bounded: attempts 0..retryMax, each failed attempt waits
(cancellable via ctx) and re-enters, and budget exhaustion exits with the
terminal error. Sleep and jitter are injectable so tests can drive the loop
with a recorder instead of the wall clock.
*/

package fanline

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/metrics"
)

// Fanline rate-limit headers (RFC 6585 style).
const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

// Default resilience settings, applied when the config leaves them zero.
const (
	defaultTimeout           = 30 * time.Second
	defaultRetryAfterDefault = 60 * time.Second
	defaultBackoffBase       = 1 * time.Second
	defaultBackoffCap        = 30 * time.Second
)

// Sleeper waits for d or until ctx is done, returning ctx.Err() when the
// wait was interrupted. Injectable for tests.
type Sleeper func(ctx context.Context, d time.Duration) error

// Jitter returns the random slice added to every retry wait. The production
// implementation draws uniformly from [0, 1s).
type Jitter func() time.Duration

// Transport performs Fanline HTTP requests with bounded retry. Safe for
// concurrent use; it keeps no per-request state.
type Transport struct {
	client            *http.Client
	retryMax          int
	retryAfterDefault time.Duration
	backoffBase       time.Duration
	backoffCap        time.Duration
	lowQuota          int

	sleep  Sleeper
	jitter Jitter
}

// NewTransport builds a transport from the upstream config. Zero durations
// fall back to defaults; RetryMax is taken literally (0 means no retries).
func NewTransport(cfg *config.UpstreamConfig) *Transport {
	t := &Transport{
		client:            &http.Client{Timeout: cfg.Timeout},
		retryMax:          cfg.RetryMax,
		retryAfterDefault: cfg.RetryAfterDefault,
		backoffBase:       cfg.BackoffBase,
		backoffCap:        cfg.BackoffCap,
		lowQuota:          cfg.LowQuotaThreshold,
		sleep:             sleepContext,
		jitter:            uniformJitter,
	}
	if cfg.Timeout <= 0 {
		t.client.Timeout = defaultTimeout
	}
	if t.retryAfterDefault <= 0 {
		t.retryAfterDefault = defaultRetryAfterDefault
	}
	if t.backoffBase <= 0 {
		t.backoffBase = defaultBackoffBase
	}
	if t.backoffCap <= 0 {
		t.backoffCap = defaultBackoffCap
	}
	return t
}

// Execute performs req, absorbing 429 responses and network errors up to the
// retry budget. The request must carry no body (all Fanline calls are GETs);
// each attempt sends a fresh clone so retries never reuse consumed state.
//
// Returns the first response that is neither a 429 nor a network failure —
// including non-2xx error responses, which the caller translates. On budget
// exhaustion returns ErrRateLimitExceeded (429 path) or the last network
// error. Waits are cancellable; cancellation returns ctx.Err().
func (t *Transport) Execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	credential := credentialLabel(req)
	resource := resourceFromPath(req.URL.Path)

	var lastNetErr error

	for attempt := 0; attempt <= t.retryMax; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		start := time.Now()
		resp, err := t.client.Do(req.Clone(ctx))
		if err != nil {
			lastNetErr = err
			if attempt == t.retryMax {
				break
			}
			delay := t.networkBackoff(attempt) + t.jitter()
			metrics.RecordUpstreamRetry(metrics.RetryReasonNetwork)
			logging.CtxWarn(ctx).
				Str("component", "fanline").
				Err(err).
				Int("attempt", attempt+1).
				Int("retry_max", t.retryMax).
				Dur("delay", delay).
				Msg("Upstream request failed, backing off")
			if werr := t.sleep(ctx, delay); werr != nil {
				return nil, werr
			}
			continue
		}

		metrics.RecordUpstreamRequest(resource, resp.StatusCode, time.Since(start))
		t.observeQuota(ctx, resp, credential)

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited. The body carries nothing useful; close it before
		// waiting or bailing.
		retryAfter := retryAfterDelay(resp.Header, t.retryAfterDefault)
		_ = resp.Body.Close()

		if attempt == t.retryMax {
			return nil, fmt.Errorf("%w after %d retries", ErrRateLimitExceeded, t.retryMax)
		}

		delay := retryAfter + t.jitter()
		metrics.RecordUpstreamRetry(metrics.RetryReasonRateLimited)
		logging.CtxWarn(ctx).
			Str("component", "fanline").
			Str("credential", credential).
			Int("attempt", attempt+1).
			Int("retry_max", t.retryMax).
			Dur("retry_after", retryAfter).
			Dur("delay", delay).
			Msg("Upstream rate limited, waiting before retry")
		if werr := t.sleep(ctx, delay); werr != nil {
			return nil, werr
		}
	}

	return nil, fmt.Errorf("upstream request failed after %d retries: %w", t.retryMax, lastNetErr)
}

// observeQuota records X-RateLimit-* headers when present and warns once the
// remaining allowance drops under the configured threshold.
func (t *Transport) observeQuota(ctx context.Context, resp *http.Response, credential string) {
	remaining := resp.Header.Get(headerRateLimitRemaining)
	if remaining == "" {
		return
	}
	n, err := strconv.Atoi(remaining)
	if err != nil {
		return
	}

	metrics.SetRateLimitRemaining(credential, n)

	if n < t.lowQuota {
		metrics.RecordQuotaLow(credential)
		logging.CtxWarn(ctx).
			Str("component", "fanline").
			Str("credential", credential).
			Int("remaining", n).
			Str("limit", resp.Header.Get(headerRateLimitLimit)).
			Str("reset", resp.Header.Get(headerRateLimitReset)).
			Msg("Upstream rate-limit quota low")
	}
}

// networkBackoff is the capped exponential curve for network-level retries:
// base*1, base*2, base*4, ... never exceeding the cap.
func (t *Transport) networkBackoff(attempt int) time.Duration {
	d := t.backoffBase * time.Duration(1<<uint(attempt))
	if d > t.backoffCap || d <= 0 {
		d = t.backoffCap
	}
	return d
}

// retryAfterDelay parses the Retry-After header as whole seconds, falling
// back to the default when absent or malformed.
func retryAfterDelay(h http.Header, fallback time.Duration) time.Duration {
	v := h.Get(headerRetryAfter)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// credentialLabel derives the masked metric/log label from the bearer token
// a request is about to send. Never exposes token material.
func credentialLabel(req *http.Request) string {
	token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	return credentials.MaskCredential(token)
}

// resourceFromPath extracts the trailing resource segment of a Fanline path
// (/owners/{uuid}/{resource}) for metric labels.
func resourceFromPath(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 && i+1 < len(p) {
		return p[i+1:]
	}
	return "unknown"
}

// sleepContext is the production Sleeper: cancellable wall-clock wait.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// uniformJitter draws from [0, 1s) to de-synchronize retries across workers
// sharing an upstream rate-limit window.
func uniformJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(time.Second))) //nolint:gosec // jitter, not crypto
}
