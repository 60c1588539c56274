// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package fanline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/metrics"
)

// Pacing and failure isolation are keyed by credential, not creator: all of
// a tenant's creators typically share one tenant-level rate-limit bucket
// upstream, so requests under the same credential must share a limiter and
// a breaker.

// limiterRegistry hands out one token-bucket limiter per credential.
type limiterRegistry struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[uuid.UUID]*rate.Limiter
}

// newLimiterRegistry builds a registry pacing at rps with the given burst.
// rps <= 0 disables pacing entirely.
func newLimiterRegistry(rps float64, burst int) *limiterRegistry {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &limiterRegistry{
		limit:    limit,
		burst:    burst,
		limiters: make(map[uuid.UUID]*rate.Limiter),
	}
}

// wait blocks until the credential's limiter grants a slot or ctx is done.
func (r *limiterRegistry) wait(ctx context.Context, cred *credentials.Resolved) error {
	r.mu.Lock()
	lim, ok := r.limiters[cred.Credential.ID]
	if !ok {
		lim = rate.NewLimiter(r.limit, r.burst)
		r.limiters[cred.Credential.ID] = lim
	}
	r.mu.Unlock()
	return lim.Wait(ctx)
}

// breakerRegistry hands out one circuit breaker per credential. A breaker
// opens when the upstream is persistently erroring for that credential and
// fails calls fast until the cool-off expires.
type breakerRegistry struct {
	mu       sync.Mutex
	disabled bool
	breakers map[uuid.UUID]*gobreaker.CircuitBreaker[*http.Response]
}

func newBreakerRegistry(disabled bool) *breakerRegistry {
	return &breakerRegistry{
		disabled: disabled,
		breakers: make(map[uuid.UUID]*gobreaker.CircuitBreaker[*http.Response]),
	}
}

// get returns the credential's breaker, creating it on first use.
// Breaker tuning:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window in closed state
//   - 2 minute cool-off before attempting recovery
//   - Opens at >= 60% failure rate with minimum 10 requests
func (r *breakerRegistry) get(cred *credentials.Resolved) *gobreaker.CircuitBreaker[*http.Response] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[cred.Credential.ID]; ok {
		return cb
	}

	name := cred.Masked()
	metrics.SetCircuitBreakerState(name, "closed")

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Str("component", "fanline").
					Str("credential", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening circuit for credential")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateName(from)
			toStr := breakerStateName(to)
			logging.Info().
				Str("component", "fanline").
				Str("credential", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Circuit breaker state transition")
			metrics.RecordBreakerTransition(name, fromStr, toStr)
		},
	})

	r.breakers[cred.Credential.ID] = cb
	return cb
}

// execute runs fn under the credential's breaker. Open-circuit rejections
// come back as a wrapped gobreaker.ErrOpenState so callers can still inspect
// them with errors.Is.
func (r *breakerRegistry) execute(cred *credentials.Resolved, fn func() (*http.Response, error)) (*http.Response, error) {
	if r.disabled {
		return fn()
	}

	resp, err := r.get(cred).Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("requests suspended for credential %s: %w", cred.Masked(), err)
		}
		return nil, err
	}
	return resp, nil
}

func breakerStateName(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
