// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package fanline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/models"
)

func resolvedWithID(id uuid.UUID, token string) *credentials.Resolved {
	return &credentials.Resolved{
		Credential: &models.Credential{ID: id},
		Token:      token,
	}
}

func TestLimiterRegistry_KeyedByCredentialID(t *testing.T) {
	reg := newLimiterRegistry(1000, 10)
	ctx := context.Background()

	sharedID := uuid.New()
	// Two resolutions of the same credential share one limiter.
	if err := reg.wait(ctx, resolvedWithID(sharedID, "tok-a-1111")); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if err := reg.wait(ctx, resolvedWithID(sharedID, "tok-a-1111")); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if got := len(reg.limiters); got != 1 {
		t.Errorf("limiters = %d, want 1 for a shared credential", got)
	}

	if err := reg.wait(ctx, resolvedWithID(uuid.New(), "tok-b-2222")); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if got := len(reg.limiters); got != 2 {
		t.Errorf("limiters = %d, want 2 for distinct credentials", got)
	}
}

func TestLimiterRegistry_UnlimitedWhenRateUnset(t *testing.T) {
	reg := newLimiterRegistry(0, 0)
	cred := resolvedWithID(uuid.New(), "tok-inf-3333")

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := reg.wait(context.Background(), cred); err != nil {
			t.Fatalf("wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("100 unpaced waits took %v, want no throttling", elapsed)
	}
}

func TestLimiterRegistry_CancelledWait(t *testing.T) {
	// One token per ~17 minutes; the second wait cannot be served before
	// the context deadline and must fail promptly.
	reg := newLimiterRegistry(0.001, 1)
	cred := resolvedWithID(uuid.New(), "tok-slow-4444")

	if err := reg.wait(context.Background(), cred); err != nil {
		t.Fatalf("first wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := reg.wait(ctx, cred)
	if err == nil {
		t.Fatal("second wait() error = nil, want deadline failure")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancelled wait took %v, want prompt return", elapsed)
	}
}

func TestBreakerRegistry_DisabledPassthrough(t *testing.T) {
	reg := newBreakerRegistry(true)
	cred := resolvedWithID(uuid.New(), "tok-dis-5555")

	calls := 0
	for i := 0; i < 20; i++ {
		_, err := reg.execute(cred, func() (*http.Response, error) {
			calls++
			return nil, errors.New("upstream down")
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("call %d: disabled breaker returned ErrOpenState", i+1)
		}
	}
	if calls != 20 {
		t.Errorf("fn called %d times, want 20 (no short-circuiting when disabled)", calls)
	}
}

func TestBreakerRegistry_TripsAfterConsecutiveFailures(t *testing.T) {
	reg := newBreakerRegistry(false)
	cred := resolvedWithID(uuid.New(), "tok-trip-6666")

	calls := 0
	fail := func() (*http.Response, error) {
		calls++
		return nil, &UpstreamError{StatusCode: 500}
	}

	for i := 0; i < 10; i++ {
		if _, err := reg.execute(cred, fail); err == nil {
			t.Fatalf("call %d: error = nil, want upstream failure", i+1)
		}
	}

	_, err := reg.execute(cred, fail)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("call 11: errors.Is(err, gobreaker.ErrOpenState) = false, err = %v", err)
	}
	if calls != 10 {
		t.Errorf("fn called %d times, want 10 (open breaker skips fn)", calls)
	}
	if !strings.Contains(err.Error(), cred.Masked()) {
		t.Errorf("error %q does not name the masked credential %q", err, cred.Masked())
	}
}

func TestBreakerRegistry_StaysClosedBelowFailureRatio(t *testing.T) {
	reg := newBreakerRegistry(false)
	cred := resolvedWithID(uuid.New(), "tok-ok-7777")

	ok := func() (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}
	fail := func() (*http.Response, error) {
		return nil, &UpstreamError{StatusCode: 500}
	}

	// Half failures keeps the ratio under the 60% trip threshold.
	for i := 0; i < 5; i++ {
		if _, err := reg.execute(cred, ok); err != nil {
			t.Fatalf("ok call %d: %v", i+1, err)
		}
		if _, err := reg.execute(cred, fail); err == nil {
			t.Fatalf("fail call %d: error = nil", i+1)
		}
	}

	if _, err := reg.execute(cred, ok); err != nil {
		t.Errorf("call after mixed results failed: %v (breaker should stay closed)", err)
	}
}

func TestBreakerRegistry_PerCredentialIsolation(t *testing.T) {
	reg := newBreakerRegistry(false)
	tripped := resolvedWithID(uuid.New(), "tok-bad-8888")
	healthy := resolvedWithID(uuid.New(), "tok-good-9999")

	fail := func() (*http.Response, error) {
		return nil, &UpstreamError{StatusCode: 500}
	}
	for i := 0; i < 10; i++ {
		_, _ = reg.execute(tripped, fail)
	}
	if _, err := reg.execute(tripped, fail); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("tripped credential: err = %v, want ErrOpenState", err)
	}

	executed := false
	_, err := reg.execute(healthy, func() (*http.Response, error) {
		executed = true
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	if err != nil {
		t.Errorf("healthy credential: err = %v, want nil", err)
	}
	if !executed {
		t.Error("healthy credential's fn was not executed; breakers must be per-credential")
	}
}

func TestBreakerStateName(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		want  string
	}{
		{gobreaker.StateClosed, "closed"},
		{gobreaker.StateHalfOpen, "half-open"},
		{gobreaker.StateOpen, "open"},
		{gobreaker.State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := breakerStateName(tt.state); got != tt.want {
			t.Errorf("breakerStateName(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
