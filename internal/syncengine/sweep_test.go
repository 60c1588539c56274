// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package syncengine

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/fanline"
	"github.com/creatorops/upsync/internal/models"
)

// sweepHarness seeds n active tenants, each with one linked creator.
func sweepHarness(t *testing.T, n int, cfg *config.Config) (*harness, []uuid.UUID) {
	t.Helper()

	st := newFakeStore()
	tenantIDs := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		st.tenants[id] = models.Tenant{ID: id, Name: fmt.Sprintf("agency-%d", i), Active: true}
		ext := fmt.Sprintf("ext-%d", i)
		st.creators[id] = []models.Creator{{
			ID: uuid.New(), TenantID: id, DisplayName: fmt.Sprintf("creator-%d", i),
			ExternalUUID: &ext, Active: true,
		}}
		tenantIDs = append(tenantIDs, id)
	}

	client := &fakeClient{}
	resolver := newFakeResolver()
	locks := NewMemoryLocker()

	return &harness{
		store:    st,
		client:   client,
		resolver: resolver,
		sink:     &recordingSink{},
		locks:    locks,
		orch:     NewOrchestrator(st, client, resolver, locks, nil, cfg),
	}, tenantIDs
}

func TestSweep_RunsAllActiveTenants(t *testing.T) {
	h, tenantIDs := sweepHarness(t, 3, testConfig())

	inactive := uuid.New()
	h.store.tenants[inactive] = models.Tenant{ID: inactive, Name: "dormant", Active: false}

	report, err := h.orch.Sweep(context.Background(), models.ResourceEarnings)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if report.Tenants != 3 {
		t.Errorf("Tenants = %d, want 3 (inactive excluded)", report.Tenants)
	}
	if len(report.Reports) != 3 {
		t.Fatalf("got %d run reports, want 3", len(report.Reports))
	}
	if report.Skipped != 0 || len(report.Errors) != 0 {
		t.Errorf("skipped = %d, errors = %v", report.Skipped, report.Errors)
	}

	seen := make(map[uuid.UUID]bool)
	for _, r := range report.Reports {
		if r.Status != models.RunCompleted {
			t.Errorf("tenant %s run status = %q, want completed", r.TenantID, r.Status)
		}
		seen[r.TenantID] = true
	}
	for _, id := range tenantIDs {
		if !seen[id] {
			t.Errorf("tenant %s was not swept", id)
		}
	}
	if seen[inactive] {
		t.Error("inactive tenant was swept")
	}
}

func TestSweep_SkipsLockedTenant(t *testing.T) {
	h, tenantIDs := sweepHarness(t, 3, testConfig())

	// One tenant already has a run in flight for this resource.
	release, err := h.locks.Acquire(context.Background(), tenantIDs[1], models.ResourceMedia)
	if err != nil {
		t.Fatalf("pre-acquire failed: %v", err)
	}
	defer release()

	report, err := h.orch.Sweep(context.Background(), models.ResourceMedia)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", report.Skipped)
	}
	if len(report.Reports) != 2 {
		t.Errorf("got %d run reports, want 2", len(report.Reports))
	}
	if len(report.Errors) != 0 {
		t.Errorf("an in-flight run is not a sweep error: %v", report.Errors)
	}
	for _, r := range report.Reports {
		if r.TenantID == tenantIDs[1] {
			t.Error("locked tenant produced a report")
		}
	}
}

func TestSweep_BoundsConcurrency(t *testing.T) {
	cfg := testConfig()
	cfg.Sync.SweepConcurrency = 2
	h, _ := sweepHarness(t, 6, cfg)

	var inFlight, peak atomic.Int32
	h.client.subscribers = func(_ context.Context, _ *credentials.Resolved, ext string, page, size int) (*fanline.ListPage[models.Subscriber], error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return &fanline.ListPage[models.Subscriber]{}, nil
	}

	report, err := h.orch.Sweep(context.Background(), models.ResourceSubscribers)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if len(report.Reports) != 6 {
		t.Errorf("got %d run reports, want 6", len(report.Reports))
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("peak tenant concurrency = %d, want <= 2", got)
	}
}

func TestSweep_FailedRunsStayInReports(t *testing.T) {
	h, tenantIDs := sweepHarness(t, 3, testConfig())

	// One tenant has no usable credential: its run fails, the sweep does not.
	h.resolver.tenantErrs[tenantIDs[2]] = fmt.Errorf("tenant %s: %w", tenantIDs[2], credentials.ErrNoCredential)

	report, err := h.orch.Sweep(context.Background(), models.ResourceChats)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if len(report.Reports) != 3 {
		t.Fatalf("got %d run reports, want 3", len(report.Reports))
	}
	if len(report.Errors) != 0 {
		t.Errorf("a failed run is reported, not a sweep error: %v", report.Errors)
	}

	var failed, completed int
	for _, r := range report.Reports {
		switch r.Status {
		case models.RunFailed:
			failed++
			if r.TenantID != tenantIDs[2] {
				t.Errorf("wrong tenant failed: %s", r.TenantID)
			}
		case models.RunCompleted:
			completed++
		default:
			t.Errorf("unexpected status %q", r.Status)
		}
	}
	if failed != 1 || completed != 2 {
		t.Errorf("failed = %d, completed = %d, want 1 and 2", failed, completed)
	}
}
