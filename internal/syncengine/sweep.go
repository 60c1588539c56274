// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package syncengine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/models"
)

const (
	defaultSweepConcurrency = 8
	maxSweepConcurrency     = 32
)

// SweepReport aggregates one fleet pass across active tenants for a single
// resource. Skipped counts tenants whose (tenant, resource) scope was already
// locked by an in-flight run; Errors holds tenants whose run could not start.
type SweepReport struct {
	Resource models.Resource     `json:"resource"`
	Tenants  int                 `json:"tenants"`
	Skipped  int                 `json:"skipped"`
	Reports  []models.SyncReport `json:"reports"`
	Errors   []string            `json:"errors"`
}

// Sweep runs SyncResource for every active tenant under a bounded worker
// pool. Tenants hold distinct credentials and therefore distinct upstream
// rate-limit buckets, so they may proceed in parallel; the limit bounds the
// process's outbound connection usage. One tenant's failure never stops the
// others: failed runs appear in Reports with a failed status, and tenants
// that could not even start land in Errors.
func (o *Orchestrator) Sweep(ctx context.Context, resource models.Resource) (*SweepReport, error) {
	tenants, err := o.store.ListTenants(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	report := &SweepReport{
		Resource: resource,
		Tenants:  len(tenants),
		Reports:  make([]models.SyncReport, 0, len(tenants)),
		Errors:   []string{},
	}

	logging.CtxInfo(ctx).
		Str("component", "syncengine").
		Str("resource", string(resource)).
		Int("tenants", len(tenants)).
		Int("concurrency", o.sweepConcurrency()).
		Msg("Sweep started")

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(o.sweepConcurrency())

	for _, tenant := range tenants {
		g.Go(func() error {
			r, err := o.SyncResource(ctx, tenant.ID, resource)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrSyncInProgress):
				report.Skipped++
			case err != nil:
				report.Errors = append(report.Errors, fmt.Sprintf("tenant %q (%s): %v", tenant.Name, tenant.ID, err))
			default:
				report.Reports = append(report.Reports, *r)
			}
			return nil
		})
	}
	_ = g.Wait() // per-tenant outcomes are collected above, never returned

	logging.CtxInfo(ctx).
		Str("component", "syncengine").
		Str("resource", string(resource)).
		Int("runs", len(report.Reports)).
		Int("skipped", report.Skipped).
		Int("errors", len(report.Errors)).
		Msg("Sweep finished")

	return report, nil
}

// sweepConcurrency clamps the configured tenant parallelism to [1, 32].
func (o *Orchestrator) sweepConcurrency() int {
	n := o.cfg.Sync.SweepConcurrency
	if n <= 0 {
		n = defaultSweepConcurrency
	}
	if n > maxSweepConcurrency {
		n = maxSweepConcurrency
	}
	return n
}
