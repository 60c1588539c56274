// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/models"
)

// Scheduler triggers periodic fleet sweeps. It implements suture.Service so
// the supervisor owns its lifecycle and restarts.
type Scheduler struct {
	orch      *Orchestrator
	interval  time.Duration
	resources []models.Resource
}

// NewScheduler builds a scheduler from the sync config. The configured
// resource list is validated up front; an empty list sweeps all five
// resources.
func NewScheduler(orch *Orchestrator, cfg *config.SyncConfig) (*Scheduler, error) {
	var resources []models.Resource
	if len(cfg.Resources) == 0 {
		resources = models.AllResources()
	} else {
		for _, raw := range cfg.Resources {
			r, err := models.ParseResource(raw)
			if err != nil {
				return nil, fmt.Errorf("sync resources: %w", err)
			}
			resources = append(resources, r)
		}
	}

	return &Scheduler{
		orch:      orch,
		interval:  cfg.Interval,
		resources: resources,
	}, nil
}

// Serve implements suture.Service: sweep every configured resource on each
// tick until the context is cancelled. An interval of zero disables periodic
// sweeps; the service then just holds until shutdown.
func (s *Scheduler) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		logging.Info().
			Str("component", "scheduler").
			Msg("Sync scheduler disabled (interval is 0)")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().
		Str("component", "scheduler").
		Dur("interval", s.interval).
		Int("resources", len(s.resources)).
		Msg("Sync scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().
				Str("component", "scheduler").
				Msg("Sync scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce sweeps every configured resource sequentially. A tenant's
// resources share one credential bucket, so staggering them keeps the
// client-side pacing effective.
func (s *Scheduler) sweepOnce(ctx context.Context) {
	for _, resource := range s.resources {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.orch.Sweep(ctx, resource); err != nil {
			logging.CtxErr(ctx, err).
				Str("component", "scheduler").
				Str("resource", string(resource)).
				Msg("Scheduled sweep failed")
		}
	}
}

// String implements fmt.Stringer; suture uses it in supervision logs.
func (s *Scheduler) String() string {
	return "sync-scheduler"
}
