// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package syncengine orchestrates sync runs: for one (tenant, resource) pair
// it resolves credentials, drives the Fanline client through full pagination
// per creator, applies the fetched batches to the store, and records the run.
// Sweeps fan the same pass out across all active tenants under a bounded
// worker pool.
package syncengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/fanline"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/metrics"
	"github.com/creatorops/upsync/internal/models"
)

const defaultPageSize = 100

// Store is the persistence surface the orchestrator depends on. Satisfied by
// *store.Store; tests substitute an in-memory fake.
type Store interface {
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListTenants(ctx context.Context, activeOnly bool) ([]models.Tenant, error)
	ListCreators(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.Creator, error)

	CreateSyncRun(ctx context.Context, run *models.SyncRun) error
	FinishSyncRun(ctx context.Context, run *models.SyncRun) error

	UpsertTrackingLink(ctx context.Context, link *models.TrackingLink) error
	UpsertEarningRecord(ctx context.Context, rec *models.EarningRecord) error
	UpsertChatThread(ctx context.Context, thread *models.ChatThread) error
	UpsertMediaAsset(ctx context.Context, asset *models.MediaAsset) error
	UpsertSubscriber(ctx context.Context, sub *models.Subscriber) error
}

// CredentialResolver yields a usable upstream credential for a creator,
// falling back to the tenant scope. Satisfied by *credentials.Resolver.
type CredentialResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, creatorID *uuid.UUID) (*credentials.Resolved, error)
	Invalidate(tenantID uuid.UUID, creatorID *uuid.UUID)
}

// EventSink receives run lifecycle notifications. The events package
// provides the NATS-backed implementation; NopSink discards them.
type EventSink interface {
	RunStarted(ctx context.Context, run *models.SyncRun)
	RunCompleted(ctx context.Context, run *models.SyncRun)
}

// NopSink is the EventSink used when event publishing is disabled.
type NopSink struct{}

func (NopSink) RunStarted(context.Context, *models.SyncRun)   {}
func (NopSink) RunCompleted(context.Context, *models.SyncRun) {}

// SyncContext carries the identity of one orchestration pass. Constructed
// fresh per invocation; nothing in this package holds run state in package
// variables.
type SyncContext struct {
	RunID      uuid.UUID
	TenantID   uuid.UUID
	Resource   models.Resource
	TenantCred *credentials.Resolved
	Deadline   time.Time
}

// Orchestrator coordinates sync runs across the store, the credential
// resolver, and the Fanline client. Safe for concurrent use; overlapping
// runs for the same (tenant, resource) are rejected by the locker.
type Orchestrator struct {
	store    Store
	client   fanline.ClientInterface
	resolver CredentialResolver
	locks    Locker
	events   EventSink
	cfg      *config.Config
}

// NewOrchestrator wires the sync engine together. A nil locker falls back to
// the in-memory locker, a nil sink to the no-op sink.
func NewOrchestrator(st Store, client fanline.ClientInterface, resolver CredentialResolver, locks Locker, events EventSink, cfg *config.Config) *Orchestrator {
	if locks == nil {
		locks = NewMemoryLocker()
	}
	if events == nil {
		events = NopSink{}
	}
	return &Orchestrator{
		store:    st,
		client:   client,
		resolver: resolver,
		locks:    locks,
		events:   events,
		cfg:      cfg,
	}
}

// SyncResource runs one orchestration pass for (tenant, resource) and always
// persists a terminal SyncRun for it. The returned report distinguishes
// clean, partial, and failed runs via its Status and Errors; a non-nil error
// is returned only when the pass could not start at all (unknown tenant,
// overlapping run, run row could not be created).
func (o *Orchestrator) SyncResource(ctx context.Context, tenantID uuid.UUID, resource models.Resource) (*models.SyncReport, error) {
	tenant, run, release, err := o.begin(ctx, tenantID, resource)
	if err != nil {
		return nil, err
	}
	defer release()

	return o.execute(ctx, tenant, run), nil
}

// StartResource begins a run like SyncResource but returns as soon as the
// run row exists; the body finishes on a background goroutine detached from
// the caller's cancellation and bounded by the configured run timeout.
// Callers poll GetSyncRun for the outcome. The returned run is a snapshot;
// the goroutine owns the live record.
func (o *Orchestrator) StartResource(ctx context.Context, tenantID uuid.UUID, resource models.Resource) (*models.SyncRun, error) {
	tenant, run, release, err := o.begin(ctx, tenantID, resource)
	if err != nil {
		return nil, err
	}

	accepted := *run
	go func() {
		defer release()
		o.execute(context.WithoutCancel(ctx), tenant, run)
	}()
	return &accepted, nil
}

// begin validates the tenant, takes the (tenant, resource) lock, and creates
// the running SyncRun row. On success the caller owns the returned release.
func (o *Orchestrator) begin(ctx context.Context, tenantID uuid.UUID, resource models.Resource) (*models.Tenant, *models.SyncRun, func(), error) {
	tenant, err := o.store.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load tenant: %w", err)
	}

	release, err := o.locks.Acquire(ctx, tenantID, resource)
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			metrics.RecordLockContention(string(resource))
		}
		return nil, nil, nil, err
	}

	run := &models.SyncRun{TenantID: tenantID, Resource: resource}
	if err := o.store.CreateSyncRun(ctx, run); err != nil {
		release()
		return nil, nil, nil, fmt.Errorf("create sync run: %w", err)
	}
	return tenant, run, release, nil
}

// execute is the body of a run: lifecycle events, the creator walk, and
// finalization. The run timeout applies here, not to the bookkeeping in
// begin.
func (o *Orchestrator) execute(ctx context.Context, tenant *models.Tenant, run *models.SyncRun) *models.SyncReport {
	if o.cfg.Sync.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Sync.RunTimeout)
		defer cancel()
	}

	ctx = logging.ContextWithRunID(ctx, run.ID.String())
	logging.CtxInfo(ctx).
		Str("component", "syncengine").
		Str("tenant_id", run.TenantID.String()).
		Str("tenant", tenant.Name).
		Str("resource", string(run.Resource)).
		Msg("Sync run started")

	o.events.RunStarted(ctx, run)

	succeeded := o.syncTenant(ctx, run)

	return o.finalize(ctx, run, succeeded)
}

// syncTenant does the body of a run: resolve the tenant fallback credential,
// then walk the tenant's creators sequentially. Creators share the tenant's
// upstream rate-limit bucket, so parallelism here would only trade progress
// for 429 contention. Returns the number of creators that finished with no
// recorded error; counters and errors accumulate directly on the run.
func (o *Orchestrator) syncTenant(ctx context.Context, run *models.SyncRun) (succeeded int) {
	// The tenant-scoped fallback is resolved once up front: without it no
	// creator can be synced, so the run fails before any work starts.
	tenantCred, err := o.resolver.Resolve(ctx, run.TenantID, nil)
	if err != nil {
		run.Errors = append(run.Errors, err.Error())
		return 0
	}

	creators, err := o.store.ListCreators(ctx, run.TenantID, true)
	if err != nil {
		run.Errors = append(run.Errors, fmt.Sprintf("list creators: %v", err))
		return 0
	}

	sc := &SyncContext{
		RunID:      run.ID,
		TenantID:   run.TenantID,
		Resource:   run.Resource,
		TenantCred: tenantCred,
	}
	if deadline, ok := ctx.Deadline(); ok {
		sc.Deadline = deadline
	}

	for _, creator := range creators {
		if creator.ExternalUUID == nil {
			logging.CtxDebug(ctx).
				Str("component", "syncengine").
				Str("creator_id", creator.ID.String()).
				Msg("Skipping creator without linked upstream account")
			continue
		}

		if ctx.Err() != nil {
			// Deadline or shutdown. The in-flight creator's partial batch is
			// already discarded; prior creators' upserts stay committed.
			run.Errors = append(run.Errors, fmt.Sprintf("run cancelled before creator %q: %v", creator.DisplayName, ctx.Err()))
			break
		}

		run.CreatorsProcessed++
		synced, creatorErrs := o.syncCreator(ctx, sc, creator)
		run.Synced += synced
		if len(creatorErrs) == 0 {
			succeeded++
			continue
		}
		run.Errors = append(run.Errors, creatorErrs...)
		metrics.RecordCreatorFailure(string(run.Resource))
	}

	return succeeded
}

// syncCreator fetches one creator's full stream and applies it. All returned
// errors are creator-prefixed, ready for the run's error list; an empty
// slice means the creator synced cleanly.
func (o *Orchestrator) syncCreator(ctx context.Context, sc *SyncContext, creator models.Creator) (int, []string) {
	cred, err := o.resolver.Resolve(ctx, sc.TenantID, &creator.ID)
	if err != nil {
		return 0, []string{creatorError(creator, fmt.Errorf("resolve credential: %w", err))}
	}

	synced, recordErrs, err := o.fetchAndApply(ctx, cred, sc.Resource, creator)
	if err != nil {
		switch fanline.Classify(err) {
		case fanline.OutcomeEmpty:
			// Upstream has nothing for this creator. Valid and clean.
			return 0, nil
		case fanline.OutcomeForbidden:
			// The cached resolution may be stale; the next run re-reads the
			// store instead of replaying the rejected grant.
			o.resolver.Invalidate(sc.TenantID, &creator.ID)
			logging.CtxWarn(ctx).
				Str("component", "syncengine").
				Str("creator_id", creator.ID.String()).
				Str("creator", creator.DisplayName).
				Err(err).
				Msg("Creator sync forbidden, continuing with remaining creators")
			return 0, []string{creatorError(creator, err)}
		default:
			return 0, []string{creatorError(creator, err)}
		}
	}

	return synced, recordErrs
}

// fetchAndApply accumulates the creator's complete paginated stream into one
// batch, then upserts it record by record. A mid-pagination failure discards
// the partial batch: nothing from a failed fetch is applied.
func (o *Orchestrator) fetchAndApply(ctx context.Context, cred *credentials.Resolved, resource models.Resource, creator models.Creator) (int, []string, error) {
	ext := *creator.ExternalUUID
	size := o.pageSize()
	now := time.Now().UTC()

	switch resource {
	case models.ResourceTrackingLinks:
		items, err := collectList(ctx, func(ctx context.Context, page int) (*fanline.ListPage[models.TrackingLink], error) {
			return o.client.TrackingLinks(ctx, cred, ext, page, size)
		})
		if err != nil {
			return 0, nil, err
		}
		return applyBatch(ctx, creator, items, func(l *models.TrackingLink) string {
			l.OwnerID = creator.ID
			l.SyncedAt = now
			return l.ExternalUUID
		}, o.store.UpsertTrackingLink)

	case models.ResourceEarnings:
		items, err := collectCursor(ctx, func(ctx context.Context, cursor string) (*fanline.CursorPage[models.EarningRecord], error) {
			return o.client.Earnings(ctx, cred, ext, cursor, size)
		})
		if err != nil {
			return 0, nil, err
		}
		return applyBatch(ctx, creator, items, func(r *models.EarningRecord) string {
			r.OwnerID = creator.ID
			r.SyncedAt = now
			return r.ExternalUUID
		}, o.store.UpsertEarningRecord)

	case models.ResourceChats:
		items, err := collectCursor(ctx, func(ctx context.Context, cursor string) (*fanline.CursorPage[models.ChatThread], error) {
			return o.client.Chats(ctx, cred, ext, cursor, size)
		})
		if err != nil {
			return 0, nil, err
		}
		return applyBatch(ctx, creator, items, func(th *models.ChatThread) string {
			th.OwnerID = creator.ID
			th.SyncedAt = now
			return th.ExternalUUID
		}, o.store.UpsertChatThread)

	case models.ResourceMedia:
		items, err := collectList(ctx, func(ctx context.Context, page int) (*fanline.ListPage[models.MediaAsset], error) {
			return o.client.Media(ctx, cred, ext, page, size)
		})
		if err != nil {
			return 0, nil, err
		}
		return applyBatch(ctx, creator, items, func(a *models.MediaAsset) string {
			a.OwnerID = creator.ID
			a.SyncedAt = now
			return a.ExternalUUID
		}, o.store.UpsertMediaAsset)

	case models.ResourceSubscribers:
		items, err := collectList(ctx, func(ctx context.Context, page int) (*fanline.ListPage[models.Subscriber], error) {
			return o.client.Subscribers(ctx, cred, ext, page, size)
		})
		if err != nil {
			return 0, nil, err
		}
		return applyBatch(ctx, creator, items, func(s *models.Subscriber) string {
			s.OwnerID = creator.ID
			s.SyncedAt = now
			return s.ExternalUUID
		}, o.store.UpsertSubscriber)
	}

	return 0, nil, fmt.Errorf("unknown resource %q", resource)
}

// applyBatch stamps ownership onto every fetched record and upserts them one
// at a time. stamp sets OwnerID/SyncedAt and returns the record's upstream
// identity for error messages. A failed record is recorded and skipped; the
// rest of the batch still lands.
func applyBatch[T any](ctx context.Context, creator models.Creator, items []T, stamp func(*T) string, upsert func(context.Context, *T) error) (int, []string, error) {
	var synced int
	var errs []string

	for i := range items {
		key := stamp(&items[i])
		if err := upsert(ctx, &items[i]); err != nil {
			errs = append(errs, fmt.Sprintf("creator %q: record %s: %v", creator.DisplayName, key, err))
			continue
		}
		synced++
	}

	return synced, errs, nil
}

// finalize derives the terminal status, persists it, and reports the run.
// The run record must land even when the run's own deadline has expired, so
// persistence runs on a detached context.
func (o *Orchestrator) finalize(ctx context.Context, run *models.SyncRun, succeeded int) *models.SyncReport {
	now := time.Now().UTC()
	run.Status = models.ComputeRunStatus(run.Errors, succeeded)
	run.FinishedAt = &now
	if run.Errors == nil {
		run.Errors = []string{}
	}

	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.store.FinishSyncRun(finishCtx, run); err != nil {
		logging.CtxErr(ctx, err).
			Str("component", "syncengine").
			Str("run_id", run.ID.String()).
			Msg("Failed to finalize sync run")
	}

	duration := now.Sub(run.StartedAt)
	metrics.RecordSyncRun(string(run.Resource), string(run.Status), duration, run.Synced)
	o.events.RunCompleted(ctx, run)

	logging.CtxInfo(ctx).
		Str("component", "syncengine").
		Str("tenant_id", run.TenantID.String()).
		Str("resource", string(run.Resource)).
		Str("status", string(run.Status)).
		Int("synced", run.Synced).
		Int("creators_processed", run.CreatorsProcessed).
		Int("errors", len(run.Errors)).
		Dur("duration", duration).
		Msg("Sync run finished")

	return &models.SyncReport{
		RunID:             run.ID,
		TenantID:          run.TenantID,
		Resource:          run.Resource,
		Status:            run.Status,
		Synced:            run.Synced,
		CreatorsProcessed: run.CreatorsProcessed,
		Errors:            run.Errors,
	}
}

func (o *Orchestrator) pageSize() int {
	if o.cfg.Upstream.PageSize > 0 {
		return o.cfg.Upstream.PageSize
	}
	return defaultPageSize
}

func creatorError(creator models.Creator, err error) string {
	return fmt.Sprintf("creator %q (%s): %v", creator.DisplayName, creator.ID, err)
}
