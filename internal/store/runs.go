// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/creatorops/upsync/internal/models"
)

// CreateSyncRun inserts a new run in the running state. Fills ID, Status,
// and StartedAt when unset. Only the orchestrator creates runs.
func (s *Store) CreateSyncRun(ctx context.Context, run *models.SyncRun) (err error) {
	defer func(start time.Time) { observe("insert", "sync_runs", start, err) }(time.Now())

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = models.RunRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	errorsJSON, err := json.Marshal(runErrors(run.Errors))
	if err != nil {
		return fmt.Errorf("encode run errors: %w", err)
	}

	const query = `
INSERT INTO sync_runs (id, tenant_id, resource, status, synced, creators_processed, errors, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.pool.Exec(ctx, query,
		run.ID, run.TenantID, run.Resource, run.Status,
		run.Synced, run.CreatorsProcessed, errorsJSON, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

// FinishSyncRun records a run's terminal outcome. The update is guarded on
// the running state so a terminal run is never rewritten: finishing an
// already-finalized run returns ErrRunFinalized, finishing an unknown run
// returns models.ErrNotFound.
func (s *Store) FinishSyncRun(ctx context.Context, run *models.SyncRun) (err error) {
	defer func(start time.Time) { observe("update", "sync_runs", start, err) }(time.Now())

	if !run.Status.Terminal() {
		return fmt.Errorf("status %q is not terminal", run.Status)
	}
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}

	errorsJSON, err := json.Marshal(runErrors(run.Errors))
	if err != nil {
		return fmt.Errorf("encode run errors: %w", err)
	}

	const query = `
UPDATE sync_runs
SET status = $2, synced = $3, creators_processed = $4, errors = $5, finished_at = $6
WHERE id = $1 AND status = 'running'`

	tag, err := s.pool.Exec(ctx, query,
		run.ID, run.Status, run.Synced, run.CreatorsProcessed, errorsJSON, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing run from an immutable one.
		if _, gerr := s.GetSyncRun(ctx, run.ID); errors.Is(gerr, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return ErrRunFinalized
	}
	return nil
}

// GetSyncRun retrieves a run by ID.
func (s *Store) GetSyncRun(ctx context.Context, id uuid.UUID) (run *models.SyncRun, err error) {
	defer func(start time.Time) { observe("select", "sync_runs", start, err) }(time.Now())

	const query = `
SELECT id, tenant_id, resource, status, synced, creators_processed, errors, started_at, finished_at
FROM sync_runs
WHERE id = $1`

	return scanSyncRun(s.pool.QueryRow(ctx, query, id))
}

// ListSyncRuns retrieves a tenant's runs, newest first. limit <= 0 selects
// the default of 50.
func (s *Store) ListSyncRuns(ctx context.Context, tenantID uuid.UUID, limit int) (runs []models.SyncRun, err error) {
	defer func(start time.Time) { observe("select", "sync_runs", start, err) }(time.Now())

	if limit <= 0 {
		limit = 50
	}

	const query = `
SELECT id, tenant_id, resource, status, synced, creators_processed, errors, started_at, finished_at
FROM sync_runs
WHERE tenant_id = $1
ORDER BY started_at DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer rows.Close()

	runs = make([]models.SyncRun, 0)
	for rows.Next() {
		run, serr := scanSyncRun(rows)
		if serr != nil {
			return nil, serr
		}
		runs = append(runs, *run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}
	return runs, nil
}

func scanSyncRun(row pgx.Row) (*models.SyncRun, error) {
	var run models.SyncRun
	var errorsJSON []byte

	err := row.Scan(
		&run.ID, &run.TenantID, &run.Resource, &run.Status,
		&run.Synced, &run.CreatorsProcessed, &errorsJSON,
		&run.StartedAt, &run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
		return nil, fmt.Errorf("decode run errors: %w", err)
	}
	return &run, nil
}

// runErrors normalizes a nil slice to an empty one so the JSONB column
// always holds an array, never null.
func runErrors(errs []string) []string {
	if errs == nil {
		return []string{}
	}
	return errs
}
