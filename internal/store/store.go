// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package store is the PostgreSQL persistence adapter. It exposes idempotent
// entity upserts keyed (owner_id, external_uuid), read access to the tenancy
// tree (tenants, creators, credentials), and the sync_runs lifecycle. All
// methods are safe for concurrent use; the pool handles connection reuse.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/metrics"
)

// Store errors beyond the shared models.ErrNotFound sentinel.
var (
	// ErrRunFinalized means a terminal update was attempted on a sync run
	// that already left the running state. Terminal runs are immutable.
	ErrRunFinalized = errors.New("sync run already finalized")
)

// Store wraps a pgx connection pool with the persistence operations the
// sync engine needs.
type Store struct {
	pool *pgxpool.Pool
}

// The credential resolver reads grants through the store.
var _ credentials.Source = (*Store)(nil)

// New connects to PostgreSQL and verifies the connection with a ping.
// Pool bounds and connection lifetime come from the database config; zero
// values keep pgxpool's defaults.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logging.Info().
		Str("component", "store").
		Int32("max_conns", pcfg.MaxConns).
		Int32("min_conns", pcfg.MinConns).
		Msg("Connected to PostgreSQL")

	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool. Used by tests that manage the pool
// lifecycle themselves.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool for migrations and pool-stat reporting.
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// Ping verifies database connectivity. Used by the readiness endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the underlying pool. Idempotent.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// observe records query duration and outcome for the database metrics.
// Call via defer with a named error return.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
