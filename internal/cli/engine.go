// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/credentials"
	"github.com/creatorops/upsync/internal/events"
	"github.com/creatorops/upsync/internal/fanline"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/store"
	"github.com/creatorops/upsync/internal/syncengine"
	"github.com/creatorops/upsync/migrations"
)

// engine bundles the assembled sync stack. serve, sync, and sweep all build
// the same stack so locking and event publishing behave identically no
// matter how a run was triggered.
type engine struct {
	store  *store.Store
	orch   *syncengine.Orchestrator
	events *events.Service // nil unless event publishing is enabled
}

// newEngine assembles the sync engine from configuration: database pool,
// pending migrations (when UPSYNC_DB_MIGRATE is on), credential cipher and
// resolver, sync locks, the optional run-event publisher, and the Fanline
// client under the orchestrator.
func newEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	st, err := store.New(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.MigrateOnStart {
		applied, err := store.NewMigrator(st.Pool(), migrations.FS).Up(ctx, 0)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		if applied > 0 {
			logging.Info().Int("applied", applied).Msg("Schema migrations applied")
		}
	}

	cipher, err := credentials.NewCipher(cfg.Credentials.EncryptionKey)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init credential cipher: %w", err)
	}
	if err := cipher.ValidateEncryptionSetup(); err != nil {
		st.Close()
		return nil, fmt.Errorf("credential encryption self-test: %w", err)
	}
	resolver := credentials.NewResolver(st, cipher, cfg.Credentials.CacheTTL)

	locker, err := syncengine.NewLocker(&cfg.Locks)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init sync locks: %w", err)
	}

	var sink syncengine.EventSink = syncengine.NopSink{}
	var eventsSvc *events.Service
	if cfg.Events.Enabled {
		eventsSvc, err = events.NewService(ctx, &cfg.Events)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("init run events: %w", err)
		}
		sink = eventsSvc.Sink()
		logging.Info().Str("url", eventsSvc.URL()).Msg("Run event publishing enabled")
	}

	client := fanline.NewClient(&cfg.Upstream)
	orch := syncengine.NewOrchestrator(st, client, resolver, locker, sink, cfg)

	return &engine{store: st, orch: orch, events: eventsSvc}, nil
}

// Close releases the engine's external connections. The serve command does
// not use it: there the supervisor owns the event publisher's shutdown and
// serve closes the store itself.
func (e *engine) Close(ctx context.Context) {
	if e.events != nil {
		if err := e.events.Close(ctx); err != nil {
			logging.Error().Err(err).Msg("Error closing run event publisher")
		}
	}
	e.store.Close()
}

// signalContext derives a context that is cancelled on SIGINT or SIGTERM.
// An interrupted run still releases its lock and finalizes its sync_runs
// row before the process exits.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
