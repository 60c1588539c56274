// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package logging provides centralized zerolog-based structured logging for Upsync.
//
// All components log through this package so that output is uniform JSON in
// production and human-readable console text in development. Sync runs,
// upstream requests, and HTTP handlers attach identifiers through context so
// a single run can be traced across the orchestrator, the Fanline client, and
// the persistence layer.
//
// # Quick Start
//
//	import "github.com/creatorops/upsync/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("tenant_id", tenantID).Msg("Sweep started")
//	logging.Error().Err(err).Str("resource", "earnings").Msg("Sync failed")
//
//	// Context-aware logging (correlation and run IDs added automatically)
//	logging.Ctx(ctx).Info().Int("synced", n).Msg("Batch persisted")
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Structured Logging Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().
//	    Str("creator_id", creatorID).
//	    Int("records", count).
//	    Dur("elapsed", elapsed).
//	    Msg("Creator synced")
//
// # Context-Aware Logging
//
// The orchestrator stamps each sync run with a run ID, and the HTTP layer
// stamps each request with correlation and request IDs. Ctx(ctx) returns a
// logger carrying whichever of those the context holds:
//
//	logging.Ctx(ctx).Warn().Msg("Falling back to tenant credential")
//	// {"level":"warn","run_id":"...","correlation_id":"...","message":"..."}
//
// # slog Adapter
//
// NewSlogLogger returns an slog.Logger backed by zerolog for libraries that
// require slog, such as the suture supervision tree via sutureslog.
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger is
// protected by a sync.RWMutex for configuration changes.
package logging
