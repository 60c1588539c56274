// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package cli implements the upsync command line interface.
//
// Commands:
//
//	serve     run the sync service: scheduler, run-event publisher, operator HTTP API
//	sync      run one synchronization for a single tenant and print the report
//	sweep     run one fleet-wide sweep for a resource and print the report
//	migrate   apply or roll back embedded schema migrations
//	version   print build information
//
// Configuration comes from the environment (see internal/config); the root
// command loads an optional .env file first so local development does not
// need exported variables. The one-shot commands (sync, sweep) assemble the
// same engine the service uses, so locking and event publishing behave
// identically regardless of how a run was triggered.
package cli
