// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package testinfra provides container-backed test infrastructure for
// integration tests. It starts real PostgreSQL and Redis instances via
// testcontainers-go so the store layer and the distributed run lock can be
// exercised against actual backends rather than mocks.
//
// Everything in this package is gated behind the "integration" build tag.
// Tests that depend on it should call SkipIfNoDocker first so they skip
// cleanly on machines without a container runtime:
//
//	func TestStore_Upserts(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    ...
//	}
//
// Run with: go test -tags integration ./...
package testinfra
