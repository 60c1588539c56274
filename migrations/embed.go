// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package migrations embeds the PostgreSQL schema migration files.
//
// Files are named NNNN_description_up.sql / NNNN_description_down.sql and
// applied in ascending (up) or descending (down) name order by
// store.Migrator.
package migrations

import "embed"

// FS contains the schema migrations.
//
//go:embed *.sql
var FS embed.FS
