// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorops/upsync/internal/logging"
)

// Migrator applies SQL schema migrations from a file system, normally the
// embedded migrations.FS. Files end in _up.sql or _down.sql and are applied
// in ascending name order (up) or descending (down). The migration SQL is
// written idempotently (IF NOT EXISTS / IF EXISTS), so re-applying is safe.
type Migrator struct {
	pool *pgxpool.Pool
	fsys fs.FS
}

// NewMigrator creates a migrator over the given pool and migration files.
func NewMigrator(pool *pgxpool.Pool, fsys fs.FS) *Migrator {
	return &Migrator{pool: pool, fsys: fsys}
}

// Up applies up migrations in ascending order. steps > 0 limits how many
// files are applied; steps <= 0 applies all. Returns the number applied.
func (m *Migrator) Up(ctx context.Context, steps int) (int, error) {
	files, err := listMigrations(m.fsys, "_up.sql")
	if err != nil {
		return 0, err
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}
	return m.apply(ctx, files)
}

// Down applies down migrations in reverse order, newest first. steps > 0
// limits how many are rolled back; steps <= 0 rolls back all.
func (m *Migrator) Down(ctx context.Context, steps int) (int, error) {
	files, err := listMigrations(m.fsys, "_down.sql")
	if err != nil {
		return 0, err
	}
	reverse(files)
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}
	return m.apply(ctx, files)
}

func (m *Migrator) apply(ctx context.Context, files []string) (int, error) {
	for i, name := range files {
		sql, err := fs.ReadFile(m.fsys, name)
		if err != nil {
			return i, fmt.Errorf("read migration %s: %w", name, err)
		}

		start := time.Now()
		if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
			return i, fmt.Errorf("exec migration %s: %w", name, err)
		}

		logging.Info().
			Str("component", "store").
			Str("migration", name).
			Dur("duration", time.Since(start)).
			Msg("Applied migration")
	}
	return len(files), nil
}

// listMigrations returns the migration files with the given suffix in
// ascending name order.
func listMigrations(fsys fs.FS, suffix string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func reverse(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}
