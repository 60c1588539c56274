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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/creatorops/upsync/internal/models"
)

// TenantCredential retrieves the agency-level credential for a tenant.
// When several tenant-scoped rows exist (re-authorization), the most
// recently updated one wins. Absence is models.ErrNotFound.
//
// Credentials are written by the out-of-band authorization flow; this core
// only ever reads them.
func (s *Store) TenantCredential(ctx context.Context, tenantID uuid.UUID) (cred *models.Credential, err error) {
	defer func(start time.Time) { observe("select", "credentials", start, err) }(time.Now())

	const query = `
SELECT id, tenant_id, creator_id, scope, status, encrypted_token, created_at, updated_at
FROM credentials
WHERE tenant_id = $1 AND scope = 'tenant'
ORDER BY updated_at DESC
LIMIT 1`

	return s.scanCredential(s.pool.QueryRow(ctx, query, tenantID))
}

// CreatorCredential retrieves the creator-scoped credential override.
// Absence is models.ErrNotFound (the resolver then falls back to the
// tenant credential).
func (s *Store) CreatorCredential(ctx context.Context, creatorID uuid.UUID) (cred *models.Credential, err error) {
	defer func(start time.Time) { observe("select", "credentials", start, err) }(time.Now())

	const query = `
SELECT id, tenant_id, creator_id, scope, status, encrypted_token, created_at, updated_at
FROM credentials
WHERE creator_id = $1 AND scope = 'creator'
ORDER BY updated_at DESC
LIMIT 1`

	return s.scanCredential(s.pool.QueryRow(ctx, query, creatorID))
}

func (s *Store) scanCredential(row pgx.Row) (*models.Credential, error) {
	var c models.Credential
	err := row.Scan(&c.ID, &c.TenantID, &c.CreatorID, &c.Scope, &c.Status, &c.EncryptedToken, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &c, nil
}
