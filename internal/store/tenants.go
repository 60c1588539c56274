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

// GetTenant retrieves a tenant by ID.
func (s *Store) GetTenant(ctx context.Context, id uuid.UUID) (tenant *models.Tenant, err error) {
	defer func(start time.Time) { observe("select", "tenants", start, err) }(time.Now())

	const query = `
SELECT id, name, active, created_at, updated_at
FROM tenants
WHERE id = $1`

	var t models.Tenant
	err = s.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return &t, nil
}

// ListTenants retrieves all tenants, optionally only active ones. The fleet
// sweep iterates the active set; the operator API lists everything.
func (s *Store) ListTenants(ctx context.Context, activeOnly bool) (tenants []models.Tenant, err error) {
	defer func(start time.Time) { observe("select", "tenants", start, err) }(time.Now())

	query := `
SELECT id, name, active, created_at, updated_at
FROM tenants`
	if activeOnly {
		query += `
WHERE active`
	}
	query += `
ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants = make([]models.Tenant, 0)
	for rows.Next() {
		var t models.Tenant
		if err = rows.Scan(&t.ID, &t.Name, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}
	return tenants, nil
}

// ListCreators retrieves a tenant's creators in stable creation order,
// optionally only active ones. Callers decide what to do with creators that
// have no external UUID (the orchestrator skips them).
func (s *Store) ListCreators(ctx context.Context, tenantID uuid.UUID, activeOnly bool) (creators []models.Creator, err error) {
	defer func(start time.Time) { observe("select", "creators", start, err) }(time.Now())

	query := `
SELECT id, tenant_id, display_name, external_uuid, active, created_at, updated_at
FROM creators
WHERE tenant_id = $1`
	if activeOnly {
		query += `
  AND active`
	}
	query += `
ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	defer rows.Close()

	creators = make([]models.Creator, 0)
	for rows.Next() {
		var c models.Creator
		if err = rows.Scan(&c.ID, &c.TenantID, &c.DisplayName, &c.ExternalUUID, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		creators = append(creators, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating creators: %w", err)
	}
	return creators, nil
}
