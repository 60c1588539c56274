// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/creatorops/upsync/internal/models"
	"github.com/creatorops/upsync/internal/syncengine"
)

// Store is the subset of the persistence layer the handlers read from.
type Store interface {
	Ping(ctx context.Context) error
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListTenants(ctx context.Context, activeOnly bool) ([]models.Tenant, error)
	ListCreators(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.Creator, error)
	GetSyncRun(ctx context.Context, id uuid.UUID) (*models.SyncRun, error)
	ListSyncRuns(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.SyncRun, error)
}

// SyncEngine is the subset of the orchestrator the handlers drive.
type SyncEngine interface {
	SyncResource(ctx context.Context, tenantID uuid.UUID, resource models.Resource) (*models.SyncReport, error)
	StartResource(ctx context.Context, tenantID uuid.UUID, resource models.Resource) (*models.SyncRun, error)
	Sweep(ctx context.Context, resource models.Resource) (*syncengine.SweepReport, error)
}

// Handler carries the dependencies for all operator API endpoints.
type Handler struct {
	store     Store
	engine    SyncEngine
	version   string
	startTime time.Time
}

// NewHandler creates the API handler set.
func NewHandler(store Store, engine SyncEngine, version string) *Handler {
	return &Handler{
		store:     store,
		engine:    engine,
		version:   version,
		startTime: time.Now(),
	}
}
