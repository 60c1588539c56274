// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

import (
	"net/http"
	"time"

	"github.com/creatorops/upsync/internal/models"
)

// Health reports overall service health: degraded when the database is
// unreachable, healthy otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store.Ping(r.Context()) == nil

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status":             status,
		"version":            h.version,
		"database_connected": dbConnected,
		"uptime_seconds":     time.Since(h.startTime).Seconds(),
	})
}

// HealthLive is the liveness probe: 200 whenever the process can answer,
// regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe: 200 only when the database answers,
// 503 otherwise so load balancers hold traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !dbConnected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"ready_to_serve":     dbConnected,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
