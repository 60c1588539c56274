// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

import (
	"errors"
	"net/http"

	"github.com/creatorops/upsync/internal/models"
)

// ListTenants handles GET /api/v1/tenants. ?active_only=true filters to
// tenants eligible for sweeps.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	activeOnly := getBoolParam(r, "active_only", false)

	tenants, err := h.store.ListTenants(r.Context(), activeOnly)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to list tenants", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"count":   len(tenants),
	})
}

// ListCreators handles GET /api/v1/tenants/{tenantID}/creators.
func (h *Handler) ListCreators(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantID")
	if !ok {
		return
	}
	activeOnly := getBoolParam(r, "active_only", false)

	if _, err := h.store.GetTenant(r.Context(), tenantID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "Tenant not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load tenant", err)
		return
	}

	creators, err := h.store.ListCreators(r.Context(), tenantID, activeOnly)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to list creators", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"creators": creators,
		"count":    len(creators),
	})
}
