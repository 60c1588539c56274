// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/creatorops/upsync/internal/models"
	"github.com/creatorops/upsync/internal/syncengine"
)

// TriggerSync handles POST /api/v1/tenants/{tenantID}/sync/{resource}.
//
// By default the run is accepted and finishes in the background: the
// response is 202 with the running SyncRun, and clients poll
// GET /api/v1/sync/runs/{runID} for the outcome. With ?wait=true the
// handler blocks and returns the finished report inline; the run is then
// bounded by both the configured run timeout and the server's write
// timeout.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantID")
	if !ok {
		return
	}

	resource, err := models.ParseResource(chi.URLParam(r, "resource"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	if getBoolParam(r, "wait", false) {
		report, err := h.engine.SyncResource(r.Context(), tenantID, resource)
		if err != nil {
			respondEngineError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, report)
		return
	}

	run, err := h.engine.StartResource(r.Context(), tenantID, resource)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondSuccess(w, http.StatusAccepted, run)
}

// Sweep handles POST /api/v1/sync/sweep: one resource across every active
// tenant, inline. Sweeps are long; callers on a deadline should trigger
// per-tenant runs instead.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Request body must be JSON with a resource field", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	resource, err := models.ParseResource(req.Resource)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	report, err := h.engine.Sweep(r.Context(), resource)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeSyncFailed, "Sweep failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, report)
}

// GetSyncRun handles GET /api/v1/sync/runs/{runID}.
func (h *Handler) GetSyncRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := parseUUIDParam(w, r, "runID")
	if !ok {
		return
	}

	run, err := h.store.GetSyncRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "Sync run not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load sync run", err)
		return
	}
	respondSuccess(w, http.StatusOK, run)
}

// ListTenantRuns handles GET /api/v1/tenants/{tenantID}/sync/runs, newest
// first, bounded by ?limit (default 50).
func (h *Handler) ListTenantRuns(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseUUIDParam(w, r, "tenantID")
	if !ok {
		return
	}

	req := ListRunsRequest{Limit: getIntParam(r, "limit", 50)}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	if _, err := h.store.GetTenant(r.Context(), tenantID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "Tenant not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to load tenant", err)
		return
	}

	runs, err := h.store.ListSyncRuns(r.Context(), tenantID, req.Limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "Failed to list sync runs", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// respondEngineError maps orchestrator start errors onto HTTP statuses:
// unknown tenant is 404, an overlapping run is 409, anything else is the
// engine failing to start at all.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Tenant not found", nil)
	case errors.Is(err, syncengine.ErrSyncInProgress):
		respondError(w, http.StatusConflict, ErrCodeConflict, "A sync for this tenant and resource is already running", nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeSyncFailed, "Sync could not be started", err)
	}
}

// respondValidationError writes a 400 with the translated field errors.
func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

// parseUUIDParam extracts and parses a UUID path parameter, writing the 400
// itself when the value is malformed.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, name+" must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}
