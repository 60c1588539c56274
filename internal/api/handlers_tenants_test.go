// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/creatorops/upsync/internal/models"
)

func (s *fakeAPIStore) addCreator(tenantID uuid.UUID, name string, active bool) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	creator := models.Creator{
		ID:          uuid.New(),
		TenantID:    tenantID,
		DisplayName: name,
		Active:      active,
		CreatedAt:   time.Now().UTC(),
	}
	s.creators[tenantID] = append(s.creators[tenantID], creator)
	return creator.ID
}

func TestListTenants_ReturnsAll(t *testing.T) {
	store := newFakeAPIStore()
	store.addTenant("Amber Agency", true)
	store.addTenant("Basalt Media", false)
	router := newTestRouter(store, &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if store.lastActiveOnly {
		t.Error("activeOnly should default to false")
	}

	envelope := decodeEnvelope(t, w.Body)
	var payload struct {
		Tenants []models.Tenant `json:"tenants"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.Count != 2 || len(payload.Tenants) != 2 {
		t.Errorf("count = %d, tenants = %d, want 2 each", payload.Count, len(payload.Tenants))
	}
}

func TestListTenants_ActiveOnly(t *testing.T) {
	store := newFakeAPIStore()
	store.addTenant("Amber Agency", true)
	store.addTenant("Basalt Media", false)
	router := newTestRouter(store, &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants?active_only=true", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if !store.lastActiveOnly {
		t.Error("activeOnly should be passed through to the store")
	}

	envelope := decodeEnvelope(t, w.Body)
	var payload struct {
		Tenants []models.Tenant `json:"tenants"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.Count != 1 {
		t.Errorf("count = %d, want 1", payload.Count)
	}
	if len(payload.Tenants) == 1 && payload.Tenants[0].Name != "Amber Agency" {
		t.Errorf("tenant = %q, want the active one", payload.Tenants[0].Name)
	}
}

func TestListTenants_StoreError(t *testing.T) {
	store := newFakeAPIStore()
	store.listErr = errors.New("connection reset")
	router := newTestRouter(store, &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	envelope := decodeEnvelope(t, w.Body)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeInternal {
		t.Errorf("expected %s error, got %+v", ErrCodeInternal, envelope.Error)
	}
}

func TestListCreators_Success(t *testing.T) {
	store := newFakeAPIStore()
	tenantID := store.addTenant("Amber Agency", true)
	store.addCreator(tenantID, "delta_rose", true)
	store.addCreator(tenantID, "kat.archive", false)
	router := newTestRouter(store, &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/"+tenantID.String()+"/creators", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := decodeEnvelope(t, w.Body)
	var payload struct {
		Creators []models.Creator `json:"creators"`
		Count    int              `json:"count"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
}

func TestListCreators_ActiveOnly(t *testing.T) {
	store := newFakeAPIStore()
	tenantID := store.addTenant("Amber Agency", true)
	store.addCreator(tenantID, "delta_rose", true)
	store.addCreator(tenantID, "kat.archive", false)
	router := newTestRouter(store, &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/"+tenantID.String()+"/creators?active_only=true", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	envelope := decodeEnvelope(t, w.Body)
	var payload struct {
		Creators []models.Creator `json:"creators"`
		Count    int              `json:"count"`
	}
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.Count != 1 {
		t.Errorf("count = %d, want 1", payload.Count)
	}
}

func TestListCreators_UnknownTenant(t *testing.T) {
	router := newTestRouter(newFakeAPIStore(), &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/"+uuid.NewString()+"/creators", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}

	envelope := decodeEnvelope(t, w.Body)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNotFound {
		t.Errorf("expected %s error, got %+v", ErrCodeNotFound, envelope.Error)
	}
}

func TestListCreators_MalformedTenantID(t *testing.T) {
	router := newTestRouter(newFakeAPIStore(), &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/42/creators", nil)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
