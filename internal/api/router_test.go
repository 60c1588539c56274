// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/models"
)

func TestNewRouter(t *testing.T) {
	handler := NewHandler(newFakeAPIStore(), &fakeSyncEngine{}, "test")
	mw := NewMiddleware(&config.ServerConfig{RateLimitReqs: 100, RateLimitWindow: time.Minute})

	router := NewRouter(handler, mw)

	if router == nil {
		t.Fatal("NewRouter returned nil")
	}
	if router.handler != handler {
		t.Error("handler not set")
	}
	if router.mw != mw {
		t.Error("middleware not set")
	}
}

func TestRouterSetup_AllRoutesWired(t *testing.T) {
	store := newFakeAPIStore()
	tenantID := store.addTenant("Amber Agency", true)
	runID := store.addRun(tenantID, models.ResourceMedia, models.RunCompleted)
	router := newTestRouter(store, &fakeSyncEngine{})

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"health", http.MethodGet, "/api/v1/health"},
		{"health live", http.MethodGet, "/api/v1/health/live"},
		{"health ready", http.MethodGet, "/api/v1/health/ready"},
		{"metrics", http.MethodGet, "/metrics"},
		{"list tenants", http.MethodGet, "/api/v1/tenants"},
		{"list creators", http.MethodGet, "/api/v1/tenants/" + tenantID.String() + "/creators"},
		{"list runs", http.MethodGet, "/api/v1/tenants/" + tenantID.String() + "/sync/runs"},
		{"get run", http.MethodGet, "/api/v1/sync/runs/" + runID.String()},
		{"trigger sync", http.MethodPost, "/api/v1/tenants/" + tenantID.String() + "/sync/earnings"},
		{"sweep", http.MethodPost, "/api/v1/sync/sweep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, nil)
			if w.Code == http.StatusNotFound {
				t.Errorf("%s %s: endpoint not found (404)", tt.method, tt.path)
			}
			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("%s %s: method not allowed (405)", tt.method, tt.path)
			}
		})
	}
}

func TestRouterSetup_UnknownRoute(t *testing.T) {
	router := newTestRouter(newFakeAPIStore(), &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/nonexistent", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRouterSetup_MethodNotAllowed(t *testing.T) {
	store := newFakeAPIStore()
	tenantID := store.addTenant("Amber Agency", true)
	router := newTestRouter(store, &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants/"+tenantID.String()+"/sync/earnings", nil)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestRouterSetup_MetricsExposition(t *testing.T) {
	router := newTestRouter(newFakeAPIStore(), &fakeSyncEngine{})

	// Touch an instrumented endpoint so the api_* series exist.
	doRequest(router, http.MethodGet, "/api/v1/tenants", nil)

	w := doRequest(router, http.MethodGet, "/metrics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, "# HELP") {
		t.Error("metrics exposition should contain HELP comments")
	}
	if !strings.Contains(body, "upsync_api_requests_total") {
		t.Error("metrics exposition should contain the api request counter")
	}
}

// panickyStore blows up on ListTenants to exercise the recoverer.
type panickyStore struct {
	*fakeAPIStore
}

func (s *panickyStore) ListTenants(_ context.Context, _ bool) ([]models.Tenant, error) {
	panic("store exploded")
}

func TestRouterSetup_RecovererCatchesPanics(t *testing.T) {
	router := newTestRouter(&panickyStore{newFakeAPIStore()}, &fakeSyncEngine{})

	w := doRequest(router, http.MethodGet, "/api/v1/tenants", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
