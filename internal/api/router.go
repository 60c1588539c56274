// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the operator API from handlers and middleware.
type Router struct {
	handler *Handler
	mw      *Middleware
}

// NewRouter creates a router around the handler set.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	return &Router{handler: handler, mw: mw}
}

// Setup wires all routes and returns the root handler.
//
// Health endpoints and /metrics sit outside the API key guard so probes and
// scrapers need no credentials; everything else goes through the default
// rate limit, security headers, Prometheus instrumentation, and the
// optional key check. Sync triggers additionally pass the strict limiter.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(router.mw.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.mw.RateLimitHealth())
		r.Use(SecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.With(router.mw.RateLimitHealth()).Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Use(router.mw.RequireAPIKey())

		r.Get("/tenants", router.handler.ListTenants)
		r.Get("/tenants/{tenantID}/creators", router.handler.ListCreators)
		r.Get("/tenants/{tenantID}/sync/runs", router.handler.ListTenantRuns)
		r.Get("/sync/runs/{runID}", router.handler.GetSyncRun)

		r.Group(func(r chi.Router) {
			r.Use(router.mw.RateLimitSync())
			r.Post("/tenants/{tenantID}/sync/{resource}", router.handler.TriggerSync)
			r.Post("/sync/sweep", router.handler.Sweep)
		})
	})

	return r
}
