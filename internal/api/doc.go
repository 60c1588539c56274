// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

/*
Package api provides the operator HTTP surface for Upsync.

The API triggers and observes sync work; it is not a staff-facing product
surface. Endpoints fall into three groups:

 1. Health and observability: /api/v1/health, /api/v1/health/live,
    /api/v1/health/ready, and Prometheus /metrics.

 2. Sync control: POST /api/v1/tenants/{tenantID}/sync/{resource} starts a
    run (202 with the accepted run, or ?wait=true for the finished report),
    and POST /api/v1/sync/sweep runs one resource across all active tenants.

 3. Read-only inventory: sync run history per tenant or by run ID, the
    tenant list, and each tenant's creators.

Responses use the models.APIResponse envelope. Middleware is assembled from
the chi ecosystem: go-chi/cors for CORS, go-chi/httprate for per-tier rate
limits (health endpoints permissive, sync triggers strict), request-ID
propagation into the logging context, and an optional static X-Api-Key
guard for deployments that expose the port beyond localhost.
*/
package api
