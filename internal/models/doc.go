// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

/*
Package models defines the data structures shared across Upsync.

It is the single source of truth for the tenancy model (Tenant, Creator,
Credential), the five synced entity types pulled from the Fanline platform
(TrackingLink, EarningRecord, ChatThread, MediaAsset, Subscriber), sync run
bookkeeping (SyncRun, SyncReport), and the operator API response envelope.

Model Categories:

 1. Tenancy models:
    Tenant (agency account), Creator (managed sub-account), Credential
    (scoped bearer token, stored encrypted).

 2. Synced entities:
    Each entity is identified by (ExternalUUID, OwnerID) where OwnerID is
    the local Creator. The pair is unique in storage; re-sync updates in
    place. Numeric fields are upstream-reported snapshots, overwritten
    wholesale on each sync, never incremented locally.

 3. Run bookkeeping:
    SyncRun rows record each orchestration pass and are immutable once a
    terminal status is written. SyncReport is the in-memory aggregate a
    sync invocation returns.

 4. API envelope:
    APIResponse / APIError / Metadata, the standard response wrapper used
    by every operator endpoint.

The upstream wire formats (Fanline JSON payloads, pagination envelopes) are
deliberately NOT defined here; they live in internal/fanline as explicit
per-resource response structs and are mapped into these models at the
client boundary.
*/
package models
