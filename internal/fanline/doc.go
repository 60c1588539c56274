// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

/*
Package fanline is the HTTP client layer for the Fanline creator platform API.

It fetches the five synced resource streams (tracking-links, earnings, chats,
media, subscribers) for one owner at a time, page by page, and converts the
upstream wire format into the internal models. Orchestration — walking a
tenant's creators, looping the pagination, persisting records — lives in
internal/syncengine; this package only talks to the wire.

Key Components:

  - Client: one method per resource, each fetching a single page under the
    owner's resolved credential (client.go)
  - Transport: bounded retry around each HTTP call — 429 absorption honoring
    Retry-After, capped exponential backoff on network errors, rate-limit
    quota header observation (transport.go)
  - Per-credential pacing and circuit breaking: a token-bucket limiter spaces
    requests under the same credential, a breaker fails fast when the
    upstream persistently errors for it (pacing.go)
  - Typed error taxonomy with outcome classification for callers (errors.go)

Error Handling:

Non-2xx responses become typed errors rather than raw statuses: 404 is
ErrNotFound (the owner simply has no records — not a failure), 403 is a
*ForbiddenError naming the capability the credential is missing, exhausted
429 retries are ErrRateLimitExceeded, and everything else is a generic
*UpstreamError with a body excerpt. Callers branch via Classify:

	page, err := client.Earnings(ctx, cred, externalUUID, cursor, 100)
	switch fanline.Classify(err) {
	case fanline.OutcomeOk:
	    // append page.Items, follow page.NextCursor
	case fanline.OutcomeEmpty:
	    // zero records, done with this creator
	case fanline.OutcomeForbidden:
	    // record a creator-scoped error, continue with the next creator
	default:
	    // rate limited or failed: record and continue
	}

Resilience Defaults:

  - Retry budget: 3 (config upstream.retry_max, 0 disables retries)
  - 429 wait: Retry-After header, 60s when absent, plus 0-1s jitter
  - Network backoff: 1s doubling per attempt, capped at 30s, plus jitter
  - Pacing: 5 requests/second per credential (config), burst 10
  - Breaker: opens at 60% failures over >= 10 requests, 2 minute cool-off

All waits are cancellable through the request context.
*/
package fanline
