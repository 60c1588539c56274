// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package fanline

import (
	"errors"
	"fmt"

	"github.com/creatorops/upsync/internal/models"
)

// Sentinel errors for the upstream conditions callers branch on. Client
// methods wrap these with request detail; always test with errors.Is.
var (
	// ErrRateLimitExceeded means the retry budget was exhausted against
	// HTTP 429 responses. Retryable on a later run, after the upstream
	// window resets.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrNotFound means the owner has zero records for the resource
	// (HTTP 404). Benign: treated as an empty result set, never surfaced
	// as a run error.
	ErrNotFound = errors.New("owner has no records")

	// ErrForbidden means the credential is valid but lacks the capability
	// guarding the resource (HTTP 403). Not retryable; fixing it requires
	// re-authorization with the missing grant. Returned wrapped inside a
	// *ForbiddenError naming the capability.
	ErrForbidden = errors.New("credential lacks required capability")
)

// ForbiddenError is the typed form of ErrForbidden. Capability names the
// grant the credential is missing so the run error is actionable without
// digging through upstream logs.
type ForbiddenError struct {
	Capability string // missing grant, e.g. "earnings:read"
	Detail     string // upstream body excerpt, may be empty
}

func (e *ForbiddenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("credential lacks capability %q: %s", e.Capability, e.Detail)
	}
	return fmt.Sprintf("credential lacks capability %q", e.Capability)
}

// Is makes errors.Is(err, ErrForbidden) match the typed form.
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// requiredCapability maps a resource to the upstream grant that guards it.
func requiredCapability(resource models.Resource) string {
	return string(resource) + ":read"
}

// UpstreamError is a non-2xx Fanline response that maps to no sentinel:
// server errors, auth failures other than 403, unexpected statuses. Body
// holds an excerpt of the response for diagnostics (capped, may be empty).
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Outcome tags the result of one creator's fetch so the orchestrator can
// branch without string-matching error text. Derived from the typed errors
// above via Classify.
type Outcome int

const (
	// OutcomeOk: the fetch succeeded and returned data.
	OutcomeOk Outcome = iota

	// OutcomeEmpty: upstream 404, the owner has no records. Zero results,
	// not an error.
	OutcomeEmpty

	// OutcomeForbidden: the credential lacks a capability. Recorded as a
	// creator-scoped error; the run continues with the next creator.
	OutcomeForbidden

	// OutcomeRateLimited: the retry budget was exhausted against 429s.
	OutcomeRateLimited

	// OutcomeFailed: any other failure (network exhaustion, server error,
	// malformed response, cancellation).
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Classify maps an error from a client call onto its outcome tag.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOk
	case errors.Is(err, ErrNotFound):
		return OutcomeEmpty
	case errors.Is(err, ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, ErrRateLimitExceeded):
		return OutcomeRateLimited
	default:
		return OutcomeFailed
	}
}
