// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package credentials resolves and protects Fanline bearer credentials.
//
// The resolver follows the platform's fallback chain: a creator-scoped
// credential wins when it is active; otherwise the tenant's agency-level
// credential is used. Tokens are stored AES-256-GCM encrypted and decrypted
// only here, immediately before use.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/metrics"
	"github.com/creatorops/upsync/internal/models"
)

// ErrNoCredential indicates no usable credential exists at any fallback
// level. Fatal for the requested scope: callers must not synthesize or
// cache a placeholder credential.
var ErrNoCredential = errors.New("no usable credential")

// Source loads credential rows from storage. Absence is reported as
// models.ErrNotFound; any other error is a storage failure.
type Source interface {
	TenantCredential(ctx context.Context, tenantID uuid.UUID) (*models.Credential, error)
	CreatorCredential(ctx context.Context, creatorID uuid.UUID) (*models.Credential, error)
}

// Resolved is a credential ready for upstream use: the row it came from
// plus the decrypted bearer token. Token never appears in logs; use
// MaskCredential for display.
type Resolved struct {
	Credential *models.Credential
	Token      string
}

// Masked returns the display-safe token form, used as the pacing and
// metrics key for the credential.
func (r *Resolved) Masked() string {
	return MaskCredential(r.Token)
}

// Resolver produces usable bearer credentials for sync operations.
// Resolved credentials are cached in-process with a short TTL so a full
// pagination pass does not hit the store once per page.
type Resolver struct {
	source Source
	cipher *Cipher
	cache  *gocache.Cache
}

// NewResolver creates a resolver backed by the given source and cipher.
// cacheTTL bounds how long a resolved credential may be reused without a
// fresh store read; revocations are picked up after at most that long.
func NewResolver(source Source, cipher *Cipher, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		source: source,
		cipher: cipher,
		cache:  gocache.New(cacheTTL, time.Minute),
	}
}

// Resolve returns a usable credential for the creator, falling back to the
// tenant's agency-level credential. creatorID may be nil to resolve the
// tenant scope directly (the orchestrator does this once per run).
//
// A creator credential that exists but is expired or revoked is skipped
// with a warning; it must be re-authorized out of band and is never
// retried automatically.
func (r *Resolver) Resolve(ctx context.Context, tenantID uuid.UUID, creatorID *uuid.UUID) (*Resolved, error) {
	if creatorID != nil {
		resolved, err := r.creatorScoped(ctx, tenantID, *creatorID)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			return resolved, nil
		}
		// fall through to tenant scope
	}

	return r.tenantScoped(ctx, tenantID)
}

// creatorScoped returns the creator's own credential when it is active,
// nil when the resolver should fall back to the tenant scope.
func (r *Resolver) creatorScoped(ctx context.Context, tenantID, creatorID uuid.UUID) (*Resolved, error) {
	key := "creator:" + creatorID.String()
	if cached, ok := r.cache.Get(key); ok {
		metrics.RecordCredentialCache(true)
		return cached.(*Resolved), nil
	}
	metrics.RecordCredentialCache(false)

	cred, err := r.source.CreatorCredential(ctx, creatorID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil // no creator grant, the normal case
		}
		return nil, fmt.Errorf("load creator credential: %w", err)
	}

	if !cred.Status.Usable() {
		logging.CtxWarn(ctx).
			Str("component", "credentials").
			Str("tenant_id", tenantID.String()).
			Str("creator_id", creatorID.String()).
			Str("credential_id", cred.ID.String()).
			Str("status", string(cred.Status)).
			Msg("Creator credential unusable, falling back to tenant credential")
		metrics.RecordCredentialFallback(string(cred.Status))
		return nil, nil
	}

	resolved, err := r.open(cred)
	if err != nil {
		return nil, err
	}

	r.cache.Set(key, resolved, gocache.DefaultExpiration)
	return resolved, nil
}

func (r *Resolver) tenantScoped(ctx context.Context, tenantID uuid.UUID) (*Resolved, error) {
	key := "tenant:" + tenantID.String()
	if cached, ok := r.cache.Get(key); ok {
		metrics.RecordCredentialCache(true)
		return cached.(*Resolved), nil
	}
	metrics.RecordCredentialCache(false)

	cred, err := r.source.TenantCredential(ctx, tenantID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrNoCredential)
		}
		return nil, fmt.Errorf("load tenant credential: %w", err)
	}

	if !cred.Status.Usable() {
		return nil, fmt.Errorf("tenant %s credential %s: %w", tenantID, cred.Status, ErrNoCredential)
	}

	resolved, err := r.open(cred)
	if err != nil {
		return nil, err
	}

	r.cache.Set(key, resolved, gocache.DefaultExpiration)
	return resolved, nil
}

// open decrypts the stored token.
func (r *Resolver) open(cred *models.Credential) (*Resolved, error) {
	token, err := r.cipher.Decrypt(cred.EncryptedToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential %s: %w", cred.ID, err)
	}
	if token == "" {
		return nil, fmt.Errorf("credential %s: empty token after decryption", cred.ID)
	}
	return &Resolved{Credential: cred, Token: token}, nil
}

// Invalidate drops any cached resolution for the given scopes. Called when
// an upstream 401/403 suggests a credential changed under us.
func (r *Resolver) Invalidate(tenantID uuid.UUID, creatorID *uuid.UUID) {
	r.cache.Delete("tenant:" + tenantID.String())
	if creatorID != nil {
		r.cache.Delete("creator:" + creatorID.String())
	}
}
