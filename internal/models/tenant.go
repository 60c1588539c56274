// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an agency-level account. It owns one or more Creators and may
// hold an agency-level Credential used as fallback when a creator has no
// credential of its own.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Creator is a managed content-creator sub-account belonging to exactly one
// Tenant.
//
// ExternalUUID is the creator's identity on the Fanline platform. It is nil
// until the account has been linked by the out-of-band authorization flow,
// and stable for the lifetime of the upstream account once set. Creators
// without an ExternalUUID are skipped during sync (nothing to fetch).
type Creator struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	DisplayName  string    `json:"display_name"`
	ExternalUUID *string   `json:"external_uuid,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CredentialScope identifies which level of the tenancy tree a credential
// is bound to.
type CredentialScope string

const (
	// ScopeTenant marks an agency-level credential shared by all of the
	// tenant's creators.
	ScopeTenant CredentialScope = "tenant"

	// ScopeCreator marks a credential granted for a single creator.
	ScopeCreator CredentialScope = "creator"
)

// CredentialStatus is the lifecycle state of a credential. Only active
// credentials are usable; expired and revoked credentials require
// re-authorization out of band and are never retried automatically.
type CredentialStatus string

const (
	CredentialActive  CredentialStatus = "active"
	CredentialExpired CredentialStatus = "expired"
	CredentialRevoked CredentialStatus = "revoked"
)

// Usable reports whether a credential in this status may be used for
// upstream requests.
func (s CredentialStatus) Usable() bool {
	return s == CredentialActive
}

// Credential is a bearer token for the Fanline API, scoped to either a
// Tenant or a Creator.
//
// EncryptedToken holds the AES-256-GCM ciphertext as stored at rest; it is
// decrypted only inside the credential resolver. Credentials are created by
// the out-of-band authorization flow and consumed read-only here.
type Credential struct {
	ID             uuid.UUID        `json:"id"`
	TenantID       uuid.UUID        `json:"tenant_id"`
	CreatorID      *uuid.UUID       `json:"creator_id,omitempty"` // nil for tenant scope
	Scope          CredentialScope  `json:"scope"`
	Status         CredentialStatus `json:"status"`
	EncryptedToken string           `json:"-"` // never serialized
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
