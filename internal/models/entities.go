// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package models

import (
	"time"

	"github.com/google/uuid"
)

// The five synced entity types. Every entity carries:
//
//   - ExternalUUID: the record's identity on the Fanline platform.
//   - OwnerID: the local Creator the record belongs to.
//
// (ExternalUUID, OwnerID) is the storage conflict key: re-syncing the same
// upstream record updates the existing row, never duplicates it. Monetary
// amounts are integer cents to avoid float drift.

// TrackingLink is a promotional tracking link with upstream-reported click
// performance. Clicks and UniqueClicks are cumulative snapshots overwritten
// on every sync.
type TrackingLink struct {
	ExternalUUID string     `json:"external_uuid"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	Name         string     `json:"name"`
	TargetURL    string     `json:"target_url"`
	Clicks       int64      `json:"clicks"`
	UniqueClicks int64      `json:"unique_clicks"`
	LastClickAt  *time.Time `json:"last_click_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"` // upstream creation time
	SyncedAt     time.Time  `json:"synced_at"`
}

// EarningRecord is a single earnings ledger entry (subscription payment,
// tip, pay-per-view purchase, referral bonus).
type EarningRecord struct {
	ExternalUUID string    `json:"external_uuid"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Source       string    `json:"source"` // subscription, tip, ppv, referral
	GrossCents   int64     `json:"gross_cents"`
	NetCents     int64     `json:"net_cents"`
	Currency     string    `json:"currency"`
	EarnedAt     time.Time `json:"earned_at"`
	SyncedAt     time.Time `json:"synced_at"`
}

// ChatThread is a conversation between a creator and one fan. Counts and
// spend are upstream snapshots.
type ChatThread struct {
	ExternalUUID    string     `json:"external_uuid"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	FanHandle       string     `json:"fan_handle"`
	MessageCount    int64      `json:"message_count"`
	UnreadCount     int64      `json:"unread_count"`
	TotalSpendCents int64      `json:"total_spend_cents"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	SyncedAt        time.Time  `json:"synced_at"`
}

// MediaAsset is a piece of published content (photo, video, audio) with its
// engagement and sales snapshot.
type MediaAsset struct {
	ExternalUUID  string    `json:"external_uuid"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Kind          string    `json:"kind"` // photo, video, audio
	Title         string    `json:"title"`
	Likes         int64     `json:"likes"`
	PurchaseCount int64     `json:"purchase_count"`
	PriceCents    int64     `json:"price_cents"`
	PostedAt      time.Time `json:"posted_at"`
	SyncedAt      time.Time `json:"synced_at"`
}

// Subscriber is one entry in a creator's audience list.
type Subscriber struct {
	ExternalUUID    string     `json:"external_uuid"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	Handle          string     `json:"handle"`
	Status          string     `json:"status"` // active, expired, cancelled
	TotalSpendCents int64      `json:"total_spend_cents"`
	RenewEnabled    bool       `json:"renew_enabled"`
	SubscribedAt    time.Time  `json:"subscribed_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	SyncedAt        time.Time  `json:"synced_at"`
}
