// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/creatorops/upsync/internal/models"
)

// Entity upserts. Each is keyed (owner_id, external_uuid): the first sync
// inserts, every later sync overwrites the mutable fields wholesale with the
// upstream snapshot. A no-op upsert (identical values) succeeds. One record
// per call so the orchestrator can record and skip individual failures.

// UpsertTrackingLink inserts or updates one tracking link snapshot.
func (s *Store) UpsertTrackingLink(ctx context.Context, link *models.TrackingLink) (err error) {
	defer func(start time.Time) { observe("upsert", "tracking_links", start, err) }(time.Now())

	const query = `
INSERT INTO tracking_links (external_uuid, owner_id, name, target_url, clicks, unique_clicks, last_click_at, created_at, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (owner_id, external_uuid) DO UPDATE SET
    name          = EXCLUDED.name,
    target_url    = EXCLUDED.target_url,
    clicks        = EXCLUDED.clicks,
    unique_clicks = EXCLUDED.unique_clicks,
    last_click_at = EXCLUDED.last_click_at,
    created_at    = EXCLUDED.created_at,
    synced_at     = EXCLUDED.synced_at`

	_, err = s.pool.Exec(ctx, query,
		link.ExternalUUID, link.OwnerID, link.Name, link.TargetURL,
		link.Clicks, link.UniqueClicks, link.LastClickAt, link.CreatedAt, link.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tracking link %s: %w", link.ExternalUUID, err)
	}
	return nil
}

// UpsertEarningRecord inserts or updates one earnings ledger entry.
func (s *Store) UpsertEarningRecord(ctx context.Context, rec *models.EarningRecord) (err error) {
	defer func(start time.Time) { observe("upsert", "earning_records", start, err) }(time.Now())

	const query = `
INSERT INTO earning_records (external_uuid, owner_id, source, gross_cents, net_cents, currency, earned_at, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (owner_id, external_uuid) DO UPDATE SET
    source      = EXCLUDED.source,
    gross_cents = EXCLUDED.gross_cents,
    net_cents   = EXCLUDED.net_cents,
    currency    = EXCLUDED.currency,
    earned_at   = EXCLUDED.earned_at,
    synced_at   = EXCLUDED.synced_at`

	_, err = s.pool.Exec(ctx, query,
		rec.ExternalUUID, rec.OwnerID, rec.Source,
		rec.GrossCents, rec.NetCents, rec.Currency, rec.EarnedAt, rec.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert earning record %s: %w", rec.ExternalUUID, err)
	}
	return nil
}

// UpsertChatThread inserts or updates one fan conversation snapshot.
func (s *Store) UpsertChatThread(ctx context.Context, thread *models.ChatThread) (err error) {
	defer func(start time.Time) { observe("upsert", "chat_threads", start, err) }(time.Now())

	const query = `
INSERT INTO chat_threads (external_uuid, owner_id, fan_handle, message_count, unread_count, total_spend_cents, last_message_at, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (owner_id, external_uuid) DO UPDATE SET
    fan_handle        = EXCLUDED.fan_handle,
    message_count     = EXCLUDED.message_count,
    unread_count      = EXCLUDED.unread_count,
    total_spend_cents = EXCLUDED.total_spend_cents,
    last_message_at   = EXCLUDED.last_message_at,
    synced_at         = EXCLUDED.synced_at`

	_, err = s.pool.Exec(ctx, query,
		thread.ExternalUUID, thread.OwnerID, thread.FanHandle,
		thread.MessageCount, thread.UnreadCount, thread.TotalSpendCents,
		thread.LastMessageAt, thread.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chat thread %s: %w", thread.ExternalUUID, err)
	}
	return nil
}

// UpsertMediaAsset inserts or updates one published content snapshot.
func (s *Store) UpsertMediaAsset(ctx context.Context, asset *models.MediaAsset) (err error) {
	defer func(start time.Time) { observe("upsert", "media_assets", start, err) }(time.Now())

	const query = `
INSERT INTO media_assets (external_uuid, owner_id, kind, title, likes, purchase_count, price_cents, posted_at, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (owner_id, external_uuid) DO UPDATE SET
    kind           = EXCLUDED.kind,
    title          = EXCLUDED.title,
    likes          = EXCLUDED.likes,
    purchase_count = EXCLUDED.purchase_count,
    price_cents    = EXCLUDED.price_cents,
    posted_at      = EXCLUDED.posted_at,
    synced_at      = EXCLUDED.synced_at`

	_, err = s.pool.Exec(ctx, query,
		asset.ExternalUUID, asset.OwnerID, asset.Kind, asset.Title,
		asset.Likes, asset.PurchaseCount, asset.PriceCents, asset.PostedAt, asset.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert media asset %s: %w", asset.ExternalUUID, err)
	}
	return nil
}

// UpsertSubscriber inserts or updates one audience list entry.
func (s *Store) UpsertSubscriber(ctx context.Context, sub *models.Subscriber) (err error) {
	defer func(start time.Time) { observe("upsert", "subscribers", start, err) }(time.Now())

	const query = `
INSERT INTO subscribers (external_uuid, owner_id, handle, status, total_spend_cents, renew_enabled, subscribed_at, expires_at, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (owner_id, external_uuid) DO UPDATE SET
    handle            = EXCLUDED.handle,
    status            = EXCLUDED.status,
    total_spend_cents = EXCLUDED.total_spend_cents,
    renew_enabled     = EXCLUDED.renew_enabled,
    subscribed_at     = EXCLUDED.subscribed_at,
    expires_at        = EXCLUDED.expires_at,
    synced_at         = EXCLUDED.synced_at`

	_, err = s.pool.Exec(ctx, query,
		sub.ExternalUUID, sub.OwnerID, sub.Handle, sub.Status,
		sub.TotalSpendCents, sub.RenewEnabled, sub.SubscribedAt, sub.ExpiresAt, sub.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscriber %s: %w", sub.ExternalUUID, err)
	}
	return nil
}
