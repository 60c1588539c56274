// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/metrics"
	"github.com/creatorops/upsync/internal/models"
	"github.com/creatorops/upsync/internal/syncengine"
)

// Sink publishes run lifecycle events for the sync engine. Publish failures
// are logged and counted, never surfaced to the run: events are advisory and
// a broker outage must not fail syncs.
type Sink struct {
	publisher *Publisher
	prefix    string
}

var _ syncengine.EventSink = (*Sink)(nil)

// NewSink creates a sink publishing under the given subject prefix.
func NewSink(publisher *Publisher, prefix string) *Sink {
	return &Sink{publisher: publisher, prefix: prefix}
}

// RunStarted implements syncengine.EventSink.
func (s *Sink) RunStarted(ctx context.Context, run *models.SyncRun) {
	s.publish(ctx, EventRunStarted, run)
}

// RunCompleted implements syncengine.EventSink.
func (s *Sink) RunCompleted(ctx context.Context, run *models.SyncRun) {
	s.publish(ctx, EventRunCompleted, run)
}

func (s *Sink) publish(ctx context.Context, event string, run *models.SyncRun) {
	ev := NewRunEvent(event, run)

	data, err := SerializeRunEvent(ev)
	if err == nil {
		msg := message.NewMessage(ev.MessageID(), data)
		msg.Metadata.Set("tenant_id", ev.TenantID.String())
		msg.Metadata.Set("resource", string(ev.Resource))
		msg.Metadata.Set("event", event)
		err = s.publisher.Publish(ctx, ev.Subject(s.prefix), msg)
	}

	metrics.RecordRunEvent(event, err)
	if err != nil {
		logging.CtxWarn(ctx).
			Str("component", "events").
			Str("run_id", run.ID.String()).
			Str("event", event).
			Err(err).
			Msg("Failed to publish run event")
	}
}
