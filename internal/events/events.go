// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package events publishes sync run lifecycle events to NATS JetStream via
// Watermill. Publishing is advisory: the sync engine never blocks or fails a
// run because an event could not be delivered. The package also hosts the
// optional embedded NATS server for single-instance deployments.
package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/creatorops/upsync/internal/models"
)

// SchemaVersion is the current run event schema version. Increment on
// breaking changes to RunEvent.
const SchemaVersion = 1

// Run lifecycle event names, also the final subject token.
const (
	EventRunStarted   = "started"
	EventRunCompleted = "completed"
)

// RunEvent is the wire format for sync run lifecycle notifications.
// A "started" event carries the running status and zeroed counters; a
// "completed" event carries the terminal status, counters, and errors.
type RunEvent struct {
	SchemaVersion int    `json:"schema_version"`
	Event         string `json:"event"` // started, completed

	RunID    uuid.UUID        `json:"run_id"`
	TenantID uuid.UUID        `json:"tenant_id"`
	Resource models.Resource  `json:"resource"`
	Status   models.RunStatus `json:"status"`

	Synced            int      `json:"synced"`
	CreatorsProcessed int      `json:"creators_processed"`
	Errors            []string `json:"errors,omitempty"`

	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	PublishedAt time.Time  `json:"published_at"`
}

// NewRunEvent snapshots a sync run into a lifecycle event.
func NewRunEvent(event string, run *models.SyncRun) *RunEvent {
	return &RunEvent{
		SchemaVersion:     SchemaVersion,
		Event:             event,
		RunID:             run.ID,
		TenantID:          run.TenantID,
		Resource:          run.Resource,
		Status:            run.Status,
		Synced:            run.Synced,
		CreatorsProcessed: run.CreatorsProcessed,
		Errors:            run.Errors,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
		PublishedAt:       time.Now().UTC(),
	}
}

// Validate checks required fields before the event goes on the wire.
func (e *RunEvent) Validate() error {
	if e.Event != EventRunStarted && e.Event != EventRunCompleted {
		return fmt.Errorf("unknown event %q", e.Event)
	}
	if e.RunID == uuid.Nil {
		return fmt.Errorf("run_id required")
	}
	if e.TenantID == uuid.Nil {
		return fmt.Errorf("tenant_id required")
	}
	if e.Resource == "" {
		return fmt.Errorf("resource required")
	}
	return nil
}

// Subject returns the NATS subject for this event.
// Format: <prefix>.sync.run.<event>, e.g. upsync.sync.run.completed.
func (e *RunEvent) Subject(prefix string) string {
	return prefix + ".sync.run." + e.Event
}

// MessageID returns the deduplication identity for this event. A re-publish
// of the same run phase collapses inside the JetStream duplicate window.
func (e *RunEvent) MessageID() string {
	return e.RunID.String() + ":" + e.Event
}

// SerializeRunEvent validates and marshals an event to JSON.
func SerializeRunEvent(event *RunEvent) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DeserializeRunEvent unmarshals JSON to an event.
func DeserializeRunEvent(data []byte) (*RunEvent, error) {
	var event RunEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}
