// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a SyncRun.
type RunStatus string

const (
	// RunRunning is the only non-terminal status.
	RunRunning RunStatus = "running"

	// RunCompleted means every creator synced without error.
	RunCompleted RunStatus = "completed"

	// RunCompletedWithErrors means at least one creator synced cleanly and
	// at least one error was recorded.
	RunCompletedWithErrors RunStatus = "completed_with_errors"

	// RunFailed means the run produced nothing: the tenant credential was
	// unusable, or every creator errored and no records were synced.
	RunFailed RunStatus = "failed"
)

// Terminal reports whether the status is final. Terminal runs are immutable;
// the store refuses to update them.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunCompletedWithErrors || s == RunFailed
}

// SyncRun records one orchestration pass for a (tenant, resource) pair.
// Created by the orchestrator when the pass starts, finalized exactly once
// with a terminal status. Never created anywhere else.
type SyncRun struct {
	ID                uuid.UUID  `json:"id"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	Resource          Resource   `json:"resource"`
	Status            RunStatus  `json:"status"`
	Synced            int        `json:"synced"`
	CreatorsProcessed int        `json:"creators_processed"`
	Errors            []string   `json:"errors"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
}

// SyncReport is the aggregate outcome of one SyncResource invocation.
//
// Synced counts successful upserts. CreatorsProcessed counts creators
// attempted regardless of outcome (creators without an external UUID count
// toward neither). Errors holds human-readable, creator-prefixed messages;
// an empty slice means a fully clean run.
type SyncReport struct {
	RunID             uuid.UUID `json:"run_id"`
	TenantID          uuid.UUID `json:"tenant_id"`
	Resource          Resource  `json:"resource"`
	Status            RunStatus `json:"status"`
	Synced            int       `json:"synced"`
	CreatorsProcessed int       `json:"creators_processed"`
	Errors            []string  `json:"errors"`
}

// ComputeRunStatus derives the terminal status from a finished run's
// counters. creatorsSucceeded counts creators that completed without any
// recorded error.
func ComputeRunStatus(errors []string, creatorsSucceeded int) RunStatus {
	if len(errors) == 0 {
		return RunCompleted
	}
	if creatorsSucceeded > 0 {
		return RunCompletedWithErrors
	}
	return RunFailed
}
