// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package api

// SweepRequest is the body of POST /api/v1/sync/sweep.
type SweepRequest struct {
	Resource string `json:"resource" validate:"required,oneof=tracking-links earnings chats media subscribers"`
}

// ListRunsRequest bounds ?limit on run history listings.
type ListRunsRequest struct {
	Limit int `validate:"min=1,max=500"`
}
