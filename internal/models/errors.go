// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package models

import "errors"

// ErrNotFound is the shared absence sentinel. The store maps pgx.ErrNoRows
// to it, the credential resolver treats it as "no credential at this scope",
// and API handlers translate it to 404.
var ErrNotFound = errors.New("not found")
