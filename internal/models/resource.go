// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package models

import "fmt"

// Resource names one of the syncable Fanline resource streams. The value is
// used verbatim as the upstream path segment and as the sync_runs.resource
// column.
type Resource string

const (
	ResourceTrackingLinks Resource = "tracking-links"
	ResourceEarnings      Resource = "earnings"
	ResourceChats         Resource = "chats"
	ResourceMedia         Resource = "media"
	ResourceSubscribers   Resource = "subscribers"
)

// AllResources returns every syncable resource, in sweep order.
func AllResources() []Resource {
	return []Resource{
		ResourceTrackingLinks,
		ResourceEarnings,
		ResourceChats,
		ResourceMedia,
		ResourceSubscribers,
	}
}

// ParseResource validates a resource name from user input (API path, CLI
// flag). Returns an error naming the valid values on mismatch.
func ParseResource(s string) (Resource, error) {
	switch Resource(s) {
	case ResourceTrackingLinks, ResourceEarnings, ResourceChats, ResourceMedia, ResourceSubscribers:
		return Resource(s), nil
	}
	return "", fmt.Errorf("unknown resource %q (valid: tracking-links, earnings, chats, media, subscribers)", s)
}

// CursorPaginated reports whether the resource uses cursor pagination
// (time-ordered insight streams) as opposed to page/size pagination
// (list resources).
func (r Resource) CursorPaginated() bool {
	return r == ResourceEarnings || r == ResourceChats
}

func (r Resource) String() string {
	return string(r)
}
