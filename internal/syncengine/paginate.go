// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package syncengine

import (
	"context"
	"fmt"

	"github.com/creatorops/upsync/internal/fanline"
)

// collectCursor drains a cursor-paginated stream into one batch, preserving
// upstream page order. Traversal ends on the first page without a next
// cursor. A cursor that fails to advance aborts the walk instead of looping.
func collectCursor[T any](ctx context.Context, fetch func(context.Context, string) (*fanline.CursorPage[T], error)) ([]T, error) {
	var items []T
	var cursor string

	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if page.NextCursor == "" {
			return items, nil
		}
		if page.NextCursor == cursor {
			return nil, fmt.Errorf("pagination stalled: cursor %q did not advance", cursor)
		}
		cursor = page.NextCursor
	}
}

// collectList walks a page/size-paginated list from page 1 until the
// upstream reports no further pages.
func collectList[T any](ctx context.Context, fetch func(context.Context, int) (*fanline.ListPage[T], error)) ([]T, error) {
	var items []T

	for page := 1; ; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		items = append(items, p.Items...)

		if !p.HasMore {
			return items, nil
		}
	}
}
