// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package main is the entry point for the upsync binary.
//
// Upsync pulls creator data (tracking links, earnings, chats, media,
// subscribers) from the Fanline API into PostgreSQL for every tenant it
// manages. The service mode runs the interval sweep scheduler, the optional
// run-event publisher, and the operator HTTP API under a supervision tree;
// the one-shot commands drive single runs, fleet sweeps, and schema
// migrations. See internal/cli for the commands and internal/config for the
// environment variables.
package main

import (
	"fmt"
	"os"

	"github.com/creatorops/upsync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
