// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package config loads and validates application configuration.
//
// Configuration is layered via Koanf v2: struct defaults, then an optional
// YAML config file, then environment variables (highest priority). Only
// explicitly mapped environment variables are read; see koanf.go for the
// full mapping table.
package config
