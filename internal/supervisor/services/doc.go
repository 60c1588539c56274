// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

// Package services adapts Upsync subsystems with blocking start/stop
// lifecycles to suture.Service.
//
// HTTPServerService wraps http.Server's ListenAndServe/Shutdown pair;
// RunEventsService parks over the already-connected run event service and
// closes it at shutdown. The sweep scheduler needs no wrapper because
// syncengine.Scheduler implements suture.Service directly.
//
// Both wrappers take small interfaces instead of concrete types so tests
// run against in-memory doubles.
package services
