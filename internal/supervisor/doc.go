// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

/*
Package supervisor provides process supervision for Upsync using suture v4.

Long-running services are organized into a small tree so faults stay
contained:

	Root ("upsync")
	├── sync-layer
	│   └── sweep scheduler (syncengine.Scheduler)
	├── messaging-layer
	│   └── run event service (services.RunEventsService, if events enabled)
	└── api-layer
	    └── operator HTTP server (services.HTTPServerService)

A panicking scheduler restarts on suture's backoff schedule without tearing
down the HTTP server, and a flapping event broker never blocks sync work.

Services implement suture.Service: Serve(ctx) runs until the context is
cancelled and returns the reason. Blocking start/stop APIs (http.Server,
the event service) are adapted by the wrappers in the services subpackage.

Suture's supervision events are logged through sutureslog into the global
zerolog logger via logging.NewSlogLogger, so restarts and backoff show up
in the same stream as everything else.

Shutdown is triggered by cancelling the context handed to Serve. Each
wrapper then gets a fresh bounded context for graceful termination;
UnstoppedServiceReport names anything that failed to stop in time.
*/
package supervisor
