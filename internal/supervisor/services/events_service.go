// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package services

import (
	"context"
	"fmt"
	"time"
)

// RunEventsCloser is the lifecycle subset of the run event service. The
// service connects during construction, so only teardown is left for the
// supervisor. Satisfied by *events.Service.
type RunEventsCloser interface {
	Close(ctx context.Context) error
}

// RunEventsService holds the run event service open for the life of the
// process and closes it at shutdown. Publish failures while running are
// handled inside the event sink; they never restart this service.
type RunEventsService struct {
	events          RunEventsCloser
	shutdownTimeout time.Duration
	name            string
}

// NewRunEventsService wraps an already-connected run event service. Zero
// or negative shutdownTimeout gets a 10s default.
func NewRunEventsService(events RunEventsCloser, shutdownTimeout time.Duration) *RunEventsService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &RunEventsService{
		events:          events,
		shutdownTimeout: shutdownTimeout,
		name:            "run-events",
	}
}

// Serve implements suture.Service: park until shutdown, then close the
// publisher and the embedded broker under a fresh bounded context.
func (s *RunEventsService) Serve(ctx context.Context) error {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.events.Close(shutdownCtx); err != nil {
		return fmt.Errorf("run event service close: %w", err)
	}
	return ctx.Err()
}

func (s *RunEventsService) String() string {
	return s.name
}
