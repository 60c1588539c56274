// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package events

import (
	"context"
	"fmt"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/logging"
)

// Service owns the event publishing pipeline: the optional embedded NATS
// server, the provisioned JetStream stream, and the Watermill publisher.
// Construction is fail-fast; a misconfigured or unreachable broker stops
// startup rather than silently dropping events.
type Service struct {
	cfg       *config.EventsConfig
	server    *EmbeddedServer
	publisher *Publisher
	sink      *Sink
}

// NewService starts the configured event pipeline. With EmbeddedServer set,
// an in-process NATS JetStream server is booted first and the publisher
// connects to it; otherwise the publisher connects to cfg.URL.
func NewService(ctx context.Context, cfg *config.EventsConfig) (*Service, error) {
	logger := NewWatermillLogger()

	url := cfg.URL
	var srv *EmbeddedServer
	if cfg.EmbeddedServer {
		var err error
		srv, err = NewEmbeddedServer(cfg.URL, cfg.StoreDir)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		url = srv.ClientURL()
		logging.Info().
			Str("component", "events").
			Str("url", url).
			Str("store_dir", cfg.StoreDir).
			Msg("Embedded NATS server started")
	}

	if err := provisionStream(ctx, url, cfg.SubjectPrefix); err != nil {
		if srv != nil {
			srv.Shutdown(ctx) //nolint:errcheck
		}
		return nil, err
	}

	pub, err := NewPublisher(url, cfg.MaxReconnects, cfg.ReconnectWait, logger)
	if err != nil {
		if srv != nil {
			srv.Shutdown(ctx) //nolint:errcheck
		}
		return nil, err
	}

	logging.Info().
		Str("component", "events").
		Str("stream", StreamName).
		Str("subject_prefix", cfg.SubjectPrefix).
		Msg("Run event publishing enabled")

	return &Service{
		cfg:       cfg,
		server:    srv,
		publisher: pub,
		sink:      NewSink(pub, cfg.SubjectPrefix),
	}, nil
}

// provisionStream ensures the run events stream exists before the publisher
// starts. Uses a short-lived connection; the publisher holds its own.
func provisionStream(ctx context.Context, url, prefix string) error {
	nc, err := natsgo.Connect(url)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("open JetStream: %w", err)
	}

	init, err := NewStreamInitializer(js, prefix)
	if err != nil {
		return err
	}
	if _, err := init.EnsureStream(ctx); err != nil {
		return err
	}
	return nil
}

// Sink returns the EventSink for the sync engine.
func (s *Service) Sink() *Sink {
	return s.sink
}

// URL returns the broker URL the publisher is connected to: the embedded
// server's client URL when one is running, the configured URL otherwise.
func (s *Service) URL() string {
	if s.server != nil {
		return s.server.ClientURL()
	}
	return s.cfg.URL
}

// Close stops the publisher and, if one was started, the embedded server.
func (s *Service) Close(ctx context.Context) error {
	var firstErr error
	if err := s.publisher.Close(); err != nil {
		firstErr = fmt.Errorf("close publisher: %w", err)
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown embedded server: %w", err)
		}
	}
	return firstErr
}
