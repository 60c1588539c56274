// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id1 := GenerateCorrelationID()
	id2 := GenerateCorrelationID()

	if id1 == "" {
		t.Error("expected non-empty correlation ID")
	}
	if len(id1) != 8 {
		t.Errorf("expected 8-character correlation ID, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique correlation IDs")
	}
}

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == "" {
		t.Error("expected non-empty request ID")
	}
	if len(id1) != 36 { // UUID format
		t.Errorf("expected 36-character request ID, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique request IDs")
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Without correlation ID
	id := CorrelationIDFromContext(ctx)
	if id != "" {
		t.Errorf("expected empty correlation ID, got %s", id)
	}

	// With correlation ID
	ctx = ContextWithCorrelationID(ctx, "test-123")
	id = CorrelationIDFromContext(ctx)
	if id != "test-123" {
		t.Errorf("expected 'test-123', got '%s'", id)
	}
}

func TestContextWithNewCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = ContextWithNewCorrelationID(ctx)

	id := CorrelationIDFromContext(ctx)
	if id == "" {
		t.Error("expected correlation ID to be generated")
	}
	if len(id) != 8 {
		t.Errorf("expected 8-character correlation ID, got %d", len(id))
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Without request ID
	id := RequestIDFromContext(ctx)
	if id != "" {
		t.Errorf("expected empty request ID, got %s", id)
	}

	// With request ID
	ctx = ContextWithRequestID(ctx, "req-456")
	id = RequestIDFromContext(ctx)
	if id != "req-456" {
		t.Errorf("expected 'req-456', got '%s'", id)
	}
}

func TestRunIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Without run ID
	id := RunIDFromContext(ctx)
	if id != "" {
		t.Errorf("expected empty run ID, got %s", id)
	}

	// With run ID
	ctx = ContextWithRunID(ctx, "run-789")
	id = RunIDFromContext(ctx)
	if id != "run-789" {
		t.Errorf("expected 'run-789', got '%s'", id)
	}
}

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	customLogger := zerolog.New(&buf)

	ctx := context.Background()
	ctx = ContextWithLogger(ctx, customLogger)

	retrieved := LoggerFromContext(ctx)
	retrieved.Info().Msg("custom logger message")

	if !strings.Contains(buf.String(), "custom logger message") {
		t.Errorf("expected message via custom logger, got: %s", buf.String())
	}
}

func TestLoggerFromContextFallback(t *testing.T) {
	t.Parallel()

	// Without stored logger, should return global logger (not panic)
	logger := LoggerFromContext(context.Background())
	logger.Debug().Msg("fallback works")
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer

	ctx := context.Background()
	ctx = ContextWithLogger(ctx, zerolog.New(&buf))
	ctx = ContextWithCorrelationID(ctx, "corr-abc")
	ctx = ContextWithRequestID(ctx, "req-def")
	ctx = ContextWithRunID(ctx, "run-ghi")

	Ctx(ctx).Info().Msg("context message")

	output := buf.String()
	if !strings.Contains(output, "corr-abc") {
		t.Errorf("expected correlation ID in output: %s", output)
	}
	if !strings.Contains(output, "req-def") {
		t.Errorf("expected request ID in output: %s", output)
	}
	if !strings.Contains(output, "run-ghi") {
		t.Errorf("expected run ID in output: %s", output)
	}
}

func TestCtxWithoutValues(t *testing.T) {
	var buf bytes.Buffer

	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))

	Ctx(ctx).Info().Msg("plain message")

	output := buf.String()
	if strings.Contains(output, "correlation_id") {
		t.Errorf("expected no correlation_id field: %s", output)
	}
	if strings.Contains(output, "run_id") {
		t.Errorf("expected no run_id field: %s", output)
	}
}

func TestCtxWith(t *testing.T) {
	var buf bytes.Buffer

	ctx := context.Background()
	ctx = ContextWithLogger(ctx, zerolog.New(&buf))
	ctx = ContextWithCorrelationID(ctx, "corr-xyz")

	logger := CtxWith(ctx).Str("creator_id", "creator-1").Logger()
	logger.Info().Msg("enriched")

	output := buf.String()
	if !strings.Contains(output, "corr-xyz") {
		t.Errorf("expected correlation ID in output: %s", output)
	}
	if !strings.Contains(output, "creator-1") {
		t.Errorf("expected creator_id in output: %s", output)
	}
}

func TestCtxShorthands(t *testing.T) {
	var buf bytes.Buffer

	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"CtxDebug", func() { CtxDebug(ctx).Msg("d") }, "debug"},
		{"CtxInfo", func() { CtxInfo(ctx).Msg("i") }, "info"},
		{"CtxWarn", func() { CtxWarn(ctx).Msg("w") }, "warn"},
		{"CtxError", func() { CtxError(ctx).Msg("e") }, "error"},
	}

	originalLevel := GetLevel()
	defer SetLevel(originalLevel)
	SetLevel(zerolog.TraceLevel)

	for _, tt := range tests {
		buf.Reset()
		tt.logFunc()
		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("%s: expected level '%s' in output: %s", tt.name, tt.level, buf.String())
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	SetLogger(zerolog.New(&buf))

	logger := WithComponent("fanline")
	logger.Info().Msg("component test")

	output := buf.String()
	if !strings.Contains(output, `"component":"fanline"`) {
		t.Errorf("expected component field in output: %s", output)
	}
}
