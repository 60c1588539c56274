// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/creatorops/upsync/internal/models"
	"github.com/creatorops/upsync/internal/syncengine"
)

func sampleReport() *models.SyncReport {
	return &models.SyncReport{
		RunID:             uuid.MustParse("9a2f5f3e-74a1-4b8e-9d9c-0a8f6f1c2d3e"),
		TenantID:          uuid.MustParse("41bc9f3e-2f71-4a0e-8f0d-6c1b2a9d4e5f"),
		Resource:          models.ResourceEarnings,
		Status:            models.RunCompletedWithErrors,
		Synced:            37,
		CreatorsProcessed: 4,
		Errors:            []string{"creator kat.archive: upstream said no"},
	}
}

func TestPrintSyncReport_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := printSyncReport(buf, "text", sampleReport()); err != nil {
		t.Fatalf("printSyncReport() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"run 9a2f5f3e-74a1-4b8e-9d9c-0a8f6f1c2d3e: completed_with_errors",
		"tenant:   41bc9f3e-2f71-4a0e-8f0d-6c1b2a9d4e5f",
		"resource: earnings",
		"synced:   37 records across 4 creators",
		"error:    creator kat.archive: upstream said no",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSyncReport_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	report := sampleReport()
	if err := printSyncReport(buf, "json", report); err != nil {
		t.Fatalf("printSyncReport() error: %v", err)
	}

	var got models.SyncReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error: %v (output %q)", err, buf.String())
	}
	if got.RunID != report.RunID {
		t.Errorf("RunID = %s, want %s", got.RunID, report.RunID)
	}
	if got.Status != report.Status {
		t.Errorf("Status = %q, want %q", got.Status, report.Status)
	}
	if got.Synced != report.Synced {
		t.Errorf("Synced = %d, want %d", got.Synced, report.Synced)
	}
	if len(got.Errors) != 1 {
		t.Errorf("len(Errors) = %d, want 1", len(got.Errors))
	}
}

func TestPrintSweepReport_Text(t *testing.T) {
	report := &syncengine.SweepReport{
		Resource: models.ResourceSubscribers,
		Tenants:  2,
		Skipped:  1,
		Reports:  []models.SyncReport{*sampleReport()},
		Errors:   []string{"tenant 77aa: credential expired"},
	}

	buf := &bytes.Buffer{}
	if err := printSweepReport(buf, "text", report); err != nil {
		t.Fatalf("printSweepReport() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"sweep subscribers: 2 tenants synced, 1 skipped",
		"tenant 41bc9f3e-2f71-4a0e-8f0d-6c1b2a9d4e5f: completed_with_errors, 37 records across 4 creators",
		"error: tenant 77aa: credential expired",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSweepReport_JSON(t *testing.T) {
	report := &syncengine.SweepReport{
		Resource: models.ResourceChats,
		Tenants:  3,
	}

	buf := &bytes.Buffer{}
	if err := printSweepReport(buf, "json", report); err != nil {
		t.Fatalf("printSweepReport() error: %v", err)
	}

	var got syncengine.SweepReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Resource != models.ResourceChats {
		t.Errorf("Resource = %q, want %q", got.Resource, models.ResourceChats)
	}
	if got.Tenants != 3 {
		t.Errorf("Tenants = %d, want 3", got.Tenants)
	}
}
