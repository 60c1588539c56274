// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/creatorops/upsync/internal/models"
	"github.com/creatorops/upsync/internal/syncengine"
)

// writeJSON encodes v as indented JSON. All machine-readable command output
// goes through here so the shape stays consistent across commands.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printSyncReport renders one finished run in the requested format.
func printSyncReport(w io.Writer, format string, report *models.SyncReport) error {
	if format == "json" {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "run %s: %s\n", report.RunID, report.Status)
	fmt.Fprintf(w, "  tenant:   %s\n", report.TenantID)
	fmt.Fprintf(w, "  resource: %s\n", report.Resource)
	fmt.Fprintf(w, "  synced:   %d records across %d creators\n", report.Synced, report.CreatorsProcessed)
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  error:    %s\n", e)
	}
	return nil
}

// printSweepReport renders a fleet sweep in the requested format.
func printSweepReport(w io.Writer, format string, report *syncengine.SweepReport) error {
	if format == "json" {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "sweep %s: %d tenants synced, %d skipped\n", report.Resource, report.Tenants, report.Skipped)
	for i := range report.Reports {
		r := &report.Reports[i]
		fmt.Fprintf(w, "  tenant %s: %s, %d records across %d creators\n", r.TenantID, r.Status, r.Synced, r.CreatorsProcessed)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	return nil
}
