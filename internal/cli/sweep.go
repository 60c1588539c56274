// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/models"
)

// SweepOptions holds flags for the sweep command.
type SweepOptions struct {
	*RootOptions
	Resource string
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SweepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep one resource across all active tenants",
		Long: `Run one fleet-wide sweep: synchronize the given resource for every active
tenant, then print the per-tenant reports. Tenants already being synced are
skipped, exactly as in a scheduled sweep. Exits non-zero when any tenant's
run did not complete cleanly.

Example:
  upsync sweep --resource subscribers
  upsync sweep --resource earnings --format json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Resource, "resource", "", "resource to sweep (tracking-links|earnings|chats|media|subscribers)")
	_ = cmd.MarkFlagRequired("resource")

	return cmd
}

func runSweep(opts *SweepOptions, cmd *cobra.Command) error {
	resource, err := models.ParseResource(opts.Resource)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signalContext(parentCtx)
	defer cancel()

	eng, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		eng.Close(closeCtx)
	}()

	report, err := eng.orch.Sweep(ctx, resource)
	if err != nil {
		return fmt.Errorf("sweep %s: %w", resource, err)
	}
	if err := printSweepReport(cmd.OutOrStdout(), opts.Format, report); err != nil {
		return err
	}

	unclean := 0
	for i := range report.Reports {
		if report.Reports[i].Status != models.RunCompleted {
			unclean++
		}
	}
	if unclean > 0 || len(report.Errors) > 0 {
		return fmt.Errorf("sweep finished with %d unclean runs and %d errors", unclean, len(report.Errors))
	}
	return nil
}
