// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/creatorops/upsync/internal/config"
	"github.com/creatorops/upsync/internal/logging"
	"github.com/creatorops/upsync/internal/models"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Tenant       string
	Resource     string
	AllResources bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize one tenant and print the report",
		Long: `Run one synchronization for a single tenant, wait for it to finish, and
print the report. The run takes the same locks and publishes the same
events as a scheduled sweep. Exits non-zero when a run does not complete
cleanly.

Example:
  upsync sync --tenant 9a2f5f3e-74a1-4b8e-9d9c-0a8f6f1c2d3e --resource earnings
  upsync sync --tenant 9a2f5f3e-74a1-4b8e-9d9c-0a8f6f1c2d3e --all-resources --format json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tenant, "tenant", "", "tenant UUID (required)")
	cmd.Flags().StringVar(&opts.Resource, "resource", "", "resource to sync (tracking-links|earnings|chats|media|subscribers)")
	cmd.Flags().BoolVar(&opts.AllResources, "all-resources", false, "sync every resource for the tenant")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	tenantID, err := uuid.Parse(opts.Tenant)
	if err != nil {
		return fmt.Errorf("--tenant must be a valid UUID: %w", err)
	}

	resources, err := resolveResources(opts.Resource, opts.AllResources)
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
		// Teardown gets its own context; ctx may already be cancelled.
		closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer closeCancel()
		eng.Close(closeCtx)
	}()

	unclean := 0
	for _, resource := range resources {
		report, err := eng.orch.SyncResource(ctx, tenantID, resource)
		if err != nil {
			return fmt.Errorf("sync %s: %w", resource, err)
		}
		if err := printSyncReport(cmd.OutOrStdout(), opts.Format, report); err != nil {
			return err
		}
		if report.Status != models.RunCompleted {
			unclean++
		}
	}

	if unclean > 0 {
		return fmt.Errorf("%d of %d runs did not complete cleanly", unclean, len(resources))
	}
	return nil
}

// resolveResources turns the --resource / --all-resources flag pair into the
// list of resources to sync.
func resolveResources(resource string, all bool) ([]models.Resource, error) {
	switch {
	case all && resource != "":
		return nil, errors.New("--resource and --all-resources are mutually exclusive")
	case all:
		return models.AllResources(), nil
	case resource != "":
		r, err := models.ParseResource(resource)
		if err != nil {
			return nil, err
		}
		return []models.Resource{r}, nil
	}
	return nil, errors.New("one of --resource or --all-resources is required")
}
