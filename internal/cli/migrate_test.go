// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package cli

import (
	"bytes"
	"strings"
	"testing"
)

func execMigrate(t *testing.T, args ...string) error {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewMigrateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestMigrateCommand_RequiresDirection(t *testing.T) {
	err := execMigrate(t)
	if err == nil {
		t.Fatal("Execute() without arguments succeeded, want error")
	}
}

func TestMigrateCommand_RejectsUnknownDirection(t *testing.T) {
	err := execMigrate(t, "sideways")
	if err == nil {
		t.Fatal("Execute() with an unknown direction succeeded, want error")
	}
	if !strings.Contains(err.Error(), "unknown direction") {
		t.Errorf("error = %q, want unknown direction message", err)
	}
}

func TestMigrateCommand_RejectsBadSteps(t *testing.T) {
	tests := []struct {
		name  string
		steps string
	}{
		{name: "not a number", steps: "three"},
		{name: "zero", steps: "0"},
		{name: "negative", steps: "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execMigrate(t, "up", tt.steps)
			if err == nil {
				t.Fatal("Execute() with bad steps succeeded, want error")
			}
			if !strings.Contains(err.Error(), "steps must be a positive integer") {
				t.Errorf("error = %q, want steps validation message", err)
			}
		})
	}
}

func TestMigrateCommand_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	err := execMigrate(t, "up")
	if err == nil {
		t.Fatal("Execute() without DATABASE_URL succeeded, want error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL is required") {
		t.Errorf("error = %q, want DATABASE_URL message", err)
	}
}

func TestMigrateCommand_RejectsExtraArgs(t *testing.T) {
	err := execMigrate(t, "up", "2", "extra")
	if err == nil {
		t.Fatal("Execute() with three arguments succeeded, want error")
	}
}
