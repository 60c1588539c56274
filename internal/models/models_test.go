// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package models

import (
	"testing"
)

func TestParseResource(t *testing.T) {
	t.Parallel()

	valid := []string{"tracking-links", "earnings", "chats", "media", "subscribers"}
	for _, s := range valid {
		r, err := ParseResource(s)
		if err != nil {
			t.Errorf("ParseResource(%q) returned error: %v", s, err)
		}
		if string(r) != s {
			t.Errorf("ParseResource(%q) = %q, want %q", s, r, s)
		}
	}

	invalid := []string{"", "payouts", "Tracking-Links", "tracking_links"}
	for _, s := range invalid {
		if _, err := ParseResource(s); err == nil {
			t.Errorf("ParseResource(%q) expected error, got nil", s)
		}
	}
}

func TestResourceCursorPaginated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		resource Resource
		cursor   bool
	}{
		{ResourceEarnings, true},
		{ResourceChats, true},
		{ResourceTrackingLinks, false},
		{ResourceMedia, false},
		{ResourceSubscribers, false},
	}

	for _, tt := range tests {
		if got := tt.resource.CursorPaginated(); got != tt.cursor {
			t.Errorf("%s.CursorPaginated() = %v, want %v", tt.resource, got, tt.cursor)
		}
	}
}

func TestAllResourcesCoversEverything(t *testing.T) {
	t.Parallel()

	all := AllResources()
	if len(all) != 5 {
		t.Fatalf("expected 5 resources, got %d", len(all))
	}

	seen := make(map[Resource]bool, len(all))
	for _, r := range all {
		if seen[r] {
			t.Errorf("duplicate resource %s", r)
		}
		seen[r] = true
		// Every listed resource must round-trip through ParseResource
		if _, err := ParseResource(string(r)); err != nil {
			t.Errorf("AllResources item %s does not parse: %v", r, err)
		}
	}
}

func TestCredentialStatusUsable(t *testing.T) {
	t.Parallel()

	if !CredentialActive.Usable() {
		t.Error("active credential should be usable")
	}
	if CredentialExpired.Usable() {
		t.Error("expired credential should not be usable")
	}
	if CredentialRevoked.Usable() {
		t.Error("revoked credential should not be usable")
	}
}

func TestRunStatusTerminal(t *testing.T) {
	t.Parallel()

	if RunRunning.Terminal() {
		t.Error("running should not be terminal")
	}
	for _, s := range []RunStatus{RunCompleted, RunCompletedWithErrors, RunFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestComputeRunStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		errors            []string
		creatorsSucceeded int
		want              RunStatus
	}{
		{"clean run", nil, 3, RunCompleted},
		{"clean run zero creators", nil, 0, RunCompleted},
		{"partial", []string{"creator b: forbidden"}, 2, RunCompletedWithErrors},
		{"all failed", []string{"creator a: timeout", "creator b: timeout"}, 0, RunFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeRunStatus(tt.errors, tt.creatorsSucceeded)
			if got != tt.want {
				t.Errorf("ComputeRunStatus(%v, %d) = %s, want %s", tt.errors, tt.creatorsSucceeded, got, tt.want)
			}
		})
	}
}
