// Upsync - Creator Platform Data Synchronization Engine
// Copyright 2026 CreatorOps Maintainers
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/creatorops/upsync

package store

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func migrationFS() fstest.MapFS {
	return fstest.MapFS{
		"0003_events_up.sql":     {Data: []byte("CREATE TABLE IF NOT EXISTS events ();")},
		"0001_tenancy_up.sql":    {Data: []byte("CREATE TABLE IF NOT EXISTS tenants ();")},
		"0002_entities_up.sql":   {Data: []byte("CREATE TABLE IF NOT EXISTS entities ();")},
		"0003_events_down.sql":   {Data: []byte("DROP TABLE IF EXISTS events;")},
		"0001_tenancy_down.sql":  {Data: []byte("DROP TABLE IF EXISTS tenants;")},
		"0002_entities_down.sql": {Data: []byte("DROP TABLE IF EXISTS entities;")},
		"README.md":              {Data: []byte("not a migration")},
	}
}

func TestListMigrations_UpAscending(t *testing.T) {
	files, err := listMigrations(migrationFS(), "_up.sql")
	if err != nil {
		t.Fatalf("listMigrations returned error: %v", err)
	}

	want := []string{"0001_tenancy_up.sql", "0002_entities_up.sql", "0003_events_up.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("up migrations = %v, want %v", files, want)
	}
}

func TestListMigrations_FiltersBySuffix(t *testing.T) {
	files, err := listMigrations(migrationFS(), "_down.sql")
	if err != nil {
		t.Fatalf("listMigrations returned error: %v", err)
	}

	for _, name := range files {
		if name == "README.md" {
			t.Error("non-SQL file leaked into migration list")
		}
	}
	if len(files) != 3 {
		t.Errorf("expected 3 down migrations, got %d: %v", len(files), files)
	}
}

func TestListMigrations_SuffixCaseInsensitive(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_tenancy_UP.SQL": {Data: []byte("SELECT 1;")},
	}

	files, err := listMigrations(fsys, "_up.sql")
	if err != nil {
		t.Fatalf("listMigrations returned error: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected uppercase suffix to match, got %v", files)
	}
}

func TestReverse(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", []string{}, []string{}},
		{"single", []string{"a"}, []string{"a"}},
		{"even", []string{"a", "b", "c", "d"}, []string{"d", "c", "b", "a"}},
		{"odd", []string{"a", "b", "c"}, []string{"c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string(nil), tt.in...)
			reverse(got)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("reverse(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
