package migrations

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEntries_EmbeddedOrder(t *testing.T) {
	entries, err := loadEntries()
	if err != nil {
		t.Fatalf("loadEntries: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(entries))
	}
	if entries[0].version != "000_migrations_table.sql" {
		t.Errorf("first migration = %q, want 000_migrations_table.sql", entries[0].version)
	}

	var found bool
	for _, e := range entries {
		if strings.Contains(e.sql, "UNIQUE (airport_code, position)") {
			found = true
		}
	}
	if !found {
		t.Error("no migration declares the (airport_code, position) unique constraint")
	}
}

func TestReadEntries_SortsAndSkipsNonSQL(t *testing.T) {
	fsys := fstest.MapFS{
		"010_b.sql": {Data: []byte("SELECT 2;")},
		"002_a.sql": {Data: []byte("SELECT 1;")},
		"README.md": {Data: []byte("notes")},
		"sub/x.sql": {Data: []byte("SELECT 3;")},
		"000_t.sql": {Data: []byte("SELECT 0;")},
	}

	entries, err := readEntries(fsys)
	if err != nil {
		t.Fatalf("readEntries: %v", err)
	}

	want := []string{"000_t.sql", "002_a.sql", "010_b.sql"}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].version != w {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].version, w)
		}
	}
	if entries[1].sql != "SELECT 1;" {
		t.Errorf("entries[1].sql = %q, want %q", entries[1].sql, "SELECT 1;")
	}
}

func TestCheckSchema_NothingRequired(t *testing.T) {
	// With no tables to look for the pool is never touched.
	if err := CheckSchema(context.Background(), nil); err != nil {
		t.Fatalf("CheckSchema: %v", err)
	}
}

func TestLoadEntries_TrackingTableMatchesRunner(t *testing.T) {
	entries, err := loadEntries()
	if err != nil {
		t.Fatalf("loadEntries: %v", err)
	}
	first := entries[0].sql
	for _, want := range []string{"schema_migrations", "TEXT", "TIMESTAMPTZ"} {
		if !strings.Contains(first, want) {
			t.Errorf("%s does not mention %q", entries[0].version, want)
		}
	}
}
