// Package migrations applies the embedded Postgres schema files at startup.
//
// Files are named NNN_description.sql and run in lexicographic order, each in
// its own transaction. Applied file names are recorded in schema_migrations so
// Run is idempotent. 000_migrations_table.sql must stay first.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var sqlFiles embed.FS

type entry struct {
	version string // file name
	sql     string
}

// Run applies every embedded migration not yet recorded in schema_migrations.
func Run(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureMigrationsTable(ctx, pool); err != nil {
		return fmt.Errorf("migrations: ensure tracking table: %w", err)
	}

	entries, err := loadEntries()
	if err != nil {
		return fmt.Errorf("migrations: load files: %w", err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return fmt.Errorf("migrations: read applied versions: %w", err)
	}

	var pending []entry
	for _, e := range entries {
		if !applied[e.version] {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		log.Printf("migrations: schema is up to date (%d files)", len(entries))
		return nil
	}

	log.Printf("migrations: %d of %d files pending", len(pending), len(entries))
	for _, e := range pending {
		if err := applyEntry(ctx, pool, e); err != nil {
			return fmt.Errorf("migrations: apply %q: %w", e.version, err)
		}
	}
	return nil
}

// CheckSchema verifies that each of the required tables exists in the public
// schema and reports every missing one at once. It only checks presence.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool, required ...string) error {
	if len(required) == 0 {
		return nil
	}

	rows, err := pool.Query(ctx, `
		SELECT want
		FROM unnest($1::text[]) AS want
		WHERE NOT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = want
		)
		ORDER BY want`,
		required,
	)
	if err != nil {
		return fmt.Errorf("migrations: check schema: %w", err)
	}
	missing, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("migrations: check schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("migrations: required tables missing: %s", strings.Join(missing, ", "))
	}

	return nil
}

func ensureMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT        PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

// appliedVersions returns the set of file names already recorded.
func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// loadEntries returns the embedded .sql files sorted by name.
func loadEntries() ([]entry, error) {
	return readEntries(sqlFiles)
}

func readEntries(fsys fs.ReadDirFS) ([]entry, error) {
	dirEntries, err := fsys.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read embedded dir: %w", err)
	}

	var out []entry
	for _, de := range dirEntries {
		if de.IsDir() || path.Ext(de.Name()) != ".sql" {
			continue
		}
		content, err := fs.ReadFile(fsys, de.Name())
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", de.Name(), err)
		}
		out = append(out, entry{version: de.Name(), sql: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// applyEntry executes one file and records it atomically; a failing file
// leaves neither its changes nor its version behind.
func applyEntry(ctx context.Context, pool *pgxpool.Pool, e entry) error {
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, e.sql); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, e.version)
		return err
	})
	if err != nil {
		return err
	}

	log.Printf("migrations: applied %q", e.version)
	return nil
}
