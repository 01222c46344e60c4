package storage

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/FooledKiwi/flighttrack/internal/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaTables lists the tables the Postgres store reads and writes.
var schemaTables = []string{"airport_routes"}

// RunMigrations brings the Postgres schema up to date and confirms that every
// table the store depends on exists afterwards.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := migrations.Run(ctx, pool); err != nil {
		return fmt.Errorf("storage: RunMigrations: %w", err)
	}
	if err := migrations.CheckSchema(ctx, pool, schemaTables...); err != nil {
		return fmt.Errorf("storage: RunMigrations: %w", err)
	}

	log.Printf("storage: route tables present: %s", strings.Join(schemaTables, ", "))
	return nil
}
