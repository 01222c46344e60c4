package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteRoutesRepository is the database/sql + go-sqlite3 implementation of
// RoutesRepository. It owns its *sql.DB and must be closed.
type SQLiteRoutesRepository struct {
	db *sql.DB
}

var _ RoutesRepository = (*SQLiteRoutesRepository)(nil)

// OpenSQLite opens (or creates) the SQLite database at dsn and makes sure the
// airport_routes table exists. Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteRoutesRepository, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serialises
	// writers the way SQLite wants anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}

	repo := &SQLiteRoutesRepository{db: db}
	if err := repo.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRoutesRepository) initialize(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS airport_routes (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		airport_code VARCHAR(10) NOT NULL,
		position     CHAR(1)     NOT NULL CHECK (position IN ('L', 'R')),
		duration     INTEGER     NOT NULL,
		created_at   TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (airport_code, position)
	)`)
	if err != nil {
		return fmt.Errorf("storage: create airport_routes table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteRoutesRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRoutesRepository) CreateRoute(ctx context.Context, rt *Route) (*Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO airport_routes (airport_code, position, duration, created_at) VALUES (?, ?, ?, ?)`,
		rt.AirportCode, string(rt.Position), rt.Duration, now,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, fmt.Errorf("storage: CreateRoute: %s/%s: %w", rt.AirportCode, rt.Position, ErrDuplicateRoute)
		}
		return nil, fmt.Errorf("storage: CreateRoute: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("storage: CreateRoute: last insert id: %w", err)
	}

	rt.ID = id
	rt.CreatedAt = now
	return rt, nil
}

func (r *SQLiteRoutesRepository) ListRoutes(ctx context.Context) ([]Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+routeColumns+` FROM airport_routes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: ListRoutes: %w", err)
	}

	routes, err := collectSQLRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListRoutes: %w", err)
	}
	return routes, nil
}

func (r *SQLiteRoutesRepository) ListByAirportPosition(ctx context.Context, airportCode string, position Position) ([]Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+routeColumns+` FROM airport_routes WHERE airport_code = ? AND position = ? ORDER BY id`,
		airportCode, string(position),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByAirportPosition: %w", err)
	}

	routes, err := collectSQLRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByAirportPosition: %w", err)
	}
	return routes, nil
}

func (r *SQLiteRoutesRepository) LongestRoute(ctx context.Context) (*Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rt, err := scanSQLRoute(r.db.QueryRowContext(ctx,
		`SELECT `+routeColumns+` FROM airport_routes ORDER BY duration DESC, id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: LongestRoute: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRoutesRepository) ShortestRoute(ctx context.Context) (*Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rt, err := scanSQLRoute(r.db.QueryRowContext(ctx,
		`SELECT `+routeColumns+` FROM airport_routes ORDER BY duration, id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: ShortestRoute: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRoutesRepository) ShortestRouteForAirports(ctx context.Context, codes []string) (*Route, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(codes)), ",")
	args := make([]any, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	rt, err := scanSQLRoute(r.db.QueryRowContext(ctx,
		`SELECT `+routeColumns+` FROM airport_routes WHERE airport_code IN (`+placeholders+`) ORDER BY duration, id LIMIT 1`,
		args...,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: ShortestRouteForAirports: %w", err)
	}
	return rt, nil
}

func (r *SQLiteRoutesRepository) CountRoutes(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM airport_routes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: CountRoutes: %w", err)
	}
	return n, nil
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLRoute(row sqlScanner) (*Route, error) {
	var rt Route
	var position string
	if err := row.Scan(&rt.ID, &rt.AirportCode, &position, &rt.Duration, &rt.CreatedAt); err != nil {
		return nil, err
	}
	rt.Position = Position(position)
	return &rt, nil
}

func collectSQLRoutes(rows *sql.Rows) ([]Route, error) {
	defer rows.Close()

	routes := []Route{}
	for rows.Next() {
		rt, err := scanSQLRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		routes = append(routes, *rt)
	}
	return routes, rows.Err()
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
