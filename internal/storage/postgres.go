package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout is applied to every database query.
const queryTimeout = 5 * time.Second

// pgUniqueViolation is the SQLSTATE raised when a unique index rejects a row.
const pgUniqueViolation = "23505"

const routeColumns = `id, airport_code, position, duration, created_at`

// pgRoutesRepository is the pgx-backed implementation of RoutesRepository.
type pgRoutesRepository struct {
	pool *pgxpool.Pool
}

// NewRoutesRepository creates a RoutesRepository backed by the given connection pool.
func NewRoutesRepository(pool *pgxpool.Pool) RoutesRepository {
	return &pgRoutesRepository{pool: pool}
}

func (r *pgRoutesRepository) CreateRoute(ctx context.Context, rt *Route) (*Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO airport_routes (airport_code, position, duration)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		rt.AirportCode, string(rt.Position), rt.Duration,
	).Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, fmt.Errorf("storage: CreateRoute: %s/%s: %w", rt.AirportCode, rt.Position, ErrDuplicateRoute)
		}
		return nil, fmt.Errorf("storage: CreateRoute: %w", err)
	}

	return rt, nil
}

func (r *pgRoutesRepository) ListRoutes(ctx context.Context) ([]Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+routeColumns+` FROM airport_routes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: ListRoutes: %w", err)
	}

	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListRoutes: %w", err)
	}
	return routes, nil
}

func (r *pgRoutesRepository) ListByAirportPosition(ctx context.Context, airportCode string, position Position) ([]Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
		SELECT `+routeColumns+`
		FROM airport_routes
		WHERE airport_code = $1 AND position = $2
		ORDER BY id`,
		airportCode, string(position),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByAirportPosition: %w", err)
	}

	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("storage: ListByAirportPosition: %w", err)
	}
	return routes, nil
}

func (r *pgRoutesRepository) LongestRoute(ctx context.Context) (*Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rt, err := scanRoute(r.pool.QueryRow(ctx, `
		SELECT `+routeColumns+`
		FROM airport_routes
		ORDER BY duration DESC, id
		LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: LongestRoute: %w", err)
	}
	return rt, nil
}

func (r *pgRoutesRepository) ShortestRoute(ctx context.Context) (*Route, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rt, err := scanRoute(r.pool.QueryRow(ctx, `
		SELECT `+routeColumns+`
		FROM airport_routes
		ORDER BY duration, id
		LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: ShortestRoute: %w", err)
	}
	return rt, nil
}

func (r *pgRoutesRepository) ShortestRouteForAirports(ctx context.Context, codes []string) (*Route, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rt, err := scanRoute(r.pool.QueryRow(ctx, `
		SELECT `+routeColumns+`
		FROM airport_routes
		WHERE airport_code = ANY($1)
		ORDER BY duration, id
		LIMIT 1`,
		codes,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: ShortestRouteForAirports: %w", err)
	}
	return rt, nil
}

func (r *pgRoutesRepository) CountRoutes(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM airport_routes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: CountRoutes: %w", err)
	}
	return n, nil
}

// scanRoute reads a single route selected with routeColumns.
func scanRoute(row pgx.Row) (*Route, error) {
	var rt Route
	var position string
	if err := row.Scan(&rt.ID, &rt.AirportCode, &position, &rt.Duration, &rt.CreatedAt); err != nil {
		return nil, err
	}
	rt.Position = Position(position)
	return &rt, nil
}

// collectRoutes drains rows selected with routeColumns and closes them.
func collectRoutes(rows pgx.Rows) ([]Route, error) {
	defer rows.Close()

	routes := []Route{}
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		routes = append(routes, *rt)
	}
	return routes, rows.Err()
}

// isPgUniqueViolation reports whether err carries SQLSTATE 23505.
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
