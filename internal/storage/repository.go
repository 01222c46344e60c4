// Package storage provides the route store: a PostgreSQL implementation for
// production, a SQLite one for single-file deployments and an in-memory one
// for tests and demos.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateRoute is returned by CreateRoute when a route with the same
// (airport_code, position) pair already exists.
var ErrDuplicateRoute = errors.New("storage: duplicate route")

// MaxAirportCodeLen is the column width of airport_routes.airport_code.
const MaxAirportCodeLen = 10

// Position is the direction flag of a route.
type Position string

const (
	PositionLeft  Position = "L"
	PositionRight Position = "R"
)

// Valid reports whether p is one of the two known positions.
func (p Position) Valid() bool {
	return p == PositionLeft || p == PositionRight
}

// Label returns the human readable name used in forms and pages.
func (p Position) Label() string {
	switch p {
	case PositionLeft:
		return "Left"
	case PositionRight:
		return "Right"
	default:
		return string(p)
	}
}

// Route is a stored airport route record.
type Route struct {
	ID          int64
	AirportCode string
	Position    Position
	Duration    int // minutes
	CreatedAt   time.Time
}

// RoutesRepository defines the operations on the airport_routes table.
type RoutesRepository interface {
	// CreateRoute inserts a new route and fills in ID and CreatedAt.
	// Returns ErrDuplicateRoute (wrapped) if (AirportCode, Position) is taken.
	CreateRoute(ctx context.Context, r *Route) (*Route, error)

	// ListRoutes returns every route ordered by id.
	ListRoutes(ctx context.Context) ([]Route, error)

	// ListByAirportPosition returns the routes matching airportCode and
	// position, ordered by id ascending (creation order).
	ListByAirportPosition(ctx context.Context, airportCode string, position Position) ([]Route, error)

	// LongestRoute returns the route with the greatest duration, lowest id
	// first on ties. Returns (nil, nil) when the store is empty.
	LongestRoute(ctx context.Context) (*Route, error)

	// ShortestRoute returns the route with the smallest duration across the
	// whole store, or (nil, nil) when it is empty.
	ShortestRoute(ctx context.Context) (*Route, error)

	// ShortestRouteForAirports returns the route with the smallest duration
	// whose airport code is any of codes, lowest id first on ties.
	// Returns (nil, nil) when nothing matches.
	ShortestRouteForAirports(ctx context.Context, codes []string) (*Route, error)

	// CountRoutes returns the number of stored routes.
	CountRoutes(ctx context.Context) (int, error)
}
