package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/FooledKiwi/flighttrack/internal/storage"
	"golang.org/x/sync/errgroup"
)

// ErrRouteExists is returned by CreateRoute when the store already holds a
// route for the same airport code and position. Callers should use errors.Is.
var ErrRouteExists = errors.New("route already exists")

// ErrInvalidRoute is returned when a request reaches the service with values
// the boundary should have rejected. The concrete error is an
// *InvalidRouteError naming the field.
var ErrInvalidRoute = errors.New("invalid route")

// InvalidRouteError describes a rejected field. It matches ErrInvalidRoute
// under errors.Is.
type InvalidRouteError struct {
	Field   string
	Message string
}

func (e *InvalidRouteError) Error() string {
	return fmt.Sprintf("invalid route: %s %s", e.Field, e.Message)
}

func (e *InvalidRouteError) Is(target error) bool { return target == ErrInvalidRoute }

// NormalizeAirportCode trims surrounding whitespace from code.
func NormalizeAirportCode(code string) string {
	return strings.TrimSpace(code)
}

// checkAirportCode validates an already normalized code. Length is counted in
// characters, the way the airport_code column counts it.
func checkAirportCode(code string) error {
	switch {
	case code == "":
		return &InvalidRouteError{Field: "airport_code", Message: "must not be blank"}
	case utf8.RuneCountInString(code) > storage.MaxAirportCodeLen:
		return &InvalidRouteError{Field: "airport_code", Message: fmt.Sprintf("must be at most %d characters", storage.MaxAirportCodeLen)}
	}
	return nil
}

// RouteService answers the route queries on top of a RoutesRepository.
// A nil *storage.Route with a nil error means "no such route"; it is a normal
// result, not a failure.
type RouteService struct {
	repo storage.RoutesRepository
}

// NewRouteService creates a RouteService backed by repo.
func NewRouteService(repo storage.RoutesRepository) *RouteService {
	return &RouteService{repo: repo}
}

// NthRoute returns the n-th (1-indexed) route for airportCode and position in
// creation order, or nil when fewer than n routes match.
func (s *RouteService) NthRoute(ctx context.Context, airportCode string, position storage.Position, n int) (*storage.Route, error) {
	if n < 1 {
		return nil, fmt.Errorf("service: NthRoute: %w", &InvalidRouteError{Field: "n", Message: "must be at least 1"})
	}
	airportCode = NormalizeAirportCode(airportCode)
	if err := checkAirportCode(airportCode); err != nil {
		return nil, fmt.Errorf("service: NthRoute: %w", err)
	}

	routes, err := s.repo.ListByAirportPosition(ctx, airportCode, position)
	if err != nil {
		return nil, fmt.Errorf("service: NthRoute: %w", err)
	}
	if len(routes) < n {
		return nil, nil
	}

	rt := routes[n-1]
	return &rt, nil
}

// LongestRoute returns the route with the greatest duration, or nil when the
// store is empty.
func (s *RouteService) LongestRoute(ctx context.Context) (*storage.Route, error) {
	rt, err := s.repo.LongestRoute(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: LongestRoute: %w", err)
	}
	return rt, nil
}

// ShortestRoute returns the shortest route whose airport code is start or
// end. It does not look for a path between the two airports: any route at
// either airport qualifies, whatever its position. Empty codes match nothing.
func (s *RouteService) ShortestRoute(ctx context.Context, start, end string) (*storage.Route, error) {
	codes := make([]string, 0, 2)
	for _, c := range []string{start, end} {
		c = NormalizeAirportCode(c)
		if c == "" {
			continue
		}
		if len(codes) == 1 && codes[0] == c {
			continue
		}
		codes = append(codes, c)
	}
	if len(codes) == 0 {
		return nil, nil
	}

	rt, err := s.repo.ShortestRouteForAirports(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("service: ShortestRoute: %w", err)
	}
	return rt, nil
}

// CreateRoute stores a new route. The uniqueness of (airportCode, position)
// is left to the store; a conflict comes back as ErrRouteExists.
func (s *RouteService) CreateRoute(ctx context.Context, airportCode string, position storage.Position, duration int) (*storage.Route, error) {
	airportCode = NormalizeAirportCode(airportCode)
	if err := checkAirportCode(airportCode); err != nil {
		return nil, fmt.Errorf("service: CreateRoute: %w", err)
	}
	if !position.Valid() {
		return nil, fmt.Errorf("service: CreateRoute: %w", &InvalidRouteError{Field: "position", Message: "must be L or R"})
	}

	rt, err := s.repo.CreateRoute(ctx, &storage.Route{
		AirportCode: airportCode,
		Position:    position,
		Duration:    duration,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateRoute) {
			return nil, fmt.Errorf("service: CreateRoute: %w: %w", ErrRouteExists, err)
		}
		return nil, fmt.Errorf("service: CreateRoute: %w", err)
	}
	return rt, nil
}

// ListRoutes returns every stored route.
func (s *RouteService) ListRoutes(ctx context.Context) ([]storage.Route, error) {
	routes, err := s.repo.ListRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: ListRoutes: %w", err)
	}
	return routes, nil
}

// Summary is the dashboard overview of the store.
type Summary struct {
	Count    int
	Longest  *storage.Route // nil when empty
	Shortest *storage.Route // nil when empty
}

// Summary runs the dashboard queries concurrently.
func (s *RouteService) Summary(ctx context.Context) (*Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountRoutes(gctx)
		sum.Count = n
		return err
	})
	g.Go(func() error {
		rt, err := s.repo.LongestRoute(gctx)
		sum.Longest = rt
		return err
	})
	g.Go(func() error {
		rt, err := s.repo.ShortestRoute(gctx)
		sum.Shortest = rt
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service: Summary: %w", err)
	}
	return &sum, nil
}
