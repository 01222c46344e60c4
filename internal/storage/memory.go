package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type routeKey struct {
	airportCode string
	position    Position
}

// MemoryRoutesRepository is an in-memory RoutesRepository. Routes are kept in
// insertion order, which is also id order.
type MemoryRoutesRepository struct {
	mu     sync.RWMutex
	routes []Route
	keys   map[routeKey]struct{}
	nextID int64
	now    func() time.Time
}

var _ RoutesRepository = (*MemoryRoutesRepository)(nil)

// NewMemoryRoutesRepository returns an empty in-memory store.
func NewMemoryRoutesRepository() *MemoryRoutesRepository {
	return &MemoryRoutesRepository{
		keys:   make(map[routeKey]struct{}),
		nextID: 1,
		now:    time.Now,
	}
}

func (m *MemoryRoutesRepository) CreateRoute(ctx context.Context, rt *Route) (*Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := routeKey{airportCode: rt.AirportCode, position: rt.Position}
	if _, taken := m.keys[key]; taken {
		return nil, fmt.Errorf("storage: CreateRoute: %s/%s: %w", rt.AirportCode, rt.Position, ErrDuplicateRoute)
	}

	rt.ID = m.nextID
	rt.CreatedAt = m.now().UTC()
	m.nextID++
	m.keys[key] = struct{}{}
	m.routes = append(m.routes, *rt)
	return rt, nil
}

func (m *MemoryRoutesRepository) ListRoutes(ctx context.Context) ([]Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Route, len(m.routes))
	copy(out, m.routes)
	return out, nil
}

func (m *MemoryRoutesRepository) ListByAirportPosition(ctx context.Context, airportCode string, position Position) ([]Route, error) {
	return m.filter(ctx, func(rt Route) bool {
		return rt.AirportCode == airportCode && rt.Position == position
	})
}

func (m *MemoryRoutesRepository) LongestRoute(ctx context.Context) (*Route, error) {
	return m.pick(ctx, func(rt Route) bool { return true }, func(a, b Route) bool {
		return a.Duration > b.Duration
	})
}

func (m *MemoryRoutesRepository) ShortestRoute(ctx context.Context) (*Route, error) {
	return m.pick(ctx, func(rt Route) bool { return true }, shorter)
}

func (m *MemoryRoutesRepository) ShortestRouteForAirports(ctx context.Context, codes []string) (*Route, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	wanted := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		wanted[c] = struct{}{}
	}
	return m.pick(ctx, func(rt Route) bool {
		_, ok := wanted[rt.AirportCode]
		return ok
	}, shorter)
}

func (m *MemoryRoutesRepository) CountRoutes(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.routes), nil
}

func (m *MemoryRoutesRepository) filter(ctx context.Context, match func(Route) bool) ([]Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Route{}
	for _, rt := range m.routes {
		if match(rt) {
			out = append(out, rt)
		}
	}
	return out, nil
}

// pick returns the first matching route for which no later match is better.
// Scanning in id order means ties resolve to the lowest id.
func (m *MemoryRoutesRepository) pick(ctx context.Context, match func(Route) bool, better func(a, b Route) bool) (*Route, error) {
	matches, err := m.filter(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	best := matches[0]
	for _, rt := range matches[1:] {
		if better(rt, best) {
			best = rt
		}
	}
	return &best, nil
}

func shorter(a, b Route) bool { return a.Duration < b.Duration }
