package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/FooledKiwi/flighttrack/internal/storage"
)

// --- mock RoutesRepository ---

type mockRoutesRepo struct {
	matches   []storage.Route
	longest   *storage.Route
	shortest  *storage.Route
	forCodes  *storage.Route
	count     int
	createErr error
	err       error

	gotCodes    [][]string
	gotAirport  string
	gotPosition storage.Position
}

func (m *mockRoutesRepo) CreateRoute(_ context.Context, r *storage.Route) (*storage.Route, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	r.ID = 1
	return r, nil
}

func (m *mockRoutesRepo) ListRoutes(_ context.Context) ([]storage.Route, error) {
	return m.matches, m.err
}

func (m *mockRoutesRepo) ListByAirportPosition(_ context.Context, code string, pos storage.Position) ([]storage.Route, error) {
	m.gotAirport, m.gotPosition = code, pos
	return m.matches, m.err
}

func (m *mockRoutesRepo) LongestRoute(_ context.Context) (*storage.Route, error) {
	return m.longest, m.err
}

func (m *mockRoutesRepo) ShortestRoute(_ context.Context) (*storage.Route, error) {
	return m.shortest, m.err
}

func (m *mockRoutesRepo) ShortestRouteForAirports(_ context.Context, codes []string) (*storage.Route, error) {
	m.gotCodes = append(m.gotCodes, codes)
	return m.forCodes, m.err
}

func (m *mockRoutesRepo) CountRoutes(_ context.Context) (int, error) {
	return m.count, m.err
}

func routesSeq(k int) []storage.Route {
	out := make([]storage.Route, k)
	for i := range out {
		out[i] = storage.Route{ID: int64(i + 1), AirportCode: "JFK", Position: storage.PositionLeft, Duration: 10 * (i + 1)}
	}
	return out
}

// --- NthRoute ---

func TestRouteService_NthRoute_IndexesInCreationOrder(t *testing.T) {
	const k = 4
	repo := &mockRoutesRepo{matches: routesSeq(k)}
	svc := NewRouteService(repo)

	for i := 1; i <= k; i++ {
		got, err := svc.NthRoute(context.Background(), "JFK", storage.PositionLeft, i)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", i, err)
		}
		if got == nil {
			t.Fatalf("n=%d: got no route", i)
		}
		if got.ID != int64(i) {
			t.Errorf("n=%d: id = %d, want %d", i, got.ID, i)
		}
	}

	if repo.gotAirport != "JFK" || repo.gotPosition != storage.PositionLeft {
		t.Errorf("store queried with (%q, %q), want (JFK, L)", repo.gotAirport, repo.gotPosition)
	}
}

func TestRouteService_NthRoute_BeyondMatchesIsNotFound(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{matches: routesSeq(2)})

	for _, n := range []int{3, 100} {
		got, err := svc.NthRoute(context.Background(), "JFK", storage.PositionLeft, n)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}
		if got != nil {
			t.Errorf("n=%d: got route %+v, want nil", n, got)
		}
	}
}

func TestRouteService_NthRoute_NoMatches(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{})

	got, err := svc.NthRoute(context.Background(), "JFK", storage.PositionRight, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestRouteService_NthRoute_InvalidN(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{matches: routesSeq(1)})

	for _, n := range []int{0, -1} {
		_, err := svc.NthRoute(context.Background(), "JFK", storage.PositionLeft, n)
		if !errors.Is(err, ErrInvalidRoute) {
			t.Errorf("n=%d: err = %v, want ErrInvalidRoute", n, err)
		}
	}
}

func TestRouteService_NthRoute_StoreError(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{err: errors.New("db down")})

	if _, err := svc.NthRoute(context.Background(), "JFK", storage.PositionLeft, 1); err == nil {
		t.Fatal("expected error on store failure, got nil")
	}
}

// --- LongestRoute ---

func TestRouteService_LongestRoute(t *testing.T) {
	svc := NewRouteService(seededStore(t, 5, 20, 3))

	got, err := svc.LongestRoute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Duration != 20 {
		t.Fatalf("got %+v, want duration 20", got)
	}
}

func TestRouteService_EmptyStoreHasNoExtremes(t *testing.T) {
	svc := NewRouteService(storage.NewMemoryRoutesRepository())

	longest, err := svc.LongestRoute(context.Background())
	if err != nil {
		t.Fatalf("LongestRoute: unexpected error: %v", err)
	}
	if longest != nil {
		t.Errorf("LongestRoute = %+v, want nil", longest)
	}

	shortest, err := svc.ShortestRoute(context.Background(), "JFK", "LAX")
	if err != nil {
		t.Fatalf("ShortestRoute: unexpected error: %v", err)
	}
	if shortest != nil {
		t.Errorf("ShortestRoute = %+v, want nil", shortest)
	}
}

// --- ShortestRoute ---

func TestRouteService_ShortestRoute_EitherEndpoint(t *testing.T) {
	repo := storage.NewMemoryRoutesRepository()
	svc := NewRouteService(repo)
	ctx := context.Background()

	mustCreateRoute(t, svc, "JFK", storage.PositionLeft, 50)
	lax := mustCreateRoute(t, svc, "LAX", storage.PositionRight, 10)
	mustCreateRoute(t, svc, "ORD", storage.PositionLeft, 1)

	got, err := svc.ShortestRoute(ctx, "JFK", "LAX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != lax.ID {
		t.Fatalf("got %+v, want the LAX route", got)
	}
}

func TestRouteService_ShortestRoute_NormalisesCodes(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		wantCodes  []string
	}{
		{name: "both", start: "JFK", end: "LAX", wantCodes: []string{"JFK", "LAX"}},
		{name: "same code twice", start: "JFK", end: "JFK", wantCodes: []string{"JFK"}},
		{name: "start only", start: "JFK", end: "", wantCodes: []string{"JFK"}},
		{name: "end only, padded", start: "  ", end: " LAX ", wantCodes: []string{"LAX"}},
		{name: "neither", start: "", end: "", wantCodes: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRoutesRepo{forCodes: &storage.Route{ID: 9}}
			svc := NewRouteService(repo)

			got, err := svc.ShortestRoute(context.Background(), tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tc.wantCodes == nil {
				if len(repo.gotCodes) != 0 {
					t.Errorf("store was queried with %v, want no query", repo.gotCodes)
				}
				if got != nil {
					t.Errorf("got %+v, want nil", got)
				}
				return
			}

			if len(repo.gotCodes) != 1 {
				t.Fatalf("store queried %d times, want 1", len(repo.gotCodes))
			}
			if fmt.Sprint(repo.gotCodes[0]) != fmt.Sprint(tc.wantCodes) {
				t.Errorf("codes = %v, want %v", repo.gotCodes[0], tc.wantCodes)
			}
		})
	}
}

// --- CreateRoute ---

func TestRouteService_CreateRoute_Duplicate(t *testing.T) {
	svc := NewRouteService(storage.NewMemoryRoutesRepository())

	mustCreateRoute(t, svc, "JFK", storage.PositionLeft, 30)

	_, err := svc.CreateRoute(context.Background(), "JFK", storage.PositionLeft, 45)
	if !errors.Is(err, ErrRouteExists) {
		t.Fatalf("err = %v, want ErrRouteExists", err)
	}
	if !errors.Is(err, storage.ErrDuplicateRoute) {
		t.Errorf("err = %v, want it to wrap storage.ErrDuplicateRoute", err)
	}
}

func TestRouteService_CreateRoute_Invalid(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{})

	cases := []struct {
		name string
		code string
		pos  storage.Position
	}{
		{"empty code", "", storage.PositionLeft},
		{"blank code", "   ", storage.PositionLeft},
		{"code too long", "ABCDEFGHIJK", storage.PositionLeft},
		{"bad position", "JFK", storage.Position("X")},
	}
	for _, tc := range cases {
		_, err := svc.CreateRoute(context.Background(), tc.code, tc.pos, 10)
		if !errors.Is(err, ErrInvalidRoute) {
			t.Errorf("%s: err = %v, want ErrInvalidRoute", tc.name, err)
		}
	}
}

func TestRouteService_CreateRoute_StoreError(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{createErr: errors.New("disk full")})

	_, err := svc.CreateRoute(context.Background(), "JFK", storage.PositionLeft, 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrRouteExists) {
		t.Error("generic store error must not be reported as a conflict")
	}
}

// --- ListRoutes ---

func TestRouteService_ListRoutes_ReturnsCreated(t *testing.T) {
	svc := NewRouteService(storage.NewMemoryRoutesRepository())

	a := mustCreateRoute(t, svc, "JFK", storage.PositionLeft, 30)
	b := mustCreateRoute(t, svc, "JFK", storage.PositionRight, 40)
	if _, err := svc.CreateRoute(context.Background(), "JFK", storage.PositionLeft, 99); err == nil {
		t.Fatal("expected duplicate create to fail")
	}

	routes, err := svc.ListRoutes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	for i, want := range []*storage.Route{a, b} {
		got := routes[i]
		if got.ID != want.ID || got.AirportCode != want.AirportCode || got.Position != want.Position || got.Duration != want.Duration {
			t.Errorf("routes[%d] = %+v, want %+v", i, got, *want)
		}
	}
}

// --- Summary ---

func TestRouteService_Summary(t *testing.T) {
	svc := NewRouteService(seededStore(t, 5, 20, 3))

	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Count != 3 {
		t.Errorf("count = %d, want 3", sum.Count)
	}
	if sum.Longest == nil || sum.Longest.Duration != 20 {
		t.Errorf("longest = %+v, want duration 20", sum.Longest)
	}
	if sum.Shortest == nil || sum.Shortest.Duration != 3 {
		t.Errorf("shortest = %+v, want duration 3", sum.Shortest)
	}
}

func TestRouteService_Summary_StoreError(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{err: errors.New("db down")})

	if _, err := svc.Summary(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// --- helpers ---

func mustCreateRoute(t *testing.T, svc *RouteService, code string, pos storage.Position, duration int) *storage.Route {
	t.Helper()
	rt, err := svc.CreateRoute(context.Background(), code, pos, duration)
	if err != nil {
		t.Fatalf("CreateRoute(%s, %s, %d): %v", code, pos, duration, err)
	}
	return rt
}

// seededStore returns a memory store holding one Left route per duration,
// at airports A0, A1, ...
func seededStore(t *testing.T, durations ...int) storage.RoutesRepository {
	t.Helper()
	repo := storage.NewMemoryRoutesRepository()
	for i, d := range durations {
		_, err := repo.CreateRoute(context.Background(), &storage.Route{
			AirportCode: fmt.Sprintf("A%d", i),
			Position:    storage.PositionLeft,
			Duration:    d,
		})
		if err != nil {
			t.Fatalf("seed route %d: %v", i, err)
		}
	}
	return repo
}

func TestRouteService_CreateRoute_CountsCharacters(t *testing.T) {
	svc := NewRouteService(storage.NewMemoryRoutesRepository())

	rt := mustCreateRoute(t, svc, "ÅÅÅÅÅÅ", storage.PositionLeft, 10)
	if rt.AirportCode != "ÅÅÅÅÅÅ" {
		t.Errorf("code = %q", rt.AirportCode)
	}
	mustCreateRoute(t, svc, "ÉÉÉÉÉÉÉÉÉÉ", storage.PositionLeft, 10)

	_, err := svc.CreateRoute(context.Background(), "ÉÉÉÉÉÉÉÉÉÉÉ", storage.PositionLeft, 10)
	var ire *InvalidRouteError
	if !errors.As(err, &ire) {
		t.Fatalf("err = %v, want *InvalidRouteError", err)
	}
	if ire.Field != "airport_code" || ire.Message != "must be at most 10 characters" {
		t.Errorf("got %+v", ire)
	}
	if !errors.Is(err, ErrInvalidRoute) {
		t.Error("InvalidRouteError must match ErrInvalidRoute")
	}
}

func TestRouteService_CreateRoute_BlankAndLongDiffer(t *testing.T) {
	svc := NewRouteService(&mockRoutesRepo{})

	_, blankErr := svc.CreateRoute(context.Background(), "  ", storage.PositionLeft, 1)
	_, longErr := svc.CreateRoute(context.Background(), "ABCDEFGHIJK", storage.PositionLeft, 1)

	var blank, long *InvalidRouteError
	if !errors.As(blankErr, &blank) || !errors.As(longErr, &long) {
		t.Fatalf("errors = %v / %v, want *InvalidRouteError", blankErr, longErr)
	}
	if blank.Message == long.Message {
		t.Errorf("blank and over-long codes share the message %q", blank.Message)
	}
}

func TestRouteService_NthRoute_TrimsCode(t *testing.T) {
	svc := NewRouteService(storage.NewMemoryRoutesRepository())

	want := mustCreateRoute(t, svc, " JFK ", storage.PositionLeft, 30)
	if want.AirportCode != "JFK" {
		t.Fatalf("stored code = %q, want JFK", want.AirportCode)
	}

	got, err := svc.NthRoute(context.Background(), "  JFK ", storage.PositionLeft, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != want.ID {
		t.Errorf("got %+v, want route %d", got, want.ID)
	}

	if _, err := svc.NthRoute(context.Background(), "   ", storage.PositionLeft, 1); !errors.Is(err, ErrInvalidRoute) {
		t.Errorf("blank code: err = %v, want ErrInvalidRoute", err)
	}
}
