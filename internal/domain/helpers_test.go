package domain

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freezeClock(t *testing.T, at time.Time) clockwork.Clock {
	t.Helper()
	fc := clockwork.NewFakeClockAt(at)
	SetClock(fc)
	t.Cleanup(func() { SetClock(nil) })
	return fc
}

func mustLocation(t *testing.T, spec LocationSpec) *Location {
	t.Helper()
	loc, err := NewLocation(spec)
	require.NoError(t, err)
	return &loc
}

func jerusalem(t *testing.T) *Location {
	return mustLocation(t, LocationSpec{
		Latitude: 31.76904, Longitude: 35.21633, TZID: "Asia/Jerusalem",
		Israel: true, Name: "Jerusalem", CountryCode: "IL", GeonameID: 281184,
	})
}

func newYork(t *testing.T) *Location {
	return mustLocation(t, LocationSpec{
		Latitude: 40.71427, Longitude: -74.00597, TZID: "America/New_York",
		Name: "New York", CountryCode: "US", GeonameID: 5128581,
	})
}

// --- mocks ---

type mockLookup struct {
	mu        sync.Mutex
	geonames  map[int]*Location
	zips      map[string]*Location
	cities    map[string]*Location
	err       error
	zipCalls  []string
	nameCalls []int
}

func (m *mockLookup) LookupGeoname(_ context.Context, id int) (*Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nameCalls = append(m.nameCalls, id)
	if m.err != nil {
		return nil, m.err
	}
	return m.geonames[id], nil
}

func (m *mockLookup) LookupZip(_ context.Context, zip string) (*Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zipCalls = append(m.zipCalls, zip)
	if m.err != nil {
		return nil, m.err
	}
	return m.zips[zip], nil
}

func (m *mockLookup) LookupLegacyCity(_ context.Context, name string) (*Location, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cities[name], nil
}

type mockTZFinder struct{ tzid string }

func (m mockTZFinder) TimezoneAt(_, _ float64) string { return m.tzid }

type mockGeoIP struct {
	result *GeoIPResult
	err    error
}

func (m mockGeoIP) LookupIP(_ context.Context, _ string) (*GeoIPResult, error) {
	return m.result, m.err
}

type mockCities struct {
	cities []City
	calls  int
}

func (m *mockCities) CitiesInTimezone(_ context.Context, tzid string) ([]City, error) {
	m.calls++
	var out []City
	for _, c := range m.cities {
		if c.TZID == tzid {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockSunset struct{ at time.Time }

func (m mockSunset) Sunset(_ Location, _ time.Time) (time.Time, error) { return m.at, nil }

type statusErr struct{ code int }

func (e statusErr) Error() string   { return "engine rejected options" }
func (e statusErr) StatusCode() int { return e.code }

type mockEngine struct {
	calls  []CalendarOptions
	events func(opts CalendarOptions) []Event
	err    error
}

func (m *mockEngine) Generate(_ context.Context, opts CalendarOptions) ([]Event, error) {
	m.calls = append(m.calls, opts)
	if m.err != nil {
		return nil, m.err
	}
	if m.events == nil {
		return nil, nil
	}
	return m.events(opts), nil
}
