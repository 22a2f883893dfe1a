package domain

import (
	"context"
	"time"
)

// LocationLookup resolves stored places. Implementations return (nil, nil)
// when the identifier is unknown and an error only for I/O failures.
type LocationLookup interface {
	LookupGeoname(ctx context.Context, id int) (*Location, error)
	LookupZip(ctx context.Context, zip string) (*Location, error)
	LookupLegacyCity(ctx context.Context, name string) (*Location, error)
}

// TimezoneFinder maps a coordinate to an IANA zone id using zone shapes.
// It returns "" when the point is not covered.
type TimezoneFinder interface {
	TimezoneAt(lat, lon float64) string
}

// GeoIPResult is what a GeoIP database knows about a client address.
type GeoIPResult struct {
	CountryCode    string
	TimeZone       string
	Latitude       float64
	Longitude      float64
	PostalCode     string
	GeonameID      int
	AccuracyRadius int // kilometers
}

// GeoIPLookup resolves a client IP. Unknown addresses yield (nil, nil).
type GeoIPLookup interface {
	LookupIP(ctx context.Context, ip string) (*GeoIPResult, error)
}

// City is a nearest-city search candidate.
type City struct {
	GeonameID int
	Latitude  float64
	Longitude float64
	TZID      string
}

// CityIndex lists candidate cities sharing a timezone.
type CityIndex interface {
	CitiesInTimezone(ctx context.Context, tzid string) ([]City, error)
}

// NearestCityCache memoizes nearest-city answers by exact coordinate key.
// Recomputing a miss is harmless, so implementations need no locking beyond
// what their backing store provides.
type NearestCityCache interface {
	Get(ctx context.Context, key string) (int, bool)
	Put(ctx context.Context, key string, geonameID int)
}

// Engine generates calendar events for a set of options.
type Engine interface {
	Generate(ctx context.Context, opts CalendarOptions) ([]Event, error)
}

// SunsetCalculator computes local sunset for a civil date at a location.
type SunsetCalculator interface {
	Sunset(loc Location, date time.Time) (time.Time, error)
}
