package domain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var zipRe = regexp.MustCompile(`^(\d{5})(?:[-\s+]?\d{4})?$`)

type outcome int

const (
	notApplicable outcome = iota
	resolved
	invalid
)

// strategyResult separates "this input was not provided" from "this input was
// wrong" so the resolver can fall through only on the former.
type strategyResult struct {
	outcome outcome
	loc     Location
	query   Query // normalized location keys written back on success
	err     error
}

func skip() strategyResult { return strategyResult{outcome: notApplicable} }
func fail(err error) strategyResult { return strategyResult{outcome: invalid, err: err} }
func found(l Location, q Query) strategyResult {
	return strategyResult{outcome: resolved, loc: l, query: q}
}

type strategy func(ctx context.Context, q Query) strategyResult

// Resolver turns location query keys into a Location.
type Resolver struct {
	lookup LocationLookup
	tz     TimezoneFinder
	geoip  GeoIPLookup
	cities CityIndex
	memo   NearestCityCache
	logger *slog.Logger
}

// ResolverOption configures optional Resolver collaborators.
type ResolverOption func(*Resolver)

// WithTimezoneFinder enables timezone inference for bare coordinates.
func WithTimezoneFinder(f TimezoneFinder) ResolverOption {
	return func(r *Resolver) { r.tz = f }
}

// WithGeoIP enables the client IP fallback. cities may be nil, which disables
// the nearest-city search.
func WithGeoIP(g GeoIPLookup, cities CityIndex) ResolverOption {
	return func(r *Resolver) {
		r.geoip = g
		r.cities = cities
	}
}

// WithNearestCityCache replaces the default in-process memo.
func WithNearestCityCache(c NearestCityCache) ResolverOption {
	return func(r *Resolver) { r.memo = c }
}

// NewResolver creates a Resolver backed by lookup.
func NewResolver(lookup LocationLookup, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		lookup: lookup,
		memo:   NewMemoryCityCache(),
		logger: logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve applies the location strategies in priority order. It returns the
// location (nil if the query names none) and a copy of q whose location keys
// are replaced by their normalized form plus a geo discriminator.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*Location, Query, error) {
	out := q.Clone()
	for _, s := range []strategy{r.byGeonameID, r.byZip, r.byLegacyCity, r.byCoordinates, r.byLegacyCoordinates} {
		res := s(ctx, q)
		switch res.outcome {
		case invalid:
			return nil, out, res.err
		case resolved:
			deleteLocationKeys(out)
			for k, v := range res.query {
				out[k] = v
			}
			out.Set("geo", res.loc.Kind().GeoParam())
			loc := res.loc
			return &loc, out, nil
		}
	}
	if q.Get("geo") == "pos" {
		return nil, out, nil
	}
	out.Set("geo", ResolutionNone.GeoParam())
	return nil, out, nil
}

func (r *Resolver) byGeonameID(ctx context.Context, q Query) strategyResult {
	raw := q.Get("geonameid")
	if raw == "" {
		return skip()
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return fail(newError(KindInvalidFormat, "geonameid", "geonameid %q is not a positive integer", raw))
	}
	loc, err := r.lookup.LookupGeoname(ctx, id)
	if err != nil {
		return fail(fmt.Errorf("lookup geoname %d: %w", id, err))
	}
	if loc == nil {
		return fail(newError(KindNotFound, "geonameid", "unknown geonameid %d", id))
	}
	return found(forceIsrael(loc.withKind(ResolutionGeonameID)), Query{"geonameid": strconv.Itoa(id)})
}

func (r *Resolver) byZip(ctx context.Context, q Query) strategyResult {
	raw := q.Get("zip")
	if raw == "" {
		return skip()
	}
	m := zipRe.FindStringSubmatch(raw)
	if m == nil {
		return fail(newError(KindInvalidFormat, "zip", "zip %q must be 5 digits", raw))
	}
	zip := m[1]
	loc, err := r.lookup.LookupZip(ctx, zip)
	if err != nil {
		return fail(fmt.Errorf("lookup zip %s: %w", zip, err))
	}
	if loc == nil {
		return fail(newError(KindNotFound, "zip", "unknown zip code %s", zip))
	}
	return found(loc.withKind(ResolutionZip), Query{"zip": zip})
}

func (r *Resolver) byLegacyCity(ctx context.Context, q Query) strategyResult {
	name := q.Get("city")
	if name == "" {
		return skip()
	}
	loc, err := r.lookup.LookupLegacyCity(ctx, name)
	if err != nil {
		return fail(fmt.Errorf("lookup city %q: %w", name, err))
	}
	if loc == nil {
		return fail(newError(KindNotFound, "city", "unknown city %q", name))
	}
	norm := Query{"city": name}
	if loc.GeonameID() > 0 {
		norm = Query{"geonameid": strconv.Itoa(loc.GeonameID())}
	}
	return found(forceIsrael(loc.withKind(ResolutionLegacyCity)), norm)
}

func (r *Resolver) byCoordinates(_ context.Context, q Query) strategyResult {
	if !q.Has("latitude") || !q.Has("longitude") {
		return skip()
	}
	lat, err := strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil {
		return fail(newError(KindInvalidFormat, "latitude", "latitude %q is not a number", q.Get("latitude")))
	}
	lon, err := strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil {
		return fail(newError(KindInvalidFormat, "longitude", "longitude %q is not a number", q.Get("longitude")))
	}
	return r.coordinateLocation(lat, lon, normalizeTZID(q.Get("tzid")), q)
}

func (r *Resolver) byLegacyCoordinates(_ context.Context, q Query) strategyResult {
	if !q.Has("ladeg") || !q.Has("lodeg") {
		return skip()
	}
	lat, err := legacyDegrees(q, "ladeg", "lamin", "ladir", "s", 90)
	if err != nil {
		return fail(err)
	}
	lon, err := legacyDegrees(q, "lodeg", "lomin", "lodir", "w", 180)
	if err != nil {
		return fail(err)
	}
	tzid := normalizeTZID(q.Get("tzid"))
	if tzid == "" && q.Has("tz") {
		tz, err := strconv.Atoi(strings.TrimSpace(q.Get("tz")))
		if err != nil {
			return fail(newError(KindInvalidFormat, "tz", "tz %q is not an integer", q.Get("tz")))
		}
		tzid = LegacyTimezone(tz, q.Get("dst"))
	}
	return r.coordinateLocation(lat, lon, tzid, q)
}

func legacyDegrees(q Query, degKey, minKey, dirKey, negDir string, limit int) (float64, error) {
	deg, err := strconv.Atoi(q.Get(degKey))
	if err != nil {
		return 0, newError(KindInvalidFormat, degKey, "%s %q is not an integer", degKey, q.Get(degKey))
	}
	mins := 0
	if q.Has(minKey) {
		if mins, err = strconv.Atoi(q.Get(minKey)); err != nil {
			return 0, newError(KindInvalidFormat, minKey, "%s %q is not an integer", minKey, q.Get(minKey))
		}
	}
	if deg < 0 || deg > limit || mins < 0 || mins > 59 {
		return 0, newError(KindOutOfRange, degKey, "%s %d°%d′ out of range", degKey, deg, mins)
	}
	v := float64(deg) + float64(mins)/60
	if strings.EqualFold(q.Get(dirKey), negDir) {
		v = -v
	}
	return v, nil
}

func (r *Resolver) coordinateLocation(lat, lon float64, tzid string, q Query) strategyResult {
	if lat < -90 || lat > 90 {
		return fail(newError(KindOutOfRange, "latitude", "latitude %v out of range ±90", lat))
	}
	if lon < -180 || lon > 180 {
		return fail(newError(KindOutOfRange, "longitude", "longitude %v out of range ±180", lon))
	}
	if tzid == "" && r.tz != nil {
		tzid = r.tz.TimezoneAt(lat, lon)
	}
	if tzid == "" {
		return fail(newError(KindInvalidFormat, "tzid", "timezone required for coordinates"))
	}
	if !validTimezone(tzid) {
		return fail(newError(KindInvalidFormat, "tzid", "unknown timezone %q", tzid))
	}
	name := q.Get("city-typeahead")
	if name == "" {
		name = formatLatLong(lat, lon)
	}
	israel := tzid == israelTZID
	cc := ""
	if israel {
		cc = "IL"
	}
	loc, err := NewLocation(LocationSpec{
		Latitude:    lat,
		Longitude:   lon,
		TZID:        tzid,
		Israel:      israel,
		Name:        name,
		CountryCode: cc,
		Kind:        ResolutionCoordinates,
	})
	if err != nil {
		return fail(err)
	}
	return found(loc, Query{
		"latitude":  strconv.FormatFloat(lat, 'f', -1, 64),
		"longitude": strconv.FormatFloat(lon, 'f', -1, 64),
		"tzid":      tzid,
	})
}

// forceIsrael marks locations in the Jerusalem zone as Israeli.
func forceIsrael(l Location) Location {
	if l.spec.TZID == israelTZID && !l.spec.Israel {
		l.spec.Israel = true
		if l.spec.CountryCode == "" {
			l.spec.CountryCode = "IL"
		}
	}
	return l
}
