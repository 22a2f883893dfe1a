package domain

import (
	"context"
	"math"
	"strconv"
	"sync"
)

const earthRadiusKm = 6371.0

// ResolveOrGeoIP resolves the query's own location keys and, when they name
// none, falls back to the client's address. GeoIP failures are logged and
// treated as "no location" so they never fail a request.
func (r *Resolver) ResolveOrGeoIP(ctx context.Context, q Query, ip string) (*Location, Query, error) {
	loc, out, err := r.Resolve(ctx, q)
	if err != nil || loc != nil || r.geoip == nil || ip == "" {
		return loc, out, err
	}

	res, err := r.geoip.LookupIP(ctx, ip)
	if err != nil {
		r.logger.Warn("geoip lookup failed", "ip", ip, "error", err)
		return nil, out, nil
	}
	if res == nil {
		return nil, out, nil
	}

	if res.CountryCode == "US" && zipRe.MatchString(res.PostalCode) {
		if sr := r.byZip(ctx, Query{"zip": res.PostalCode}); sr.outcome == resolved {
			l := sr.loc
			return &l, out, nil
		}
	}

	geonameID := res.GeonameID
	if geonameID == 0 && res.TimeZone != "" && r.cities != nil {
		geonameID = r.nearestCity(ctx, res.Latitude, res.Longitude, res.TimeZone)
	}
	if geonameID > 0 {
		l, err := r.lookup.LookupGeoname(ctx, geonameID)
		if err != nil {
			r.logger.Warn("geoip geoname lookup failed", "geonameid", geonameID, "error", err)
		} else if l != nil {
			l2 := forceIsrael(l.withKind(ResolutionGeonameID))
			return &l2, out, nil
		}
	}

	if approx, ok := newApproximateLocation(res.Latitude, res.Longitude, res.TimeZone, res.CountryCode); ok {
		return &approx, out, nil
	}
	return nil, out, nil
}

// nearestCity returns the geoname id of the closest known city in tzid, or 0.
func (r *Resolver) nearestCity(ctx context.Context, lat, lon float64, tzid string) int {
	key := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	if id, ok := r.memo.Get(ctx, key); ok {
		return id
	}
	cities, err := r.cities.CitiesInTimezone(ctx, tzid)
	if err != nil {
		r.logger.Warn("nearest city search failed", "tzid", tzid, "error", err)
		return 0
	}
	best, bestDist := 0, math.MaxFloat64
	for _, c := range cities {
		if d := haversineKm(lat, lon, c.Latitude, c.Longitude); d < bestDist {
			best, bestDist = c.GeonameID, d
		}
	}
	if best > 0 {
		r.memo.Put(ctx, key, best)
	}
	return best
}

// haversineKm is the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// MemoryCityCache is the default process-local nearest-city memo.
type MemoryCityCache struct {
	m sync.Map
}

func NewMemoryCityCache() *MemoryCityCache {
	return &MemoryCityCache{}
}

func (c *MemoryCityCache) Get(_ context.Context, key string) (int, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

func (c *MemoryCityCache) Put(_ context.Context, key string, id int) {
	c.m.Store(key, id)
}
