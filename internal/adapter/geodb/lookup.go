package geodb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
)

const geonameQuery = `
	SELECT g.name, g.latitude, g.longitude, g.country, g.timezone,
	       COALESCE(g.elevation, 0), COALESCE(a.name, ''), COALESCE(c.country, '')
	FROM geoname g
	LEFT JOIN admin1 a ON a.key = g.country || '.' || g.admin1
	LEFT JOIN country c ON c.iso = g.country
	WHERE g.geonameid = ?`

const zipQuery = `
	SELECT CityMixedCase, State, Latitude, Longitude, TimeZone, DayLightSaving,
	       COALESCE(Elevation, 0)
	FROM ZIPCodes_Primary
	WHERE ZipCode = ?`

// Store implements domain.LocationLookup over the GeoNames and ZIP databases.
type Store struct {
	geonames *sql.DB
	zips     *sql.DB
	legacy   legacyCities
	logger   *slog.Logger
}

// NewStore creates a Store. The legacy city table is loaded from the
// embedded YAML file.
func NewStore(geonames, zips *sql.DB, logger *slog.Logger) (*Store, error) {
	legacy, err := loadLegacyCities(legacyCitiesYAML)
	if err != nil {
		return nil, err
	}
	return &Store{geonames: geonames, zips: zips, legacy: legacy, logger: logger}, nil
}

func (s *Store) LookupGeoname(ctx context.Context, id int) (*domain.Location, error) {
	var (
		name, cc, tzid, admin1, country string
		lat, lon, elevation             float64
	)
	err := s.geonames.QueryRowContext(ctx, geonameQuery, id).Scan(
		&name, &lat, &lon, &cc, &tzid, &elevation, &admin1, &country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query geoname %d: %w", id, err)
	}

	loc, err := domain.NewLocation(domain.LocationSpec{
		Latitude:    lat,
		Longitude:   lon,
		TZID:        tzid,
		Israel:      cc == "IL",
		Name:        geonameTitle(name, admin1, country, cc),
		CountryCode: cc,
		GeonameID:   id,
		Elevation:   elevation,
		Admin1:      admin1,
		Kind:        domain.ResolutionGeonameID,
	})
	if err != nil {
		return nil, fmt.Errorf("geoname %d: %w", id, err)
	}
	return &loc, nil
}

func (s *Store) LookupZip(ctx context.Context, zip string) (*domain.Location, error) {
	var (
		city, state, dst string
		lat, lon, elev   float64
		offsetWest       int
	)
	err := s.zips.QueryRowContext(ctx, zipQuery, zip).Scan(
		&city, &state, &lat, &lon, &offsetWest, &dst, &elev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query zip %s: %w", zip, err)
	}

	loc, err := domain.NewLocation(domain.LocationSpec{
		Latitude:    lat,
		Longitude:   lon,
		TZID:        domain.USTimezone(state, offsetWest, strings.EqualFold(dst, "Y")),
		Name:        fmt.Sprintf("%s, %s %s", city, state, zip),
		CountryCode: "US",
		Zip:         zip,
		Elevation:   elev,
		Admin1:      state,
		Kind:        domain.ResolutionZip,
	})
	if err != nil {
		return nil, fmt.Errorf("zip %s: %w", zip, err)
	}
	return &loc, nil
}

// LookupLegacyCity resolves a historical city name through the GeoNames table.
func (s *Store) LookupLegacyCity(ctx context.Context, name string) (*domain.Location, error) {
	id, ok := s.legacy.lookup(name)
	if !ok {
		return nil, nil
	}
	loc, err := s.LookupGeoname(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		s.logger.Warn("legacy city missing from geonames", "city", name, "geonameid", id)
	}
	return loc, nil
}

// CitiesInTimezone lists GeoNames cities in tzid for nearest-city search.
func (s *Store) CitiesInTimezone(ctx context.Context, tzid string) ([]domain.City, error) {
	rows, err := s.geonames.QueryContext(ctx,
		`SELECT geonameid, latitude, longitude FROM geoname WHERE timezone = ?`, tzid)
	if err != nil {
		return nil, fmt.Errorf("query cities in %s: %w", tzid, err)
	}
	defer rows.Close()

	var out []domain.City
	for rows.Next() {
		c := domain.City{TZID: tzid}
		if err := rows.Scan(&c.GeonameID, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// geonameTitle formats "Name, Admin1, Country", omitting the region when it
// repeats the name and the region entirely outside the US, Canada and UK.
func geonameTitle(name, admin1, country, cc string) string {
	parts := []string{name}
	switch cc {
	case "US", "CA", "GB":
		if admin1 != "" && !strings.HasPrefix(name, admin1) {
			parts = append(parts, admin1)
		}
	}
	if country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

// CheckReadiness pings both databases.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.geonames.PingContext(ctx); err != nil {
		return fmt.Errorf("geonames database: %w", err)
	}
	if err := s.zips.PingContext(ctx); err != nil {
		return fmt.Errorf("zips database: %w", err)
	}
	return nil
}
