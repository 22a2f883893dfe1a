// Package geoip resolves client addresses with a MaxMind GeoIP2 City database.
package geoip

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/oschwald/geoip2-golang"
)

// Reader implements domain.GeoIPLookup.
type Reader struct {
	db     *geoip2.Reader
	logger *slog.Logger
}

// Open memory-maps the database at path.
func Open(path string, logger *slog.Logger) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	meta := db.Metadata()
	logger.Info("geoip database opened", "path", path, "type", meta.DatabaseType, "build_epoch", meta.BuildEpoch)
	return &Reader{db: db, logger: logger}, nil
}

// LookupIP returns what the database knows about ip. Unparseable, private
// and unknown addresses yield (nil, nil).
func (r *Reader) LookupIP(_ context.Context, ip string) (*domain.GeoIPResult, error) {
	addr := net.ParseIP(ip)
	if addr == nil || addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() {
		return nil, nil
	}
	rec, err := r.db.City(addr)
	if err != nil {
		return nil, fmt.Errorf("geoip lookup %s: %w", ip, err)
	}
	return toResult(rec), nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

func toResult(rec *geoip2.City) *domain.GeoIPResult {
	if rec == nil || (rec.Country.IsoCode == "" && rec.Location.TimeZone == "") {
		return nil
	}
	return &domain.GeoIPResult{
		CountryCode:    rec.Country.IsoCode,
		TimeZone:       rec.Location.TimeZone,
		Latitude:       rec.Location.Latitude,
		Longitude:      rec.Location.Longitude,
		PostalCode:     rec.Postal.Code,
		GeonameID:      int(rec.City.GeoNameID),
		AccuracyRadius: int(rec.Location.AccuracyRadius),
	}
}
