package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// ResolutionKind records which strategy produced a Location.
type ResolutionKind int

const (
	ResolutionNone ResolutionKind = iota
	ResolutionGeonameID
	ResolutionZip
	ResolutionLegacyCity
	ResolutionCoordinates
	ResolutionApproximate
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionGeonameID:
		return "geonameid"
	case ResolutionZip:
		return "zip"
	case ResolutionLegacyCity:
		return "legacy_city"
	case ResolutionCoordinates:
		return "coordinates"
	case ResolutionApproximate:
		return "approximate"
	default:
		return "none"
	}
}

// GeoParam is the value persisted in the "geo" query key.
func (k ResolutionKind) GeoParam() string {
	switch k {
	case ResolutionGeonameID, ResolutionLegacyCity:
		return "geoname"
	case ResolutionZip:
		return "zip"
	case ResolutionCoordinates, ResolutionApproximate:
		return "pos"
	default:
		return "none"
	}
}

// LocationSpec carries the raw fields of a Location before validation.
type LocationSpec struct {
	Latitude    float64 `validate:"latitude"`
	Longitude   float64 `validate:"longitude"`
	TZID        string  `validate:"required,timezone"`
	Israel      bool
	Name        string
	CountryCode string `validate:"omitempty,len=2"`
	Zip         string `validate:"omitempty,numeric,len=5"`
	GeonameID   int    `validate:"gte=0"`
	Elevation   float64
	Admin1      string
	Kind        ResolutionKind
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Location is an immutable resolved place. Construct it with NewLocation.
type Location struct {
	spec LocationSpec
	tz   *time.Location
}

// NewLocation validates the spec: coordinates within range and a timezone the
// runtime's zone database can load.
func NewLocation(spec LocationSpec) (Location, error) {
	if err := validate.Struct(spec); err != nil {
		return Location{}, &Error{Kind: KindInvalidFormat, Msg: fmt.Sprintf("invalid location: %v", err), Err: err}
	}
	tz, err := time.LoadLocation(spec.TZID)
	if err != nil {
		return Location{}, &Error{Kind: KindInvalidFormat, Param: "tzid", Msg: fmt.Sprintf("unknown timezone %q", spec.TZID), Err: err}
	}
	return Location{spec: spec, tz: tz}, nil
}

// newApproximateLocation builds a GeoIP-derived location. Only the timezone is
// checked; anything else is taken on trust from the GeoIP database.
func newApproximateLocation(lat, lon float64, tzid, cc string) (Location, bool) {
	tz, err := time.LoadLocation(tzid)
	if err != nil || tzid == "" {
		return Location{}, false
	}
	spec := LocationSpec{
		Latitude:    lat,
		Longitude:   lon,
		TZID:        tzid,
		Israel:      cc == "IL" || tzid == israelTZID,
		Name:        formatLatLong(lat, lon),
		CountryCode: cc,
		Kind:        ResolutionApproximate,
	}
	return Location{spec: spec, tz: tz}, true
}

func (l Location) Latitude() float64 { return l.spec.Latitude }
func (l Location) Longitude() float64 { return l.spec.Longitude }
func (l Location) TZID() string { return l.spec.TZID }
func (l Location) IsIsrael() bool { return l.spec.Israel }
func (l Location) Name() string { return l.spec.Name }
func (l Location) CountryCode() string { return l.spec.CountryCode }
func (l Location) Zip() string { return l.spec.Zip }
func (l Location) GeonameID() int { return l.spec.GeonameID }
func (l Location) Elevation() float64 { return l.spec.Elevation }
func (l Location) Admin1() string { return l.spec.Admin1 }
func (l Location) Kind() ResolutionKind { return l.spec.Kind }
func (l Location) TimeZone() *time.Location { return l.tz }

// withKind returns a copy tagged with a different resolution kind.
func (l Location) withKind(k ResolutionKind) Location {
	l.spec.Kind = k
	return l
}

// MarshalJSON exposes the location in exports.
func (l Location) MarshalJSON() ([]byte, error) {
	type out struct {
		Title       string  `json:"title"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		TZID        string  `json:"tzid"`
		Israel      bool    `json:"il"`
		CountryCode string  `json:"cc,omitempty"`
		Zip         string  `json:"zip,omitempty"`
		GeonameID   int     `json:"geonameid,omitempty"`
		Elevation   float64 `json:"elevation,omitempty"`
		Admin1      string  `json:"admin1,omitempty"`
		Geo         string  `json:"geo"`
	}
	return json.Marshal(out{
		Title:       l.spec.Name,
		Latitude:    l.spec.Latitude,
		Longitude:   l.spec.Longitude,
		TZID:        l.spec.TZID,
		Israel:      l.spec.Israel,
		CountryCode: l.spec.CountryCode,
		Zip:         l.spec.Zip,
		GeonameID:   l.spec.GeonameID,
		Elevation:   l.spec.Elevation,
		Admin1:      l.spec.Admin1,
		Geo:         l.spec.Kind.GeoParam(),
	})
}

// formatLatLong renders coordinates as degrees and minutes, e.g. 31°47′N, 35°13′E.
func formatLatLong(lat, lon float64) string {
	return fmt.Sprintf("%s, %s", degMin(lat, "N", "S"), degMin(lon, "E", "W"))
}

func degMin(v float64, pos, neg string) string {
	dir := pos
	if v < 0 {
		dir = neg
	}
	v = math.Abs(v)
	deg := math.Floor(v)
	mins := math.Floor((v - deg) * 60)
	return fmt.Sprintf("%d°%d′%s", int(deg), int(mins), dir)
}
