// Package tzshape maps coordinates to IANA zones using timezone boundary shapes.
package tzshape

import (
	"fmt"

	"github.com/ringsaturn/tzf"
)

// Finder implements domain.TimezoneFinder.
type Finder struct {
	f tzf.F
}

// New loads the bundled simplified boundary data.
func New() (*Finder, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("load timezone shapes: %w", err)
	}
	return &Finder{f: f}, nil
}

// TimezoneAt returns the zone containing the point, or "" over open ocean
// outside any Etc zone.
func (f *Finder) TimezoneAt(lat, lon float64) string {
	return f.f.GetTimezoneName(lon, lat)
}
