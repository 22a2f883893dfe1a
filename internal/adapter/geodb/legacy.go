package geodb

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed legacy_cities.yaml
var legacyCitiesYAML []byte

type legacyCityFile struct {
	Cities []struct {
		Name      string   `yaml:"name"`
		GeonameID int      `yaml:"geonameid"`
		Aliases   []string `yaml:"aliases"`
	} `yaml:"cities"`
}

// legacyCities maps normalized legacy city names to geoname ids.
type legacyCities map[string]int

func loadLegacyCities(data []byte) (legacyCities, error) {
	var f legacyCityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse legacy cities: %w", err)
	}
	out := make(legacyCities, len(f.Cities)*2)
	for _, c := range f.Cities {
		if c.GeonameID <= 0 {
			return nil, fmt.Errorf("legacy city %q: missing geonameid", c.Name)
		}
		out[normalizeCityName(c.Name)] = c.GeonameID
		for _, a := range c.Aliases {
			out[normalizeCityName(a)] = c.GeonameID
		}
	}
	return out, nil
}

// normalizeCityName folds case and treats spaces, underscores and hyphens alike.
func normalizeCityName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return ' '
		}
		return r
	}, s)
}

func (l legacyCities) lookup(name string) (int, bool) {
	id, ok := l[normalizeCityName(name)]
	return id, ok
}
