package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hebcal/hdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	valid := LocationSpec{Latitude: 31.77, Longitude: 35.21, TZID: "Asia/Jerusalem", CountryCode: "IL"}

	t.Run("valid", func(t *testing.T) {
		loc, err := NewLocation(valid)
		require.NoError(t, err)
		assert.Equal(t, "Asia/Jerusalem", loc.TimeZone().String())
	})

	tests := []struct {
		name   string
		mutate func(*LocationSpec)
	}{
		{"latitude", func(s *LocationSpec) { s.Latitude = 95 }},
		{"longitude", func(s *LocationSpec) { s.Longitude = -181 }},
		{"missing timezone", func(s *LocationSpec) { s.TZID = "" }},
		{"unknown timezone", func(s *LocationSpec) { s.TZID = "Nowhere/Special" }},
		{"country code", func(s *LocationSpec) { s.CountryCode = "ISR" }},
		{"zip", func(s *LocationSpec) { s.Zip = "ABCDE" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			_, err := NewLocation(spec)
			assert.True(t, IsKind(err, KindInvalidFormat), "got %v", err)
		})
	}
}

func TestLocation_MarshalJSON(t *testing.T) {
	loc := jerusalem(t).withKind(ResolutionGeonameID)
	data, err := json.Marshal(loc)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Jerusalem", got["title"])
	assert.Equal(t, "Asia/Jerusalem", got["tzid"])
	assert.Equal(t, true, got["il"])
	assert.Equal(t, "geoname", got["geo"])
	assert.InDelta(t, 281184, got["geonameid"], 0)
}

func TestFormatLatLong(t *testing.T) {
	assert.Equal(t, "31°46′N, 35°12′E", formatLatLong(31.77, 35.21))
	assert.Equal(t, "33°52′S, 151°12′E", formatLatLong(-33.87, 151.21))
	assert.Equal(t, "40°30′N, 74°15′W", formatLatLong(40.5, -74.25))
}

func TestNewCalendarExport(t *testing.T) {
	loc := jerusalem(t)
	opts := CalendarOptions{Location: loc, Year: 2024, Locale: "en"}
	hd := hdate.FromGregorian(2024, time.April, 22)
	candles := time.Date(2024, time.April, 22, 19, 5, 0, 0, loc.TimeZone())
	events := []Event{
		testEvent(hd, "Erev Pesach", FlagErev|FlagLightCandles),
		{Date: hd, Desc: "Candle lighting", Flags: FlagLightCandles, Categories: CategoriesFor(FlagLightCandles), Time: candles},
	}

	exp := NewCalendarExport(opts, events, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Hebcal Jerusalem 2024", exp.Title)
	require.Len(t, exp.Items, 2)
	assert.Equal(t, "2024-04-22", exp.Items[0].Date)
	assert.Equal(t, "2024-04-22T19:05:00+03:00", exp.Items[1].Date)
	assert.Equal(t, CategoryCandles, exp.Items[1].Category)
	assert.Equal(t, "2024-04-22", exp.Range.Start)
	assert.Equal(t, "2024-04-22", exp.Range.End)
}
