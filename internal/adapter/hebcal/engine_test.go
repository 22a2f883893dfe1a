package hebcal

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/hebcal/hdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jerusalem(t *testing.T) domain.Location {
	t.Helper()
	loc, err := domain.NewLocation(domain.LocationSpec{
		Latitude:    31.76904,
		Longitude:   35.21633,
		TZID:        "Asia/Jerusalem",
		Israel:      true,
		Name:        "Jerusalem",
		CountryCode: "IL",
		GeonameID:   281184,
	})
	require.NoError(t, err)
	return loc
}

func TestEngine_CalOptions(t *testing.T) {
	e := NewEngine(observability.NewMetricsForTesting(), discardLogger())
	loc := jerusalem(t)
	opts := domain.CalendarOptions{
		Location:           &loc,
		Year:               2024,
		Month:              4,
		CandleLighting:     true,
		CandleLightingMins: 40,
		IL:                 true,
		Sedrot:             true,
		Hour12:             true,
		Locale:             "he",
		DailyLearning:      map[string]int{domain.LearningDafYomi: 1, domain.LearningPsalms: 1},
		Mask:               domain.FlagChag | domain.FlagRoshChodesh,
	}

	c := e.calOptions(opts)
	assert.Equal(t, 2024, c.Year)
	assert.Equal(t, time.April, c.Month)
	assert.True(t, c.CandleLighting)
	assert.Equal(t, 40, c.CandleLightingMins)
	assert.True(t, c.IL)
	assert.True(t, c.Sedrot)
	assert.False(t, c.Hour24)
	assert.True(t, c.DafYomi)
	assert.False(t, c.MishnaYomi)
	assert.Equal(t, "he", c.Locale)
	assert.EqualValues(t, opts.Mask, c.Mask)
	require.NotNil(t, c.Location)
	assert.InDelta(t, 31.76904, c.Location.Latitude, 1e-9)
	assert.Zero(t, c.Start)
}

func TestEngine_CalOptions_Range(t *testing.T) {
	e := NewEngine(observability.NewMetricsForTesting(), discardLogger())
	opts := domain.CalendarOptions{
		Start: time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 10, 12, 0, 0, 0, 0, time.UTC),
	}
	c := e.calOptions(opts)
	assert.Equal(t, hdate.New(5785, hdate.Tishrei, 1).Abs(), c.Start.Abs())
	assert.Equal(t, hdate.New(5785, hdate.Tishrei, 10).Abs(), c.End.Abs())
}

func TestEngine_CalOptions_HebrewMonth(t *testing.T) {
	e := NewEngine(observability.NewMetricsForTesting(), discardLogger())
	c := e.calOptions(domain.CalendarOptions{Year: 5784, IsHebrewYear: true, Month: int(hdate.Adar2)})
	assert.Zero(t, c.Month)
	assert.Equal(t, hdate.New(5784, hdate.Adar2, 1).Abs(), c.Start.Abs())
	assert.Equal(t, hdate.New(5784, hdate.Adar2, 29).Abs(), c.End.Abs())
}

func TestEngine_Generate(t *testing.T) {
	e := NewEngine(observability.NewMetricsForTesting(), discardLogger())
	events, err := e.Generate(context.Background(), domain.CalendarOptions{
		Year:   2024,
		Month:  int(time.October),
		Locale: "en",
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)

	yomKippur := hdate.New(5785, hdate.Tishrei, 10)
	var found bool
	for _, ev := range events {
		if ev.Abs() == yomKippur.Abs() && ev.Flags.Has(domain.FlagMajorFast) {
			found = true
			assert.Equal(t, domain.CategoryHoliday, ev.PrimaryCategory())
			assert.Contains(t, ev.Desc, "Yom Kippur")
		}
	}
	assert.True(t, found, "Yom Kippur missing from October 2024")
}

func TestEngine_Generate_Canceled(t *testing.T) {
	e := NewEngine(observability.NewMetricsForTesting(), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Generate(ctx, domain.CalendarOptions{Year: 2024})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSun_Sunset(t *testing.T) {
	loc := jerusalem(t)
	day := time.Date(2024, 6, 21, 12, 0, 0, 0, loc.TimeZone())
	sunset, err := Sun{}.Sunset(loc, day)
	require.NoError(t, err)
	local := sunset.In(loc.TimeZone())
	assert.Equal(t, 21, local.Day())
	assert.True(t, local.Hour() == 19, "unexpected sunset %s", local)
}
