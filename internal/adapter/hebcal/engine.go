// Package hebcal adapts the hebcal-go calendar engine and zmanim sunset
// calculator to the domain ports.
package hebcal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hebcal/hdate"
	"github.com/hebcal/hebcal-go/event"
	"github.com/hebcal/hebcal-go/hebcal"
	"github.com/hebcal/hebcal-go/zmanim"

	"github.com/couchcryptid/hebcal-calendar-service/internal/domain"
	"github.com/couchcryptid/hebcal-calendar-service/internal/observability"
)

// Engine implements domain.Engine.
type Engine struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewEngine(metrics *observability.Metrics, logger *slog.Logger) *Engine {
	return &Engine{metrics: metrics, logger: logger}
}

func (e *Engine) Generate(ctx context.Context, opts domain.CalendarOptions) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	calOpts := e.calOptions(opts)

	start := time.Now()
	evs, err := hebcal.HebrewCalendar(calOpts)
	e.metrics.EngineDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	out := make([]domain.Event, 0, len(evs))
	for _, ev := range evs {
		out = append(out, toEvent(ev, opts))
	}
	return out, nil
}

func (e *Engine) calOptions(opts domain.CalendarOptions) *hebcal.CalOptions {
	c := &hebcal.CalOptions{
		Year:                    opts.Year,
		IsHebrewYear:            opts.IsHebrewYear,
		Month:                   time.Month(opts.Month),
		NumYears:                opts.NumYears,
		CandleLighting:          opts.CandleLighting,
		CandleLightingMins:      opts.CandleLightingMins,
		HavdalahMins:            opts.HavdalahMins,
		Sedrot:                  opts.Sedrot,
		IL:                      opts.IL,
		NoMinorFast:             opts.NoMinorFast,
		NoModern:                opts.NoModern,
		NoRoshChodesh:           opts.NoRoshChodesh,
		ShabbatMevarchim:        opts.ShabbatMevarchim,
		NoSpecialShabbat:        opts.NoSpecialShabbat,
		NoHolidays:              opts.NoHolidays,
		Omer:                    opts.Omer,
		Molad:                   opts.Molad,
		Ashkenazi:               opts.Ashkenazi,
		Locale:                  opts.Locale,
		Hour24:                  !opts.Hour12,
		AddHebrewDates:          opts.AddHebrewDates,
		AddHebrewDatesForEvents: opts.AddHebrewDatesForEvents,
		YomKippurKatan:          opts.YomKippurKatan,
		UseElevation:            opts.UseElevation,
		Mask:                    event.HolidayFlags(opts.Mask),
	}
	switch {
	case opts.HasRange():
		c.Start = opts.HebrewStart()
		c.End = opts.HebrewEnd()
	case opts.IsHebrewYear && opts.Month != 0:
		// The engine's Month is Gregorian; a Hebrew month becomes a range.
		hm := hdate.HMonth(opts.Month)
		c.Month = 0
		c.Start = hdate.New(opts.Year, hm, 1)
		c.End = hdate.New(opts.Year, hm, hdate.DaysInMonth(hm, opts.Year))
	}
	if opts.Location != nil {
		loc := zmanimLocation(*opts.Location)
		c.Location = &loc
	}
	for name := range opts.DailyLearning {
		switch name {
		case domain.LearningDafYomi:
			c.DafYomi = true
		case domain.LearningMishnaYomi:
			c.MishnaYomi = true
		case domain.LearningNachYomi:
			c.NachYomi = true
		case domain.LearningYerushalmiYomi:
			c.YerushalmiYomi = true
		default:
			e.logger.Debug("daily learning schedule not provided by engine", "schedule", name)
		}
	}
	return c
}

func zmanimLocation(loc domain.Location) zmanim.Location {
	return zmanim.NewLocation(loc.Name(), loc.CountryCode(), loc.Latitude(), loc.Longitude(), loc.TZID())
}

func toEvent(ev event.CalEvent, opts domain.CalendarOptions) domain.Event {
	flags := domain.Flag(ev.GetFlags())
	locale := opts.Locale
	if locale == "" {
		locale = "en"
	}
	desc := ev.Render(locale)
	if opts.AppendHebrew && locale != "he" {
		if he := ev.Render("he"); he != "" && he != desc {
			desc += " / " + he
		}
	}
	out := domain.Event{
		Date:       ev.GetDate(),
		Flags:      flags,
		Desc:       desc,
		Categories: domain.CategoriesFor(flags),
		Emoji:      ev.GetEmoji(),
	}
	switch te := ev.(type) {
	case hebcal.TimedEvent:
		out.Time = te.EventTime
	case *hebcal.TimedEvent:
		out.Time = te.EventTime
	}
	return out
}

var errNoSunset = errors.New("sun does not set on this date")

// Sun implements domain.SunsetCalculator.
type Sun struct{}

func (Sun) Sunset(loc domain.Location, date time.Time) (time.Time, error) {
	zl := zmanimLocation(loc)
	t := zmanim.New(&zl, date).Sunset()
	if t.IsZero() {
		return time.Time{}, errNoSunset
	}
	return t, nil
}
