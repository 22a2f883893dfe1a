package domain

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/hebcal/hdate"
)

// Materializer produces the final event list for a set of options.
type Materializer struct {
	engine Engine
	logger *slog.Logger
}

func NewMaterializer(engine Engine, logger *slog.Logger) *Materializer {
	return &Materializer{engine: engine, logger: logger}
}

// statusCoder is implemented by engine errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Materialize generates events, applies post-processing filters and, in
// Hebrew-month mode, interleaves Gregorian date markers. opts is not modified.
func (m *Materializer) Materialize(ctx context.Context, opts CalendarOptions) ([]Event, error) {
	engineOpts := engineOptions(opts)

	events, err := m.generate(ctx, engineOpts)
	if err != nil {
		return nil, err
	}

	if opts.HebrewMonths && opts.IsHebrewYear && opts.Month == 0 && !opts.HasRange() {
		extra, err := m.generate(ctx, nextTishrei(engineOpts))
		if err != nil {
			return nil, err
		}
		events = append(events, extra...)
	}

	events = filterEvents(events, opts)

	if opts.HebrewMonths && (opts.AddAlternateDates || opts.AddAlternateDatesForEvents) {
		events = withGregorianMarkers(events, opts.AddAlternateDates)
	}
	m.logger.Debug("calendar materialized", "events", len(events), "year", opts.Year, "hebrew_year", opts.IsHebrewYear)
	return events, nil
}

func (m *Materializer) generate(ctx context.Context, opts CalendarOptions) ([]Event, error) {
	events, err := m.engine.Generate(ctx, opts)
	if err == nil {
		return events, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	status := 400
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() > 0 {
		status = sc.StatusCode()
	}
	return nil, &Error{Kind: KindEngine, Msg: err.Error(), Status: status, Err: err}
}

// engineOptions strips the flags only this package understands. Hebrew date
// overlays are requested from the engine only in Gregorian-month mode; in
// Hebrew-month mode Gregorian markers are added afterwards instead.
func engineOptions(opts CalendarOptions) CalendarOptions {
	e := opts
	e.YomTovOnly = false
	e.NoMinorHolidays = false
	e.AddAlternateDates = false
	e.AddAlternateDatesForEvents = false
	if !opts.HebrewMonths {
		e.AddHebrewDates = opts.AddAlternateDates
		e.AddHebrewDatesForEvents = opts.AddAlternateDatesForEvents
	}
	return e
}

// nextTishrei covers the thirty days of Tishrei following the requested
// Hebrew year range.
func nextTishrei(opts CalendarOptions) CalendarOptions {
	n := opts.NumYears
	if n < 1 {
		n = 1
	}
	y := opts.Year + n
	e := opts
	e.Month = 0
	e.NumYears = 1
	e.Start = gregorianMidnight(hdate.New(y, hdate.Tishrei, 1))
	e.End = gregorianMidnight(hdate.New(y, hdate.Tishrei, 30))
	return e
}

func gregorianMidnight(hd hdate.HDate) time.Time {
	g := hd.Gregorian()
	return time.Date(g.Year(), g.Month(), g.Day(), 0, 0, 0, 0, time.UTC)
}

func filterEvents(events []Event, opts CalendarOptions) []Event {
	if !opts.YomTovOnly && !opts.NoMinorHolidays {
		return events
	}
	out := events[:0:0]
	for _, ev := range events {
		if opts.YomTovOnly && !(ev.PrimaryCategory() == CategoryHoliday && ev.Flags.Has(FlagChag)) {
			continue
		}
		if opts.NoMinorHolidays && ev.SecondaryCategory() == CategoryMinor {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// dayEntry groups the events falling on one absolute day.
type dayEntry struct {
	date   hdate.HDate
	events []Event
}

// withGregorianMarkers rebuilds events in ascending day order, placing a
// Gregorian date marker before each day's events. With allDays every day from
// the first to the last event gets a marker, otherwise only days with events.
func withGregorianMarkers(events []Event, allDays bool) []Event {
	if len(events) == 0 {
		return events
	}
	days := make(map[int64]*dayEntry)
	for _, ev := range events {
		abs := ev.Abs()
		e, ok := days[abs]
		if !ok {
			e = &dayEntry{date: ev.Date}
			days[abs] = e
		}
		e.events = append(e.events, ev)
	}

	keys := make([]int64, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if allDays {
		first, last := keys[0], keys[len(keys)-1]
		keys = keys[:0]
		for abs := first; abs <= last; abs++ {
			if _, ok := days[abs]; !ok {
				days[abs] = &dayEntry{date: hdate.FromRD(abs)}
			}
			keys = append(keys, abs)
		}
	}

	out := make([]Event, 0, len(events)+len(keys))
	for _, abs := range keys {
		e := days[abs]
		out = append(out, gregorianMarker(e.date))
		out = append(out, e.events...)
	}
	return out
}

func gregorianMarker(hd hdate.HDate) Event {
	g := hd.Gregorian()
	return Event{
		Date:       hd,
		Desc:       g.Format("2 January 2006"),
		Categories: []string{CategoryGregdate},
	}
}
