package domain

import (
	"strconv"
	"strings"
	"time"
)

// CalendarExport is the JSON document returned for a calendar request.
type CalendarExport struct {
	Title     string       `json:"title"`
	Generated time.Time    `json:"date"`
	Location  *Location    `json:"location,omitempty"`
	Range     ExportRange  `json:"range"`
	Locale    string       `json:"locale"`
	Items     []ExportItem `json:"items"`
}

// ExportRange is the first and last day covered by the items.
type ExportRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ExportItem is one rendered event.
type ExportItem struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	HebrewDate  string `json:"hdate"`
	Category    string `json:"category"`
	Subcategory string `json:"subcat,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
}

// NewCalendarExport renders events for output. Timed events carry their
// local time in RFC 3339 form; all-day events carry a plain date.
func NewCalendarExport(opts CalendarOptions, events []Event, generated time.Time) CalendarExport {
	exp := CalendarExport{
		Title:     exportTitle(opts),
		Generated: generated.UTC(),
		Location:  opts.Location,
		Locale:    opts.Locale,
		Items:     make([]ExportItem, 0, len(events)),
	}
	for _, ev := range events {
		date := ev.Date.Gregorian().Format(time.DateOnly)
		if !ev.Time.IsZero() {
			date = ev.Time.Format(time.RFC3339)
		}
		exp.Items = append(exp.Items, ExportItem{
			Title:       ev.Desc,
			Date:        date,
			HebrewDate:  ev.Date.String(),
			Category:    ev.PrimaryCategory(),
			Subcategory: ev.SecondaryCategory(),
			Emoji:       ev.Emoji,
		})
	}
	if n := len(events); n > 0 {
		exp.Range.Start = events[0].Date.Gregorian().Format(time.DateOnly)
		exp.Range.End = events[n-1].Date.Gregorian().Format(time.DateOnly)
	}
	return exp
}

func exportTitle(opts CalendarOptions) string {
	parts := []string{"Hebcal"}
	if opts.Location != nil && opts.Location.Name() != "" {
		parts = append(parts, opts.Location.Name())
	}
	switch {
	case opts.HasRange():
		parts = append(parts, opts.Start.Format(time.DateOnly)+" - "+opts.End.Format(time.DateOnly))
	case opts.Year != 0:
		parts = append(parts, strconv.Itoa(opts.Year))
	}
	return strings.Join(parts, " ")
}
