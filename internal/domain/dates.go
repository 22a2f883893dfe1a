package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hebcal/hdate"
)

// hebrewEpoch is 1 Tishrei AM 1 expressed as a Gregorian instant. No calendar
// can be generated before it.
var hebrewEpoch = time.UnixMilli(-180799747622000).UTC()

const (
	maxGregorianYear = 9999
	maxHebrewYear    = 32000
)

var isoDateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// ParseISODate parses a string that starts with YYYY-MM-DD. Two-digit and
// three-digit years are kept as written (0050 is year 50, not 1950).
func ParseISODate(s string) (time.Time, error) {
	m := isoDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, newError(KindInvalidFormat, "", "date %q does not match YYYY-MM-DD", s)
	}
	return ParseGregorianParts(m[1], m[2], m[3])
}

// ParseGregorianParts validates and assembles a Gregorian date at UTC midnight.
func ParseGregorianParts(year, month, day string) (time.Time, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return time.Time{}, newError(KindInvalidFormat, "gy", "year %q is not numeric", year)
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, newError(KindInvalidFormat, "gm", "month %q is not numeric", month)
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return time.Time{}, newError(KindInvalidFormat, "gd", "day %q is not numeric", day)
	}
	if y > maxGregorianYear {
		return time.Time{}, newError(KindOutOfRange, "gy", "year %d is after %d", y, maxGregorianYear)
	}
	if m < 1 || m > 12 {
		return time.Time{}, newError(KindOutOfRange, "gm", "month %d out of range 1-12", m)
	}
	if n := daysInGregorianMonth(y, time.Month(m)); d < 1 || d > n {
		return time.Time{}, newError(KindOutOfRange, "gd", "day %d out of range 1-%d", d, n)
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Before(hebrewEpoch) {
		return time.Time{}, newError(KindBeforeHebrewEpoch, "", "date %04d-%02d-%02d is before the Hebrew calendar epoch", y, m, d)
	}
	return t, nil
}

func daysInGregorianMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseHebrewParts validates a Hebrew date. The month may be a name known to
// the Hebrew month table or its number (Nisan=1). Adar II in a common year is
// read as Adar I.
func ParseHebrewParts(year, month, day string) (hdate.HDate, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return hdate.HDate{}, newError(KindInvalidFormat, "hy", "year %q is not numeric", year)
	}
	if y < 1 || y > maxHebrewYear {
		return hdate.HDate{}, newError(KindOutOfRange, "hy", "year %d out of range 1-%d", y, maxHebrewYear)
	}
	hm, err := parseHebrewMonth(month)
	if err != nil {
		return hdate.HDate{}, err
	}
	if hm == hdate.Adar2 && !hdate.IsLeapYear(y) {
		hm = hdate.Adar1
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return hdate.HDate{}, newError(KindInvalidFormat, "hd", "day %q is not numeric", day)
	}
	if n := hdate.DaysInMonth(hm, y); d < 1 || d > n {
		return hdate.HDate{}, newError(KindOutOfRange, "hd", "day %d out of range 1-%d", d, n)
	}
	return hdate.New(y, hm, d), nil
}

func parseHebrewMonth(s string) (hdate.HMonth, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(hdate.Nisan) || n > int(hdate.Adar2) {
			return 0, newError(KindOutOfRange, "hm", "month %d out of range 1-13", n)
		}
		return hdate.HMonth(n), nil
	}
	hm, err := hdate.MonthFromName(s)
	if err != nil {
		return 0, &Error{Kind: KindInvalidFormat, Param: "hm", Msg: "unknown Hebrew month " + strconv.Quote(s), Err: err}
	}
	return hm, nil
}

// QueryDate is the reference date of a request.
type QueryDate struct {
	Date    time.Time
	IsToday bool
}

// ResolveTodayOrQueryDate picks the request's reference date: an explicit dt,
// else gy/gm/gd, else the current instant.
func ResolveTodayOrQueryDate(q Query) (QueryDate, error) {
	if dt := q.Get("dt"); dt != "" {
		t, err := ParseISODate(dt)
		if err != nil {
			return QueryDate{}, withParam(err, "dt")
		}
		return QueryDate{Date: t}, nil
	}
	if q.Has("gy") && q.Has("gm") && q.Has("gd") {
		t, err := ParseGregorianParts(q.Get("gy"), q.Get("gm"), q.Get("gd"))
		if err != nil {
			return QueryDate{}, err
		}
		return QueryDate{Date: t}, nil
	}
	return QueryDate{Date: clock.Now(), IsToday: true}, nil
}

// SunsetDate is a reference date with its Hebrew equivalent. After sunset the
// Hebrew date has already advanced to the next day.
type SunsetDate struct {
	Date        time.Time
	HDate       hdate.HDate
	AfterSunset bool
}

// SunsetAwareDate resolves the reference date and, when it is "today" at a
// known location, advances the Hebrew date once local sunset has passed.
func SunsetAwareDate(q Query, loc *Location, sun SunsetCalculator) (SunsetDate, error) {
	qd, err := ResolveTodayOrQueryDate(q)
	if err != nil {
		return SunsetDate{}, err
	}
	if !qd.IsToday || loc == nil || sun == nil {
		d := qd.Date
		return SunsetDate{Date: d, HDate: hdate.FromGregorian(d.Year(), d.Month(), d.Day())}, nil
	}

	now := qd.Date.In(loc.TimeZone())
	local := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc.TimeZone())
	hd := hdate.FromGregorian(local.Year(), local.Month(), local.Day())
	sunset, err := sun.Sunset(*loc, local)
	if err != nil || sunset.IsZero() {
		// No sunset (polar day or engine failure): keep the civil date.
		return SunsetDate{Date: now, HDate: hd}, nil
	}
	if now.After(sunset) {
		return SunsetDate{Date: now, HDate: hdate.FromRD(hd.Abs() + 1), AfterSunset: true}, nil
	}
	return SunsetDate{Date: now, HDate: hd}, nil
}

// YearInfo is the default year a calendar form should show.
type YearInfo struct {
	Year          int
	IsHebrewYear  bool
	HebrewYear    int
	GregorianYear int
}

// DefaultYear chooses which year to show for a given day. From Tishrei until
// the end of Adar the current Gregorian year is shown, except in the last three
// weeks of December when the next one is. From Nisan onward the Gregorian year
// is shown until 15 Av, after which the upcoming Hebrew year is.
func DefaultYear(t time.Time, hd hdate.HDate) YearInfo {
	gy, hy := t.Year(), hd.Year()
	info := YearInfo{Year: gy, HebrewYear: hy, GregorianYear: gy}

	if hd.Month() >= hdate.Tishrei {
		if t.Month() == time.December && t.Day() > 10 {
			info.Year = gy + 1
			info.GregorianYear = gy + 1
		}
		return info
	}

	av15 := hdate.New(hy, hdate.Av, 15)
	if hd.Abs() > av15.Abs() {
		return YearInfo{Year: hy + 1, IsHebrewYear: true, HebrewYear: hy + 1, GregorianYear: gy}
	}
	return info
}
