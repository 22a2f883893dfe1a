package domain

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hebcal/hdate"
)

const (
	minGregorianYear   = -3759
	firstCandleHebYear = 3761
)

// LocationResolver resolves a request's location, consulting the client IP
// when the query names none. *Resolver implements it.
type LocationResolver interface {
	ResolveOrGeoIP(ctx context.Context, q Query, ip string) (*Location, Query, error)
}

// Request is a calendar request before decoding.
type Request struct {
	Query    Query
	Cookie   string // stored preference cookie, may be empty
	ClientIP string
}

// Result is a decoded request. Query is the normalized parameter map that
// should be persisted for the next visit.
type Result struct {
	Options CalendarOptions
	Query   Query
	UID     string
}

// Decoder turns request parameters into CalendarOptions.
type Decoder struct {
	locations LocationResolver
	logger    *slog.Logger
}

func NewDecoder(locations LocationResolver, logger *slog.Logger) *Decoder {
	return &Decoder{locations: locations, logger: logger}
}

// Decode runs the decoding steps in order. Later steps read fields set by
// earlier ones. The request's query is never modified.
func (d *Decoder) Decode(ctx context.Context, req Request) (Result, error) {
	uid, stored := ParseCookie(req.Cookie)
	q := mergeCookie(req.Query, stored)

	rewriteLegacy(q)

	opts := CalendarOptions{
		CandleLightingMins: DefaultCandleLightingMins,
		HavdalahMins:       DefaultHavdalahMins,
		NumYears:           1,
	}
	applyBooleans(q, &opts)
	applyDailyLearning(q, &opts)
	opts.Mask = categoryMask(q)
	applyHour12(q, &opts)
	applyNegatives(q, &opts)
	applyNumerics(q, &opts)

	if err := applyRange(q, &opts); err != nil {
		return Result{}, err
	}
	if !opts.HasRange() {
		if err := applyYear(q, &opts); err != nil {
			return Result{}, err
		}
	}
	applyLocale(q, &opts)

	loc, q, err := d.locations.ResolveOrGeoIP(ctx, q, req.ClientIP)
	if err != nil {
		return Result{}, err
	}
	if loc != nil {
		opts.Location = loc
		if loc.IsIsrael() {
			opts.IL = true
			opts.CandleLighting = true
			if n, ok := israelCandleMins[loc.GeonameID()]; ok && opts.CandleLightingMins == DefaultCandleLightingMins {
				opts.CandleLightingMins = n
			}
		}
		d.logger.Debug("location resolved", "kind", loc.Kind().String(), "tzid", loc.TZID(), "il", loc.IsIsrael())
	}

	applyFinalFlags(q, &opts)
	return Result{Options: opts, Query: q, UID: uid}, nil
}

func rewriteLegacy(q Query) {
	if q.Get("nh") == "on" {
		for _, k := range legacyHolidayKeys {
			if !q.Has(k) {
				q.Set(k, "on")
			}
		}
	}
	q.Del("nh")
	if q.Get("m") == "on" {
		q.Set("M", "on")
		q.Del("m")
	}
}

func applyBooleans(q Query, o *CalendarOptions) {
	for k, set := range booleanOptions {
		switch v := q.Get(k); {
		case isOn(v):
			set(o)
		case v != "":
			q.Del(k)
		}
	}
}

func applyDailyLearning(q Query, o *CalendarOptions) {
	for k, name := range dailyLearningOptions {
		v := q.Get(k)
		if isOff(v) {
			q.Del(k)
			continue
		}
		if !isOn(v) {
			continue
		}
		if o.DailyLearning == nil {
			o.DailyLearning = make(map[string]int)
		}
		o.DailyLearning[name] = 1
		if k == "yyomi" && strings.HasPrefix(q.Get("yye"), "s") {
			o.DailyLearning[name] = 2
		}
	}
}

func categoryMask(q Query) Flag {
	var mask Flag
	for k, bits := range categoryMasks {
		if isOn(q.Get(k)) {
			mask |= bits
		}
	}
	if isOn(q.Get("nx")) && isOn(q.Get("ss")) && isOn(q.Get("s")) {
		mask |= FlagShabbatMevarchim
	}
	return mask
}

func applyHour12(q Query, o *CalendarOptions) {
	o.Hour12 = !o.Euro
	switch q.Get("h12") {
	case "":
	case "on", "1":
		o.Hour12 = true
	case "off", "0":
		o.Hour12 = false
	default:
		q.Del("h12")
	}
}

func applyNegatives(q Query, o *CalendarOptions) {
	for k, set := range negativeOptions {
		if isOff(q.Get(k)) {
			set(o)
		}
	}
}

func applyNumerics(q Query, o *CalendarOptions) {
	for k, set := range numericOptions {
		v := q.Get(k)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || (k == "ny" && n < 1) {
			q.Del(k)
			continue
		}
		set(o, n)
	}
}

func applyRange(q Query, o *CalendarOptions) error {
	hasStart, hasEnd := q.Has("start"), q.Has("end")
	switch {
	case !hasStart && !hasEnd:
		return nil
	case !hasEnd:
		return newError(KindPartialRange, "end", "start given without end")
	case !hasStart:
		return newError(KindPartialRange, "start", "end given without start")
	}
	start, err := ParseISODate(q.Get("start"))
	if err != nil {
		return withParam(err, "start")
	}
	end, err := ParseISODate(q.Get("end"))
	if err != nil {
		return withParam(err, "end")
	}
	if end.Before(start) {
		return newError(KindOutOfRange, "end", "end %s is before start %s", q.Get("end"), q.Get("start"))
	}
	o.Start, o.End = start, end
	q.Del("year")
	q.Del("month")
	q.Del("yt")
	return nil
}

func applyYear(q Query, o *CalendarOptions) error {
	now := clock.Now()
	hd := hdate.FromGregorian(now.Year(), now.Month(), now.Day())
	yt := q.Get("yt")
	o.IsHebrewYear = yt == "H"

	switch y := q.Get("year"); y {
	case "now", "x":
		o.Year = now.Year()
		if o.IsHebrewYear {
			o.Year = hd.Year()
		}
		q.Set("year", strconv.Itoa(o.Year))
		if q.Get("month") == "now" {
			m := int(now.Month())
			if o.IsHebrewYear {
				m = int(hd.Month())
			}
			q.Set("month", strconv.Itoa(m))
		}
	case "":
		switch yt {
		case "H":
			o.Year = hd.Year()
		case "G":
			o.Year = now.Year()
		default:
			info := DefaultYear(now, hd)
			o.Year, o.IsHebrewYear = info.Year, info.IsHebrewYear
		}
	default:
		n, err := strconv.Atoi(y)
		if err != nil {
			return newError(KindInvalidFormat, "year", "year %q is not numeric", y)
		}
		if o.IsHebrewYear && (n < 1 || n > maxHebrewYear) {
			return newError(KindOutOfRange, "year", "Hebrew year %d out of range 1-%d", n, maxHebrewYear)
		}
		if !o.IsHebrewYear && (n < minGregorianYear || n > maxGregorianYear) {
			return newError(KindOutOfRange, "year", "Gregorian year %d out of range %d-%d", n, minGregorianYear, maxGregorianYear)
		}
		o.Year = n
	}

	return applyMonth(q, o)
}

func applyMonth(q Query, o *CalendarOptions) error {
	v := q.Get("month")
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// "x" and other non-numeric values mean the whole year.
		q.Del("month")
		return nil
	}
	limit := 12
	if o.IsHebrewYear {
		limit = int(hdate.Adar2)
	}
	if n < 1 || n > limit {
		return newError(KindOutOfRange, "month", "month %d out of range 1-%d", n, limit)
	}
	if o.IsHebrewYear && n == int(hdate.Adar2) && !hdate.IsLeapYear(o.Year) {
		n = int(hdate.Adar1)
		q.Set("month", strconv.Itoa(n))
	}
	o.Month = n
	return nil
}

func applyLocale(q Query, o *CalendarOptions) {
	o.Locale = "en"
	if o.Ashkenazi {
		o.Locale = "ashkenazi"
	}
	lg := q.Get("lg")
	if lg == "" {
		return
	}
	c, ok := locales[lg]
	if !ok {
		q.Del("lg")
		return
	}
	o.Locale = c.locale
	o.AppendHebrew = c.appendHebrew
}

func applyFinalFlags(q Query, o *CalendarOptions) {
	if o.Location == nil {
		o.CandleLighting = false
	}
	if !o.HasRange() {
		if (o.IsHebrewYear && o.Year < firstCandleHebYear) || (!o.IsHebrewYear && o.Year < 1) {
			o.CandleLighting = false
		}
	}
	switch q.Get("mm") {
	case "", "0":
	case "1":
		o.HebrewMonths = true
	case "2":
		o.HebrewMonths = true
		o.HebrewNumerals = true
	default:
		q.Del("mm")
	}
}
