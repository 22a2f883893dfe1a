package domain

import (
	"time"

	"github.com/hebcal/hdate"
)

const (
	DefaultCandleLightingMins = 18
	DefaultHavdalahMins       = 0
)

// Daily learning schedule names.
const (
	LearningDafYomi          = "dafYomi"
	LearningMishnaYomi       = "mishnaYomi"
	LearningYerushalmiYomi   = "yerushalmi"
	LearningNachYomi         = "nachYomi"
	LearningTanakhYomi       = "tanakhYomi"
	LearningPsalms           = "psalms"
	LearningRambam1          = "rambam1"
	LearningRambam3          = "rambam3"
	LearningChofetzChaim     = "chofetzChaim"
	LearningShemiratHaLashon = "shemiratHaLashon"
	LearningDafWeekly        = "dafWeekly"
)

// CalendarOptions is the decoded form of a calendar request.
type CalendarOptions struct {
	Location *Location

	Year         int
	IsHebrewYear bool
	Month        int // 0 means the whole year
	NumYears     int
	Start        time.Time // set together with End for explicit ranges
	End          time.Time

	AddAlternateDates          bool // d
	AddAlternateDatesForEvents bool // D
	AddHebrewDates             bool
	AddHebrewDatesForEvents    bool
	Omer                       bool // o
	Ashkenazi                  bool // a
	CandleLighting             bool // c
	IL                         bool // i
	Sedrot                     bool // s
	Euro                       bool
	HavdalahTzeit              bool // M
	YomKippurKatan             bool
	Molad                      bool
	YomTovOnly                 bool
	UseElevation               bool
	Yizkor                     bool
	ShabbatMevarchim           bool

	NoHolidays       bool
	NoMinorHolidays  bool
	NoRoshChodesh    bool
	NoModern         bool
	NoMinorFast      bool
	NoSpecialShabbat bool

	CandleLightingMins int
	HavdalahMins       int

	Hour12         bool
	Locale         string
	AppendHebrew   bool
	HebrewMonths   bool
	HebrewNumerals bool
	Mask           Flag
	DailyLearning  map[string]int
}

// HasRange reports whether an explicit start/end range was given.
func (o CalendarOptions) HasRange() bool {
	return !o.Start.IsZero() && !o.End.IsZero()
}

// HebrewStart returns the first Hebrew day of an explicit range.
func (o CalendarOptions) HebrewStart() hdate.HDate {
	return hdate.FromGregorian(o.Start.Year(), o.Start.Month(), o.Start.Day())
}

// HebrewEnd returns the last Hebrew day of an explicit range.
func (o CalendarOptions) HebrewEnd() hdate.HDate {
	return hdate.FromGregorian(o.End.Year(), o.End.Month(), o.End.Day())
}

type boolSetter func(*CalendarOptions)

// booleanOptions maps persisted short codes to the option they enable.
var booleanOptions = map[string]boolSetter{
	"d":     func(o *CalendarOptions) { o.AddAlternateDates = true },
	"D":     func(o *CalendarOptions) { o.AddAlternateDatesForEvents = true },
	"o":     func(o *CalendarOptions) { o.Omer = true },
	"a":     func(o *CalendarOptions) { o.Ashkenazi = true },
	"c":     func(o *CalendarOptions) { o.CandleLighting = true },
	"i":     func(o *CalendarOptions) { o.IL = true },
	"s":     func(o *CalendarOptions) { o.Sedrot = true },
	"euro":  func(o *CalendarOptions) { o.Euro = true },
	"M":     func(o *CalendarOptions) { o.HavdalahTzeit = true },
	"ykk":   func(o *CalendarOptions) { o.YomKippurKatan = true },
	"molad": func(o *CalendarOptions) { o.Molad = true },
	"yto":   func(o *CalendarOptions) { o.YomTovOnly = true },
	"ue":    func(o *CalendarOptions) { o.UseElevation = true },
	"yzkr":  func(o *CalendarOptions) { o.Yizkor = true },
	"mvch":  func(o *CalendarOptions) { o.ShabbatMevarchim = true },
}

// negativeOptions are categories that are on by default; an explicit off
// value suppresses them.
var negativeOptions = map[string]boolSetter{
	"maj": func(o *CalendarOptions) { o.NoHolidays = true },
	"min": func(o *CalendarOptions) { o.NoMinorHolidays = true },
	"nx":  func(o *CalendarOptions) { o.NoRoshChodesh = true },
	"mod": func(o *CalendarOptions) { o.NoModern = true },
	"mf":  func(o *CalendarOptions) { o.NoMinorFast = true },
	"ss":  func(o *CalendarOptions) { o.NoSpecialShabbat = true },
}

// categoryMasks are the event flag bits each enabled category contributes.
var categoryMasks = map[string]Flag{
	"maj":   FlagChag | FlagLightCandles | FlagLightCandlesTzeis | FlagYomTovEnds | FlagMajorFast | FlagErev | FlagCholHamoed,
	"min":   FlagMinorHoliday,
	"nx":    FlagRoshChodesh,
	"mod":   FlagModernHoliday,
	"mf":    FlagMinorFast,
	"ss":    FlagSpecialShabbat,
	"o":     FlagOmerCount,
	"s":     FlagParshaHashavua,
	"ykk":   FlagYomKippurKatan,
	"molad": FlagMolad,
	"yzkr":  FlagYizkor,
	"mvch":  FlagShabbatMevarchim,
}

// dailyLearningOptions maps short codes to learning schedules.
var dailyLearningOptions = map[string]string{
	"F":     LearningDafYomi,
	"myomi": LearningMishnaYomi,
	"yyomi": LearningYerushalmiYomi,
	"nyomi": LearningNachYomi,
	"dty":   LearningTanakhYomi,
	"dps":   LearningPsalms,
	"dr1":   LearningRambam1,
	"dr3":   LearningRambam3,
	"dcc":   LearningChofetzChaim,
	"dshl":  LearningShemiratHaLashon,
	"dw":    LearningDafWeekly,
}

// numericOptions maps short codes to integer options.
var numericOptions = map[string]func(*CalendarOptions, int){
	"b":  func(o *CalendarOptions, n int) { o.CandleLightingMins = n },
	"m":  func(o *CalendarOptions, n int) { o.HavdalahMins = n },
	"ny": func(o *CalendarOptions, n int) { o.NumYears = n },
}

// legacyHolidayKeys replace the retired nh=on switch.
var legacyHolidayKeys = []string{"maj", "min", "mod", "mf", "ss"}

type localeChoice struct {
	locale       string
	appendHebrew bool
}

// locales maps the lg parameter to a translation.
var locales = map[string]localeChoice{
	"s":            {locale: "en"},
	"en":           {locale: "en"},
	"sh":           {locale: "en", appendHebrew: true},
	"a":            {locale: "ashkenazi"},
	"ah":           {locale: "ashkenazi", appendHebrew: true},
	"h":            {locale: "he"},
	"he":           {locale: "he"},
	"he-x-NoNikud": {locale: "he-x-NoNikud"},
	"de":           {locale: "de"},
	"es":           {locale: "es"},
	"fi":           {locale: "fi"},
	"fr":           {locale: "fr"},
	"hu":           {locale: "hu"},
	"pl":           {locale: "pl"},
	"pt":           {locale: "pt"},
	"ru":           {locale: "ru"},
	"ro":           {locale: "ro"},
	"uk":           {locale: "uk"},
}

// israelCandleMins overrides the 18-minute default for cities with a local
// custom, keyed by geoname id.
var israelCandleMins = map[int]int{
	281184: 40, // Jerusalem
	294801: 30, // Haifa
}
