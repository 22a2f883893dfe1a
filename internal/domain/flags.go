package domain

// Flag is the event category bitmask shared with the calendar engine. Bit
// values are part of the wire vocabulary and must not be renumbered.
type Flag uint32

const (
	FlagChag              Flag = 0x0000001
	FlagLightCandles      Flag = 0x0000002
	FlagYomTovEnds        Flag = 0x0000004
	FlagChulOnly          Flag = 0x0000008
	FlagILOnly            Flag = 0x0000010
	FlagLightCandlesTzeis Flag = 0x0000020
	FlagChanukahCandles   Flag = 0x0000040
	FlagRoshChodesh       Flag = 0x0000080
	FlagMinorFast         Flag = 0x0000100
	FlagSpecialShabbat    Flag = 0x0000200
	FlagParshaHashavua    Flag = 0x0000400
	FlagDafYomi           Flag = 0x0000800
	FlagOmerCount         Flag = 0x0001000
	FlagModernHoliday     Flag = 0x0002000
	FlagMajorFast         Flag = 0x0004000
	FlagShabbatMevarchim  Flag = 0x0008000
	FlagMolad             Flag = 0x0010000
	FlagUserEvent         Flag = 0x0020000
	FlagHebrewDate        Flag = 0x0040000
	FlagMinorHoliday      Flag = 0x0080000
	FlagErev              Flag = 0x0100000
	FlagCholHamoed        Flag = 0x0200000
	FlagMishnaYomi        Flag = 0x0400000
	FlagYomKippurKatan    Flag = 0x0800000
	FlagDailyLearning     Flag = 0x1000000
	FlagNachYomi          Flag = 0x2000000
	FlagYizkor            Flag = 0x4000000
)

// Has reports whether every bit in other is set.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// Category labels. Renderers style events by these strings.
const (
	CategoryHoliday     = "holiday"
	CategoryMajor       = "major"
	CategoryMinor       = "minor"
	CategoryModern      = "modern"
	CategoryFast        = "fast"
	CategoryShabbat     = "shabbat"
	CategoryRoshChodesh = "roshchodesh"
	CategoryParashat    = "parashat"
	CategoryCandles     = "candles"
	CategoryHavdalah    = "havdalah"
	CategoryOmer        = "omer"
	CategoryMolad       = "molad"
	CategoryMevarchim   = "mevarchim"
	CategoryHebdate     = "hebdate"
	CategoryDafYomi     = "dafyomi"
	CategoryLearning    = "learning"
	CategoryZmanim      = "zmanim"
	CategoryUser        = "user"
	CategoryGregdate    = "gregdate"
)

// CategoriesFor derives the primary and optional secondary category of an
// event from its flags. The first matching rule wins.
func CategoriesFor(flags Flag) []string {
	switch {
	case flags&FlagDafYomi != 0:
		return []string{CategoryDafYomi}
	case flags&(FlagMishnaYomi|FlagNachYomi|FlagDailyLearning) != 0:
		return []string{CategoryLearning}
	case flags&FlagOmerCount != 0:
		return []string{CategoryOmer}
	case flags&FlagHebrewDate != 0:
		return []string{CategoryHebdate}
	case flags&FlagMolad != 0:
		return []string{CategoryMolad}
	case flags&FlagShabbatMevarchim != 0:
		return []string{CategoryMevarchim}
	case flags&FlagParshaHashavua != 0:
		return []string{CategoryParashat}
	case flags&(FlagLightCandles|FlagLightCandlesTzeis) != 0 && flags&FlagChanukahCandles == 0:
		return []string{CategoryCandles}
	case flags&FlagYomTovEnds != 0:
		return []string{CategoryHavdalah}
	case flags&FlagRoshChodesh != 0:
		return []string{CategoryRoshChodesh}
	case flags&FlagUserEvent != 0:
		return []string{CategoryUser}
	case flags&FlagSpecialShabbat != 0:
		return []string{CategoryHoliday, CategoryShabbat}
	case flags&FlagModernHoliday != 0:
		return []string{CategoryHoliday, CategoryModern}
	case flags&(FlagMajorFast|FlagMinorFast) != 0:
		if flags&FlagMajorFast != 0 {
			return []string{CategoryHoliday, CategoryMajor, CategoryFast}
		}
		return []string{CategoryHoliday, CategoryMinor, CategoryFast}
	case flags&(FlagMinorHoliday|FlagChanukahCandles|FlagYomKippurKatan) != 0:
		return []string{CategoryHoliday, CategoryMinor}
	default:
		return []string{CategoryHoliday, CategoryMajor}
	}
}
