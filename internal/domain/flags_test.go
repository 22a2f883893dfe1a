package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoriesFor(t *testing.T) {
	tests := []struct {
		name  string
		flags Flag
		want  []string
	}{
		{"major holiday", FlagChag, []string{CategoryHoliday, CategoryMajor}},
		{"minor holiday", FlagMinorHoliday, []string{CategoryHoliday, CategoryMinor}},
		{"chanukah candles", FlagChanukahCandles | FlagMinorHoliday, []string{CategoryHoliday, CategoryMinor}},
		{"candle lighting", FlagLightCandles, []string{CategoryCandles}},
		{"havdalah", FlagYomTovEnds, []string{CategoryHavdalah}},
		{"major fast", FlagMajorFast | FlagChag, []string{CategoryHoliday, CategoryMajor, CategoryFast}},
		{"minor fast", FlagMinorFast, []string{CategoryHoliday, CategoryMinor, CategoryFast}},
		{"modern", FlagModernHoliday, []string{CategoryHoliday, CategoryModern}},
		{"special shabbat", FlagSpecialShabbat, []string{CategoryHoliday, CategoryShabbat}},
		{"parsha", FlagParshaHashavua, []string{CategoryParashat}},
		{"rosh chodesh", FlagRoshChodesh, []string{CategoryRoshChodesh}},
		{"daf yomi", FlagDafYomi, []string{CategoryDafYomi}},
		{"omer", FlagOmerCount, []string{CategoryOmer}},
		{"hebrew date", FlagHebrewDate, []string{CategoryHebdate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoriesFor(tt.flags))
		})
	}
}

func TestEvent_Categories(t *testing.T) {
	ev := Event{Categories: []string{CategoryHoliday, CategoryMinor}}
	assert.Equal(t, CategoryHoliday, ev.PrimaryCategory())
	assert.Equal(t, CategoryMinor, ev.SecondaryCategory())
	assert.False(t, ev.IsGregorianMarker())
	assert.Empty(t, Event{}.PrimaryCategory())
	assert.Empty(t, Event{Categories: []string{CategoryGregdate}}.SecondaryCategory())
}
