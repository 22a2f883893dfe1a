package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTZID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"America/Chicago", "America/Chicago"},
		{" 5", "Etc/GMT+5"},
		{"+5", "Etc/GMT+5"},
		{"-3", "Etc/GMT-3"},
		{" 0", "Etc/GMT"},
		{"Etc/GMT 5", "Etc/GMT+5"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeTZID(tt.in))
		})
	}
}

func TestLegacyTimezone(t *testing.T) {
	tests := []struct {
		name string
		tz   int
		dst  string
		want string
	}{
		{"eastern usa", -5, "usa", "America/New_York"},
		{"pacific usa", -8, "usa", "America/Los_Angeles"},
		{"israel", 2, "israel", "Asia/Jerusalem"},
		{"central europe", 1, "eu", "Europe/Paris"},
		{"mexico city", -6, "mx", "America/Mexico_City"},
		{"fixed offset east", 3, "none", "Etc/GMT-3"},
		{"fixed offset west", -4, "", "Etc/GMT+4"},
		{"utc", 0, "none", "Etc/GMT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LegacyTimezone(tt.tz, tt.dst)
			assert.Equal(t, tt.want, got)
			assert.True(t, validTimezone(got))
		})
	}
}

func TestUSTimezone(t *testing.T) {
	assert.Equal(t, "America/Chicago", USTimezone("IL", 6, true))
	assert.Equal(t, "America/Phoenix", USTimezone("AZ", 7, false))
	assert.Equal(t, "America/Denver", USTimezone("CO", 7, true))
	assert.Equal(t, "Pacific/Honolulu", USTimezone("hi", 10, false))
	assert.Equal(t, "America/Adak", USTimezone("AK", 10, true))
	assert.Equal(t, "America/Anchorage", USTimezone("AK", 9, true))
}
