package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const israelTZID = "Asia/Jerusalem"

// usZones maps hours west of UTC to the zone observing US daylight saving.
var usZones = map[int]string{
	4:  "America/Puerto_Rico",
	5:  "America/New_York",
	6:  "America/Chicago",
	7:  "America/Denver",
	8:  "America/Los_Angeles",
	9:  "America/Anchorage",
	10: "Pacific/Honolulu",
	11: "Pacific/Pago_Pago",
}

// usStandardOnly overrides usZones for states or zones without daylight saving.
var usStandardOnly = map[string]string{
	"AZ": "America/Phoenix",
	"HI": "Pacific/Honolulu",
	"PR": "America/Puerto_Rico",
	"VI": "America/St_Thomas",
	"GU": "Pacific/Guam",
	"AS": "Pacific/Pago_Pago",
}

var euZones = map[int]string{
	0: "Europe/London",
	1: "Europe/Paris",
	2: "Europe/Helsinki",
}

var mxZones = map[int]string{
	-6: "America/Mexico_City",
	-7: "America/Mazatlan",
	-8: "America/Tijuana",
}

// USTimezone picks the IANA zone for a US ZIP record. offsetWest is the
// standard offset in hours west of UTC; dst reports whether the record
// observes daylight saving.
func USTimezone(state string, offsetWest int, dst bool) string {
	state = strings.ToUpper(strings.TrimSpace(state))
	if !dst {
		if tz, ok := usStandardOnly[state]; ok {
			return tz
		}
		if offsetWest == 7 {
			return "America/Phoenix"
		}
	}
	if state == "AK" && offsetWest == 10 {
		return "America/Adak"
	}
	if tz, ok := usZones[offsetWest]; ok {
		return tz
	}
	return etcGMT(-offsetWest)
}

// LegacyTimezone maps the historical tz/dst form fields to an IANA zone.
// tz is hours east of UTC (negative for the Americas). Unknown dst rules fall
// back to a fixed offset.
func LegacyTimezone(tz int, dst string) string {
	switch strings.ToLower(strings.TrimSpace(dst)) {
	case "usa":
		return USTimezone("", -tz, true)
	case "israel":
		if tz == 2 {
			return israelTZID
		}
	case "eu":
		if z, ok := euZones[tz]; ok {
			return z
		}
	case "mx":
		if z, ok := mxZones[tz]; ok {
			return z
		}
	}
	return etcGMT(tz)
}

// etcGMT returns the fixed-offset zone for hours east of UTC. The Etc/GMT
// names invert the sign: UTC+3 is Etc/GMT-3.
func etcGMT(hoursEast int) string {
	switch {
	case hoursEast == 0:
		return "Etc/GMT"
	case hoursEast > 0:
		return fmt.Sprintf("Etc/GMT-%d", hoursEast)
	default:
		return fmt.Sprintf("Etc/GMT+%d", -hoursEast)
	}
}

// normalizeTZID repairs a tzid whose '+' was decoded to a space on the way
// in. A bare signed offset like " 5" or "-3" becomes Etc/GMT+5 or Etc/GMT-3,
// keeping the sign exactly as the client wrote it.
func normalizeTZID(s string) string {
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "Etc/GMT ") {
		return "Etc/GMT+" + strings.TrimSpace(s[len("Etc/GMT "):])
	}
	switch s[0] {
	case ' ', '+', '-':
		sign := "+"
		if s[0] == '-' {
			sign = "-"
		}
		rest := strings.TrimSpace(s[1:])
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 && n <= 14 {
			if n == 0 {
				return "Etc/GMT"
			}
			return fmt.Sprintf("Etc/GMT%s%d", sign, n)
		}
		return strings.TrimSpace(s)
	}
	return s
}

// validTimezone reports whether the runtime zone database can load tzid.
func validTimezone(tzid string) bool {
	if tzid == "" {
		return false
	}
	_, err := time.LoadLocation(tzid)
	return err == nil
}
