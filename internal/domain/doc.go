// Package domain turns calendar request parameters into Hebrew calendar events.
//
// # Request Parameters
//
// A request is a flat map of short query keys, most of them inherited from
// bookmarked URLs and stored cookies that predate this service. Their
// spelling is part of the public interface and must not change.
//
// Boolean options take "on" or "1"; any other non-empty value is an explicit
// off and the key is dropped from the persisted preferences:
//
//	d D o a c i s euro M ykk molad yto ue yzkr mvch
//
// Event categories that are on by default (maj min nx mod mf ss) are
// suppressed by an explicit off value.
//
// Daily learning schedules use the same on/off convention:
//
//	F myomi yyomi nyomi dty dps dr1 dr3 dcc dshl dw
//
// Malformed values for options with a natural default are dropped silently.
// Explicit dates and explicit location identifiers have no safe default and
// produce an [*Error].
//
// # Locations
//
// Location keys are tried in a fixed order, first match wins:
//
//	geonameid           GeoNames id
//	zip                 US ZIP code, ZIP+4 truncated to five digits
//	city                legacy city name
//	latitude/longitude  decimal degrees, tzid optional
//	ladeg lamin ladir   legacy degrees/minutes/direction,
//	lodeg lomin lodir   with tz and dst or tzid
//
// The normalized location is written back with a "geo" discriminator
// (geoname, zip, pos or none) so the preference cookie can restore it.
// When nothing matches, [Resolver.ResolveOrGeoIP] falls back to the client
// address.
//
// A tzid beginning with a space is a "+" mangled by URL decoding: " 5" is
// read as Etc/GMT+5.
//
// # Dates
//
// Years before the Hebrew epoch (1 Tishrei AM 1) cannot be represented and
// are rejected with [KindBeforeHebrewEpoch]. Two-digit ISO years are taken
// literally.
//
// In Hebrew-month mode (mm=1 or mm=2) the event list for a Hebrew year is
// extended by the following Tishrei, and each day may be preceded by a
// Gregorian date marker in the "gregdate" category.
package domain
