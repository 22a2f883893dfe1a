package domain

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Query is a flat request parameter map. Only the first value of a repeated
// URL key is kept.
type Query map[string]string

// QueryFromValues flattens url.Values. Values are kept verbatim: a leading
// space in tzid is a decoded '+' and carries meaning.
func QueryFromValues(v url.Values) Query {
	q := make(Query, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			q[k] = vals[0]
		}
	}
	return q
}

// ParseQueryString decodes a URL query string.
func ParseQueryString(s string) (Query, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(s, "?"))
	if err != nil {
		return nil, newError(KindInvalidFormat, "", "malformed query string: %v", err)
	}
	return QueryFromValues(v), nil
}

func (q Query) Get(k string) string { return q[k] }

// Has reports whether k is present with a non-empty value.
func (q Query) Has(k string) bool { return q[k] != "" }

func (q Query) Set(k, v string) { q[k] = v }
func (q Query) Del(k string)    { delete(q, k) }

func (q Query) Clone() Query {
	out := make(Query, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// Encode renders the map as a query string with sorted keys.
func (q Query) Encode() string {
	v := make(url.Values, len(q))
	for k, val := range q {
		v.Set(k, val)
	}
	return v.Encode()
}

// isOn reports whether an option value means enabled.
func isOn(v string) bool { return v == "on" || v == "1" }

// isOff reports whether v is an explicit, non-empty off value.
func isOff(v string) bool { return v != "" && !isOn(v) }

// locationKeys are the query keys that together name a location. A request
// that sets any of them replaces the whole stored location.
var locationKeys = []string{
	"geonameid", "zip", "city", "latitude", "longitude", "tzid", "geo",
	"ladeg", "lamin", "ladir", "lodeg", "lomin", "lodir", "tz", "dst",
}

func hasLocationKey(q Query) bool {
	for _, k := range locationKeys {
		if q.Has(k) {
			return true
		}
	}
	return false
}

func deleteLocationKeys(q Query) {
	for _, k := range locationKeys {
		delete(q, k)
	}
}

// transientKeys never enter the preference cookie.
var transientKeys = map[string]bool{
	"year": true, "month": true, "start": true, "end": true, "dt": true,
	"gy": true, "gm": true, "gd": true, "v": true, "set": true,
	"uid": true, "exp": true, "cfg": true, "t": true,
}

// ParseCookie splits a stored preference cookie into its uid and the stored
// parameters. The exp marker is discarded.
func ParseCookie(s string) (string, Query) {
	if s == "" {
		return "", Query{}
	}
	q, err := ParseQueryString(s)
	if err != nil {
		return "", Query{}
	}
	uid := q.Get("uid")
	delete(q, "uid")
	delete(q, "exp")
	return uid, q
}

// EncodeCookie renders persistable preferences as
// uid=<id>&k=v...&exp=YYYY-MM-DD. A new uid is minted when uid is empty.
func EncodeCookie(uid string, q Query, exp time.Time) (string, string) {
	if uid == "" {
		uid = uuid.NewString()
	}
	keys := make([]string, 0, len(q))
	for k, v := range q {
		if transientKeys[k] || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("uid=")
	b.WriteString(url.QueryEscape(uid))
	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q[k]))
	}
	b.WriteString("&exp=")
	b.WriteString(exp.UTC().Format(time.DateOnly))
	return b.String(), uid
}

// mergeCookie lays stored preferences under the query. Query keys always
// win, and a query that names any location key drops the stored location.
func mergeCookie(q, cookie Query) Query {
	out := cookie.Clone()
	if hasLocationKey(q) {
		deleteLocationKeys(out)
	}
	for _, k := range []string{"year", "month", "start", "end", "dt"} {
		delete(out, k)
	}
	for k, v := range q {
		out[k] = v
	}
	return out
}
