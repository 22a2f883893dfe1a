package domain

import (
	"context"
	"time"

	"github.com/hebcal/hdate"
)

// Event is one calendar entry produced by the engine, or a Gregorian-date
// marker synthesized by the materializer.
type Event struct {
	Date       hdate.HDate
	Flags      Flag
	Desc       string   // rendered description in the requested locale
	Categories []string // primary category first
	Time       time.Time // zero for untimed events
	Emoji      string
}

// Abs returns the absolute (R.D.) day number of the event.
func (e Event) Abs() int64 {
	return e.Date.Abs()
}

// PrimaryCategory returns the first category label, or "" if none.
func (e Event) PrimaryCategory() string {
	if len(e.Categories) == 0 {
		return ""
	}
	return e.Categories[0]
}

// SecondaryCategory returns the second category label, or "" if none.
func (e Event) SecondaryCategory() string {
	if len(e.Categories) < 2 {
		return ""
	}
	return e.Categories[1]
}

// IsGregorianMarker reports whether the event is a synthesized date label.
func (e Event) IsGregorianMarker() bool {
	return e.PrimaryCategory() == CategoryGregdate
}

// RawRequest is a calendar request read from the request stream. Value holds
// a URL-encoded query string.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Stream header names understood on RawRequest.
const (
	HeaderCookie   = "cookie"
	HeaderClientIP = "client_ip"
)

// OutputMessage is a serialized calendar export destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
