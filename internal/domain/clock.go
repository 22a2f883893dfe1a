package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the time source behind "today" and year defaulting. Tests freeze it
// via SetClock so date heuristics are deterministic.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current instant according to the package clock.
func Now() time.Time {
	return clock.Now()
}
