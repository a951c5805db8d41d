package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps generated_at on rendered reports. Tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the report time source. Pass nil to restore real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current report time in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}
