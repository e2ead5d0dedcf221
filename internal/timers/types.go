package timers

import (
	"errors"
	"time"
)

// ErrInvalidDelay is returned when a timer is scheduled with a negative delay.
var ErrInvalidDelay = errors.New("invalid delay")

// MinInterval is the smallest period a repeating timer may have.
const MinInterval = time.Millisecond

// Entry is a pending timer in the queue.
type Entry struct {
	// ID is unique for the lifetime of the queue and increases with every
	// scheduling request.
	ID int64
	// FireAt is the earliest time the callback may run.
	FireAt time.Time
	// Interval is the period of a repeating timer.
	// Zero means one-shot.
	Interval time.Duration
	// Callback is opaque to the queue.
	Callback any
}

// Repeating reports whether the entry is rescheduled after it fires.
func (e Entry) Repeating() bool {
	return e.Interval > 0
}

// before reports whether e orders strictly before o.
func (e Entry) before(o Entry) bool {
	if e.FireAt.Equal(o.FireAt) {
		return e.ID < o.ID
	}
	return e.FireAt.Before(o.FireAt)
}
