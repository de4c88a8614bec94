// Package clock is the time source for the workout timer and the daily
// state container. Production code uses Real; tests use Fake and move
// time forward explicitly with Advance.
package clock

import "time"

const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
	// After receives once d has elapsed. d <= 0 fires immediately.
	After(d time.Duration) <-chan time.Time
	// AfterFunc calls f after d. The returned Timer has a nil C.
	AfterFunc(d time.Duration, f func()) *Timer
	// NewTicker panics if d <= 0, like time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C (capacity 1; late ticks are dropped).
type Ticker struct {
	C <-chan time.Time

	stopFunc  func()
	resetFunc func(time.Duration)
}

func (t *Ticker) Stop() { t.stopFunc() }

func (t *Ticker) Reset(d time.Duration) { t.resetFunc(d) }

type Timer struct {
	C <-chan time.Time

	stopFunc func() bool
}

// Stop reports whether the call prevented the timer from firing.
func (t *Timer) Stop() bool { return t.stopFunc() }

// DateString formats t as YYYY-MM-DD in loc. A nil loc means time.Local.
func DateString(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// Today is DateString(c.Now(), loc).
func Today(c Clock, loc *time.Location) string {
	return DateString(c.Now(), loc)
}
