package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)

func TestFakeNowAdvances(t *testing.T) {
	c := Fake(epoch)
	c.Advance(5 * time.Second)
	if got, want := c.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}

func TestFakeAfterFiresOnlyAtDeadline(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(3 * time.Second)

	c.Advance(2 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired before deadline")
	default:
	}

	c.Advance(time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("After did not fire at deadline")
	}
}

func TestFakeTickerFiresOncePerInterval(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	fired := 0
	for i := 0; i < 3; i++ {
		c.Advance(time.Second)
		select {
		case <-ticker.C:
			fired++
		default:
		}
	}
	if fired != 3 {
		t.Fatalf("expected 3 ticks, got %d", fired)
	}

	ticker.Stop()
	c.Advance(time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestFakeAfterFuncStop(t *testing.T) {
	c := Fake(epoch)
	calls := 0
	timer := c.AfterFunc(time.Minute, func() { calls++ })
	if !timer.Stop() {
		t.Fatal("expected Stop to report an active timer")
	}
	c.Advance(2 * time.Minute)
	if calls != 0 {
		t.Fatalf("stopped AfterFunc ran %d times", calls)
	}

	c.AfterFunc(time.Minute, func() { calls++ })
	c.Advance(time.Minute)
	if calls != 1 {
		t.Fatalf("expected one AfterFunc call, got %d", calls)
	}
	if c.PendingCount() != 0 {
		t.Fatalf("expected no pending waiters, got %d", c.PendingCount())
	}
}

func TestDateStringUsesLocation(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	if got := DateString(epoch, time.UTC); got != "2024-01-01" {
		t.Fatalf("utc date = %q", got)
	}
	if got := DateString(epoch, loc); got != "2024-01-02" {
		t.Fatalf("shifted date = %q", got)
	}
	c := Fake(epoch)
	c.Advance(time.Minute)
	if got := Today(c, time.UTC); got != "2024-01-02" {
		t.Fatalf("Today after midnight = %q", got)
	}
}
