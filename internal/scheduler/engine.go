// Package scheduler delivers time-triggered events, earliest first, on a
// buffered channel. dayloop uses it to wake up at local midnight.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/dayloop/internal/clock"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

const KindDayBoundary = "day_boundary"

type Event struct {
	ID        string
	Kind      string
	TriggerAt time.Time
}

// NextMidnight is the first instant of the day after now in loc.
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// entry orders events by trigger time, then by schedule order.
type entry struct {
	event Event
	seq   uint64
}

type eventHeap []entry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.event.TriggerAt.Equal(b.event.TriggerAt) {
		return a.seq < b.seq
	}
	return a.event.TriggerAt.Before(b.event.TriggerAt)
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *eventHeap) Pop() any {
	last := len(*h) - 1
	top := (*h)[last]
	*h = (*h)[:last]
	return top
}

// Engine never blocks on a slow consumer: events that find the output
// buffer full are counted in Dropped and discarded.
type Engine struct {
	clock clock.Clock
	out   chan Event
	kick  chan struct{}
	quit  chan struct{}
	done  chan struct{}

	mu      sync.Mutex
	pending eventHeap
	seq     uint64
	started bool
	stopped bool

	dropped atomic.Uint64
}

func NewEngine(bufferSize int, c clock.Clock) *Engine {
	if c == nil {
		c = clock.Real()
	}
	return &Engine{
		clock: c,
		out:   make(chan Event, max(bufferSize, 1)),
		kick:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		e.started = true
		go e.run()
	}
}

// Stop halts delivery, closes C and waits for the loop to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	running := e.started && !e.stopped
	e.stopped = true
	e.mu.Unlock()
	if !running {
		return
	}
	close(e.quit)
	<-e.done
}

func (e *Engine) Schedule(ev Event) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	e.seq++
	heap.Push(&e.pending, entry{event: ev, seq: e.seq})
	e.nudge()
	return nil
}

// Pending reports how many events are still queued.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) run() {
	defer close(e.done)
	defer close(e.out)

	fire := make(chan struct{}, 1)
	for {
		head, ok := e.head()
		if !ok {
			select {
			case <-e.kick:
				continue
			case <-e.quit:
				return
			}
		}

		wait := max(head.TriggerAt.Sub(e.clock.Now()), 0)
		t := e.clock.AfterFunc(wait, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})

		select {
		case <-fire:
			e.deliver(e.takeDue(e.clock.Now()))
		case <-e.kick:
			cancelTimer(t, fire)
		case <-e.quit:
			cancelTimer(t, fire)
			return
		}
	}
}

func (e *Engine) deliver(due []Event) {
	for _, ev := range due {
		select {
		case e.out <- ev:
		default:
			e.dropped.Add(1)
		}
	}
}

func (e *Engine) nudge() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

func (e *Engine) head() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return Event{}, false
	}
	return e.pending[0].event, true
}

func (e *Engine) takeDue(now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	var due []Event
	for len(e.pending) > 0 && !e.pending[0].event.TriggerAt.After(now) {
		due = append(due, heap.Pop(&e.pending).(entry).event)
	}
	return due
}

// cancelTimer stops t and drains a signal it may already have sent.
func cancelTimer(t *clock.Timer, fire chan struct{}) {
	if !t.Stop() {
		select {
		case <-fire:
		default:
		}
	}
}
