package timer

import (
	"sync"
	"time"

	"github.com/sandeepkv93/dayloop/internal/clock"
)

// Runner supplies one pulse per interval to a Session while it runs.
// Pausing stops the pulse goroutine before returning, so no tick lands
// after Pause or Stop.
type Runner struct {
	session  *Session
	clock    clock.Clock
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewRunner(session *Session, c clock.Clock) *Runner {
	if c == nil {
		c = clock.Real()
	}
	return &Runner{session: session, clock: c, interval: time.Second}
}

// Snapshot reads the driven session.
func (r *Runner) Snapshot() Snapshot { return r.session.Snapshot() }

func (r *Runner) Start() {
	r.session.Start()
	r.ensurePulse()
}

func (r *Runner) Pause() {
	r.session.Pause()
	r.stopPulse()
}

func (r *Runner) Resume() {
	r.session.Resume()
	r.ensurePulse()
}

func (r *Runner) Toggle() {
	r.session.Toggle()
	if r.session.Running() {
		r.ensurePulse()
		return
	}
	r.stopPulse()
}

func (r *Runner) Reset() {
	r.stopPulse()
	r.session.Reset()
}

func (r *Runner) SetExercise(index int) {
	r.session.SetExercise(index)
	if r.session.Running() {
		r.ensurePulse()
	}
}

// Stop tears the pulse down without touching session state.
func (r *Runner) Stop() {
	r.stopPulse()
}

// Done is closed when the current pulse goroutine exits, which happens
// on Pause, Stop, or when the session stops running on its own.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doneCh == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return r.doneCh
}

func (r *Runner) ensurePulse() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.session.Running() {
		return
	}
	if r.doneCh != nil {
		select {
		case <-r.doneCh:
		default:
			return
		}
	}
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	ticker := r.clock.NewTicker(r.interval)
	go r.loop(ticker, r.stopCh, r.doneCh)
}

func (r *Runner) stopPulse() {
	r.mu.Lock()
	stop, done := r.stopCh, r.doneCh
	r.stopCh = nil
	r.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (r *Runner) loop(ticker *clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			r.session.Tick()
			if !r.session.Running() {
				return
			}
		}
	}
}
