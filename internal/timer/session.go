package timer

import (
	"sync"

	"github.com/sandeepkv93/dayloop/internal/model"
)

// Listener receives notifications synchronously, after the state change
// has been committed. Every callback is optional. Callbacks may read the
// Session but must not call Runner methods.
type Listener struct {
	OnPhaseChange      func(next, prev Phase)
	OnExerciseComplete func(index int)
	OnWorkoutComplete  func()
	OnTick             func(remaining int, phase Phase)
}

// Snapshot is the read-only view handed to the UI.
type Snapshot struct {
	State
	CurrentExercise model.Exercise
	// Elapsed counts the ticks applied since the session was last started.
	Elapsed int
}

type Session struct {
	mu        sync.Mutex
	plan      []model.Exercise
	state     State
	elapsed   int
	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id       int
	listener Listener
}

func NewSession(plan []model.Exercise) *Session {
	s := &Session{}
	s.Load(plan)
	return s
}

// Load replaces the plan and returns to IDLE at its first exercise.
func (s *Session) Load(plan []model.Exercise) {
	s.mu.Lock()
	prev := s.state.Phase
	s.plan = append([]model.Exercise(nil), plan...)
	s.state = Init(s.plan)
	s.elapsed = 0
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if prev != "" {
		dispatch(listeners, phaseChanges(nil, prev, PhaseIdle))
	}
}

func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, listener: l})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.listeners {
			if entry.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) Start()  { s.apply(Action{Type: ActionStart}) }
func (s *Session) Pause()  { s.apply(Action{Type: ActionPause}) }
func (s *Session) Resume() { s.apply(Action{Type: ActionResume}) }
func (s *Session) Toggle() { s.apply(Action{Type: ActionToggle}) }
func (s *Session) Tick()   { s.apply(Action{Type: ActionTick}) }
func (s *Session) Reset()  { s.apply(Action{Type: ActionReset}) }

// SetExercise jumps to plan[index]. Out-of-range indices are ignored.
func (s *Session) SetExercise(index int) {
	s.apply(Action{Type: ActionSetExercise, Index: index})
}

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsRunning
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Snapshot{State: s.state, Elapsed: s.elapsed}
	if idx := s.state.CurrentExerciseIndex; idx >= 0 && idx < len(s.plan) {
		out.CurrentExercise = s.plan[idx]
	}
	return out
}

func (s *Session) apply(a Action) {
	s.mu.Lock()
	before := s.state
	next, events := Apply(s.state, s.plan, a)
	switch {
	case a.Type == ActionReset:
		s.elapsed = 0
	case a.Type == ActionTick && before.IsRunning:
		s.elapsed++
	case next.Phase == PhasePrep && (before.Phase == PhaseIdle || before.Phase == PhaseComplete):
		s.elapsed = 0
	}
	s.state = next
	listeners := s.listenersLocked()
	s.mu.Unlock()

	dispatch(listeners, events)
}

func (s *Session) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, entry := range s.listeners {
		out = append(out, entry.listener)
	}
	return out
}

func dispatch(listeners []Listener, events []Event) {
	for _, ev := range events {
		for _, l := range listeners {
			switch ev.Type {
			case EventPhaseChange:
				if l.OnPhaseChange != nil {
					l.OnPhaseChange(ev.Phase, ev.PrevPhase)
				}
			case EventExerciseComplete:
				if l.OnExerciseComplete != nil {
					l.OnExerciseComplete(ev.ExerciseIndex)
				}
			case EventWorkoutComplete:
				if l.OnWorkoutComplete != nil {
					l.OnWorkoutComplete()
				}
			case EventTick:
				if l.OnTick != nil {
					l.OnTick(ev.TimeRemaining, ev.Phase)
				}
			}
		}
	}
}
