// Package timer runs a guided workout: a countdown through PREP, WORK and
// REST intervals for every set of every exercise in a plan.
//
// State and Apply are pure; Session adds locking and listeners on top,
// and Runner feeds Session one tick per second from a clock.
package timer

import "github.com/sandeepkv93/dayloop/internal/model"

// PrepTime is the countdown, in seconds, before each exercise's first set.
const PrepTime = 5

type Phase string

const (
	PhaseIdle     Phase = "IDLE"
	PhasePrep     Phase = "PREP"
	PhaseWork     Phase = "WORK"
	PhaseRest     Phase = "REST"
	PhaseComplete Phase = "COMPLETE"
)

func (p Phase) IsValid() bool {
	switch p {
	case PhaseIdle, PhasePrep, PhaseWork, PhaseRest, PhaseComplete:
		return true
	default:
		return false
	}
}

// counting reports whether the phase has a live countdown.
func (p Phase) counting() bool {
	return p == PhasePrep || p == PhaseWork || p == PhaseRest
}

type State struct {
	Phase                Phase
	TimeRemaining        int
	CurrentSet           int
	TotalSets            int
	CurrentExerciseIndex int
	TotalExercises       int
	WorkTime             int
	RestTime             int
	IsRunning            bool
}

type ActionType string

const (
	ActionStart       ActionType = "start"
	ActionPause       ActionType = "pause"
	ActionResume      ActionType = "resume"
	ActionToggle      ActionType = "toggle"
	ActionTick        ActionType = "tick"
	ActionReset       ActionType = "reset"
	ActionSetExercise ActionType = "set_exercise"
)

type Action struct {
	Type  ActionType
	Index int
}

type EventType string

const (
	EventPhaseChange      EventType = "phase_change"
	EventExerciseComplete EventType = "exercise_complete"
	EventWorkoutComplete  EventType = "workout_complete"
	EventTick             EventType = "tick"
)

// Event is a side-effect notification produced by Apply. It never feeds
// back into the machine.
type Event struct {
	Type          EventType
	Phase         Phase
	PrevPhase     Phase
	TimeRemaining int
	ExerciseIndex int
}

// Init loads plan from its first exercise. An empty plan yields an IDLE
// state that Start refuses to leave.
func Init(plan []model.Exercise) State {
	if len(plan) == 0 {
		return State{Phase: PhaseIdle}
	}
	s := loadExercise(State{TotalExercises: len(plan)}, plan, 0)
	s.Phase = PhaseIdle
	s.TimeRemaining = PrepTime
	return s
}

// Apply returns the state after a and the notifications it produced, in
// delivery order: completion events, then the tick, then phase changes.
func Apply(s State, plan []model.Exercise, a Action) (State, []Event) {
	prev := s.Phase
	switch a.Type {
	case ActionStart:
		s = start(s)
	case ActionPause:
		if s.IsRunning {
			s.IsRunning = false
		}
	case ActionResume:
		s = resume(s)
	case ActionToggle:
		switch {
		case s.Phase == PhaseIdle:
			s = start(s)
		case s.IsRunning:
			s.IsRunning = false
		default:
			s = resume(s)
		}
	case ActionTick:
		return tick(s, plan)
	case ActionReset:
		s = Init(plan)
	case ActionSetExercise:
		s = setExercise(s, plan, a.Index)
	}
	return s, phaseChanges(nil, prev, s.Phase)
}

func start(s State) State {
	if s.Phase != PhaseIdle || s.TotalExercises == 0 {
		return s
	}
	s.Phase = PhasePrep
	s.TimeRemaining = PrepTime
	s.IsRunning = true
	return s
}

func resume(s State) State {
	if s.IsRunning || !s.Phase.counting() {
		return s
	}
	s.IsRunning = true
	return s
}

func setExercise(s State, plan []model.Exercise, index int) State {
	if index < 0 || index >= len(plan) {
		return s
	}
	if s.Phase == PhaseIdle {
		s = loadExercise(s, plan, index)
		s.TimeRemaining = PrepTime
		return s
	}
	running := s.IsRunning || s.Phase == PhaseComplete
	s = loadExercise(s, plan, index)
	s.Phase = PhasePrep
	s.TimeRemaining = PrepTime
	s.IsRunning = running
	return s
}

func tick(s State, plan []model.Exercise) (State, []Event) {
	if !s.IsRunning || !s.Phase.counting() {
		return s, nil
	}
	if s.TimeRemaining > 0 {
		s.TimeRemaining--
	}

	var completions []Event
	var changes []Event
	for s.IsRunning && s.TimeRemaining == 0 && s.Phase.counting() {
		prev := s.Phase
		var done []Event
		s, done = boundary(s, plan)
		completions = append(completions, done...)
		changes = phaseChanges(changes, prev, s.Phase)
	}

	events := append(completions, Event{
		Type:          EventTick,
		Phase:         s.Phase,
		TimeRemaining: s.TimeRemaining,
		ExerciseIndex: s.CurrentExerciseIndex,
	})
	return s, append(events, changes...)
}

// boundary handles a countdown reaching zero in the current phase.
func boundary(s State, plan []model.Exercise) (State, []Event) {
	lastSet := s.CurrentSet >= s.TotalSets
	lastExercise := s.CurrentExerciseIndex >= s.TotalExercises-1

	switch s.Phase {
	case PhasePrep:
		s.Phase = PhaseWork
		s.TimeRemaining = s.WorkTime
	case PhaseWork:
		if lastSet && lastExercise {
			return complete(s)
		}
		s.Phase = PhaseRest
		s.TimeRemaining = s.RestTime
	case PhaseRest:
		switch {
		case !lastSet:
			s.CurrentSet++
			s.Phase = PhaseWork
			s.TimeRemaining = s.WorkTime
		case !lastExercise:
			finished := s.CurrentExerciseIndex
			s = loadExercise(s, plan, finished+1)
			s.Phase = PhasePrep
			s.TimeRemaining = PrepTime
			s.IsRunning = true
			return s, []Event{{Type: EventExerciseComplete, Phase: s.Phase, ExerciseIndex: finished}}
		default:
			return complete(s)
		}
	}
	return s, nil
}

func complete(s State) (State, []Event) {
	s.Phase = PhaseComplete
	s.TimeRemaining = 0
	s.IsRunning = false
	return s, []Event{{Type: EventWorkoutComplete, Phase: PhaseComplete, ExerciseIndex: s.CurrentExerciseIndex}}
}

func loadExercise(s State, plan []model.Exercise, index int) State {
	e := plan[index]
	s.CurrentExerciseIndex = index
	s.TotalExercises = len(plan)
	s.CurrentSet = 1
	s.TotalSets = e.Sets
	s.WorkTime = e.Work
	s.RestTime = e.Rest
	return s
}

func phaseChanges(events []Event, prev, next Phase) []Event {
	if prev == next {
		return events
	}
	return append(events, Event{Type: EventPhaseChange, Phase: next, PrevPhase: prev})
}
