package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidExercise = errors.New("model: invalid exercise")
	ErrInvalidPreset   = errors.New("model: invalid workout preset")
	ErrInvalidRoutine  = errors.New("model: invalid routine")
)

// CustomPresetPrefix marks user-authored presets. Presets without it are
// built in and must be copied before editing.
const CustomPresetPrefix = "custom-"

type Routine string

const (
	RoutineNone Routine = ""
	RoutineA    Routine = "A"
	RoutineB    Routine = "B"
)

func (r Routine) IsValid() bool {
	switch r {
	case RoutineA, RoutineB:
		return true
	default:
		return false
	}
}

// Next alternates between the two routines.
func (r Routine) Next() Routine {
	if r == RoutineA {
		return RoutineB
	}
	return RoutineA
}

func ParseRoutine(raw string) (Routine, error) {
	r := Routine(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return RoutineNone, fmt.Errorf("%w: %q", ErrInvalidRoutine, raw)
	}
	return r, nil
}

type Exercise struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
	Sets   int    `json:"sets"`
	Work   int    `json:"work"`
	Rest   int    `json:"rest"`
}

func (e Exercise) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExercise)
	}
	if e.Sets < 1 {
		return fmt.Errorf("%w: %s: sets must be >= 1", ErrInvalidExercise, e.Name)
	}
	if e.Work < 1 {
		return fmt.Errorf("%w: %s: work must be >= 1 second", ErrInvalidExercise, e.Name)
	}
	if e.Rest < 0 {
		return fmt.Errorf("%w: %s: rest must be >= 0 seconds", ErrInvalidExercise, e.Name)
	}
	return nil
}

// PlannedSeconds is the session length excluding preparation countdowns.
func (e Exercise) PlannedSeconds() int {
	return e.Sets*e.Work + e.Sets*e.Rest
}

type WorkoutPreset struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon"`
	Exercises []Exercise `json:"exercises"`
	Routine   Routine    `json:"routine,omitempty"`
}

func (p WorkoutPreset) IsCustom() bool {
	return strings.HasPrefix(p.ID, CustomPresetPrefix)
}

func (p WorkoutPreset) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidPreset)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s: name is required", ErrInvalidPreset, p.ID)
	}
	if len(p.Exercises) == 0 {
		return fmt.Errorf("%w: %s: at least one exercise is required", ErrInvalidPreset, p.ID)
	}
	if p.Routine != RoutineNone && !p.Routine.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRoutine, p.Routine)
	}
	for _, e := range p.Exercises {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers can edit exercises freely.
func (p WorkoutPreset) Clone() WorkoutPreset {
	out := p
	out.Exercises = append([]Exercise(nil), p.Exercises...)
	return out
}

// WorkoutLog is one finished (or abandoned) session, as recorded by the
// workout stats store.
type WorkoutLog struct {
	ID          string    `json:"id"`
	PresetID    string    `json:"presetId"`
	PresetName  string    `json:"presetName"`
	StartedAt   time.Time `json:"startedAt"`
	DurationSec int       `json:"durationSec"`
}

func (l WorkoutLog) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("model: workout log id is required")
	}
	if l.StartedAt.IsZero() {
		return errors.New("model: workout log started_at is required")
	}
	if l.DurationSec < 0 {
		return errors.New("model: workout log duration must be >= 0")
	}
	return nil
}
