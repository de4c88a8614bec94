package timer

import (
	"reflect"
	"testing"

	"github.com/sandeepkv93/dayloop/internal/model"
)

type recorder struct {
	log []string
}

func (r *recorder) listener() Listener {
	return Listener{
		OnPhaseChange: func(next, prev Phase) {
			r.log = append(r.log, "phase:"+string(prev)+"->"+string(next))
		},
		OnExerciseComplete: func(index int) {
			r.log = append(r.log, "exercise")
		},
		OnWorkoutComplete: func() {
			r.log = append(r.log, "workout")
		},
		OnTick: func(remaining int, phase Phase) {
			r.log = append(r.log, "tick:"+string(phase))
		},
	}
}

func TestSessionDeliversNotificationsInOrder(t *testing.T) {
	s := NewSession([]model.Exercise{exercise(1, 1, 0)})
	rec := &recorder{}
	s.Subscribe(rec.listener())

	s.Start()
	for i := 0; i < PrepTime+1; i++ {
		s.Tick()
	}

	want := []string{
		"phase:IDLE->PREP",
		"tick:PREP", "tick:PREP", "tick:PREP", "tick:PREP",
		"tick:WORK", "phase:PREP->WORK",
		"workout", "tick:COMPLETE", "phase:WORK->COMPLETE",
	}
	if !reflect.DeepEqual(rec.log, want) {
		t.Fatalf("notifications = %v\nwant %v", rec.log, want)
	}
}

func TestSessionUnsubscribe(t *testing.T) {
	s := NewSession([]model.Exercise{exercise(1, 10, 0)})
	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.listener())
	s.Start()
	unsubscribe()
	s.Tick()
	if len(rec.log) != 1 {
		t.Fatalf("expected only the start notification, got %v", rec.log)
	}
}

func TestSessionSnapshotTracksElapsed(t *testing.T) {
	plan := []model.Exercise{
		{Name: "Squats", Sets: 1, Work: 10, Rest: 0},
		{Name: "Lunges", Sets: 1, Work: 10, Rest: 0},
	}
	s := NewSession(plan)
	s.Start()
	s.Tick()
	s.Tick()
	s.Pause()
	s.Tick()

	snap := s.Snapshot()
	if snap.Elapsed != 2 {
		t.Fatalf("expected 2 elapsed seconds, got %d", snap.Elapsed)
	}
	if snap.CurrentExercise.Name != "Squats" || snap.Phase != PhasePrep {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	s.SetExercise(1)
	if got := s.Snapshot().CurrentExercise.Name; got != "Lunges" {
		t.Fatalf("expected Lunges after jump, got %q", got)
	}
	s.Reset()
	snap = s.Snapshot()
	if snap.Elapsed != 0 || snap.Phase != PhaseIdle || snap.CurrentExerciseIndex != 0 {
		t.Fatalf("reset snapshot = %+v", snap)
	}
}

func TestSessionLoadReturnsToIdle(t *testing.T) {
	s := NewSession([]model.Exercise{exercise(1, 10, 0)})
	rec := &recorder{}
	s.Subscribe(rec.listener())
	s.Start()

	s.Load([]model.Exercise{exercise(2, 5, 5), exercise(1, 5, 0)})
	snap := s.Snapshot()
	if snap.Phase != PhaseIdle || snap.TotalExercises != 2 || snap.IsRunning {
		t.Fatalf("load did not reset: %+v", snap)
	}
	if last := rec.log[len(rec.log)-1]; last != "phase:PREP->IDLE" {
		t.Fatalf("expected PREP->IDLE notification, got %q", last)
	}
}

func TestSessionRedoAfterCompleteRestartsElapsed(t *testing.T) {
	s := NewSession([]model.Exercise{exercise(1, 2, 1), exercise(1, 2, 0)})
	s.Start()
	finish := func() int {
		t.Helper()
		for i := 0; i < 100; i++ {
			if s.Snapshot().Phase == PhaseComplete {
				return s.Snapshot().Elapsed
			}
			s.Tick()
		}
		t.Fatalf("workout never completed: %+v", s.Snapshot())
		return 0
	}
	first := finish()
	if first != 2*PrepTime+2+1+2 {
		t.Fatalf("first run elapsed = %d", first)
	}

	s.SetExercise(1)
	snap := s.Snapshot()
	if snap.Phase != PhasePrep || !snap.IsRunning || snap.Elapsed != 0 {
		t.Fatalf("expected a fresh running session, got %+v", snap)
	}
	if redo := finish(); redo != PrepTime+2 {
		t.Fatalf("redo elapsed = %d, want %d", redo, PrepTime+2)
	}
}
