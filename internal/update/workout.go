package update

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/timer"
	"github.com/sandeepkv93/dayloop/internal/views"
)

func (m Model) handleWorkoutKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if len(m.Workout.Preset.Exercises) == 0 {
		m.Status = StatusBar{Text: "no workout loaded", IsError: true}
		return m, nil
	}
	switch msg.String() {
	case " ":
		return m.applyTimer(timer.Action{Type: timer.ActionToggle})
	case "r":
		next, cmd := m.applyTimer(timer.Action{Type: timer.ActionReset})
		next.Status = StatusBar{Text: "workout reset", IsError: false}
		return next, cmd
	case "n":
		return m.applyTimer(timer.Action{Type: timer.ActionSetExercise, Index: m.Workout.Timer.CurrentExerciseIndex + 1})
	case "p":
		return m.applyTimer(timer.Action{Type: timer.ActionSetExercise, Index: m.Workout.Timer.CurrentExerciseIndex - 1})
	}
	return m, nil
}

// applyTimer runs a on the timer and keeps the pulse in step: a new
// generation starts whenever the timer starts or stops running.
func (m Model) applyTimer(a timer.Action) (Model, tea.Cmd) {
	before := m.Workout.Timer
	next, events := timer.Apply(before, m.Workout.Preset.Exercises, a)
	switch {
	case a.Type == timer.ActionReset:
		m.Workout.Elapsed = 0
		m.Workout.Logged = false
	case next.Phase == timer.PhasePrep && (before.Phase == timer.PhaseIdle || before.Phase == timer.PhaseComplete):
		// a finished workout resumed through n/p is a new session
		m.Workout.Elapsed = 0
		m.Workout.Logged = false
		m.Workout.StartedAt = m.clock.Now()
	}
	m.Workout.Timer = next
	m.handleTimerEvents(events)

	switch {
	case !before.IsRunning && next.IsRunning:
		m.Workout.Generation++
		return m, timerTickCmd(m.Workout.Generation)
	case before.IsRunning && !next.IsRunning:
		m.Workout.Generation++
		if next.Phase != timer.PhaseComplete && next.Phase != timer.PhaseIdle {
			m.Status = StatusBar{Text: "workout paused", IsError: false}
		}
	}
	return m, nil
}

func (m Model) onTimerTick(msg TimerTickMsg) (Model, tea.Cmd) {
	if msg.Generation != m.Workout.Generation || !m.Workout.Timer.IsRunning {
		return m, nil
	}
	next, events := timer.Apply(m.Workout.Timer, m.Workout.Preset.Exercises, timer.Action{Type: timer.ActionTick})
	m.Workout.Elapsed++
	m.Workout.Timer = next
	m.handleTimerEvents(events)
	if !next.IsRunning {
		m.Workout.Generation++
		return m, nil
	}
	return m, timerTickCmd(m.Workout.Generation)
}

func (m *Model) handleTimerEvents(events []timer.Event) {
	exercises := m.Workout.Preset.Exercises
	for _, ev := range events {
		switch ev.Type {
		case timer.EventPhaseChange:
			if ev.Phase == timer.PhaseIdle || ev.Phase == timer.PhaseComplete {
				continue
			}
			name := ""
			if i := m.Workout.Timer.CurrentExerciseIndex; i >= 0 && i < len(exercises) {
				name = exercises[i].Name
			}
			m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", strings.ToLower(string(ev.Phase)), name), IsError: false}
		case timer.EventExerciseComplete:
			if ev.ExerciseIndex >= 0 && ev.ExerciseIndex < len(exercises) {
				m.notify("Exercise done", exercises[ev.ExerciseIndex].Name, "info")
			}
		case timer.EventWorkoutComplete:
			m.recordWorkout()
		}
	}
}

// recordWorkout appends a workout log for the finished session once.
func (m *Model) recordWorkout() {
	if m.Workout.Logged {
		return
	}
	m.Workout.Logged = true
	m.Status = StatusBar{Text: fmt.Sprintf("%s complete in %s", m.Workout.Preset.Name, views.Clock(m.Workout.Elapsed)), IsError: false}
	if m.stats == nil {
		return
	}
	started := m.Workout.StartedAt
	if started.IsZero() {
		started = m.clock.Now().Add(-time.Duration(m.Workout.Elapsed) * time.Second)
	}
	entry, err := m.stats.Record(m.ctx, m.Workout.Preset, started, m.Workout.Elapsed)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("record workout failed: %v", err), IsError: true}
		m.logger.Error("record workout", "preset", m.Workout.Preset.ID, "error", err)
		return
	}
	m.logger.Info("workout recorded", "id", entry.ID, "preset", entry.PresetID, "duration_sec", entry.DurationSec)
	m.notify("Workout complete", fmt.Sprintf("%s, %s", entry.PresetName, views.Clock(entry.DurationSec)), "info")
	m.refreshToday()
}

// loadPreset swaps the timer onto p. Any in-flight pulse is dropped.
func (m *Model) loadPreset(p model.WorkoutPreset) {
	m.Workout = WorkoutState{
		Preset:     p.Clone(),
		Timer:      timer.Init(p.Exercises),
		Generation: m.Workout.Generation + 1,
	}
}

func (m *Model) loadRoutinePreset() {
	if m.catalog == nil {
		return
	}
	p, err := m.catalog.ForRoutine(m.ctx, m.Today.Daily.ActiveRoutine)
	if err != nil {
		m.logger.Warn("no preset for routine", "routine", m.Today.Daily.ActiveRoutine, "error", err)
		return
	}
	m.loadPreset(p)
}

func (m Model) phaseTotal() int {
	switch m.Workout.Timer.Phase {
	case timer.PhasePrep:
		return timer.PrepTime
	case timer.PhaseWork:
		return m.Workout.Timer.WorkTime
	case timer.PhaseRest:
		return m.Workout.Timer.RestTime
	default:
		return 0
	}
}

func (m Model) phaseProgress() float64 {
	if m.Workout.Timer.Phase == timer.PhaseComplete {
		return 1
	}
	total := m.phaseTotal()
	if total <= 0 {
		return 0
	}
	return clamp01(float64(total-m.Workout.Timer.TimeRemaining) / float64(total))
}

func (m Model) renderWorkoutView() string {
	w := m.Workout
	data := views.WorkoutPanelData{
		PresetName: w.Preset.Name,
		Phase:      string(w.Timer.Phase),
		Timer:      views.Clock(w.Timer.TimeRemaining),
		Set:        fmt.Sprintf("%d/%d", w.Timer.CurrentSet, w.Timer.TotalSets),
		ExerciseNo: fmt.Sprintf("%d/%d", w.Timer.CurrentExerciseIndex+1, w.Timer.TotalExercises),
		Elapsed:    views.Clock(w.Elapsed),
		Running:    w.Timer.IsRunning,
		Complete:   w.Timer.Phase == timer.PhaseComplete,
	}
	if i := w.Timer.CurrentExerciseIndex; i >= 0 && i < len(w.Preset.Exercises) {
		data.Exercise = w.Preset.Exercises[i].Name
		data.Detail = w.Preset.Exercises[i].Detail
	}
	progress := m.phaseProgress()
	data.ProgressView = m.workoutProgress.ViewAs(progress)
	data.ProgressPct = int(progress * 100)
	return views.RenderWorkoutPanel(data)
}

func (m Model) renderExerciseList() string {
	w := m.Workout
	if len(w.Preset.Exercises) == 0 {
		return "exercises:\n(none)"
	}
	var b strings.Builder
	b.WriteString("exercises:\n")
	for i, e := range w.Preset.Exercises {
		cursor := " "
		if i == w.Timer.CurrentExerciseIndex {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %d. %s  %dx %ds/%ds\n", cursor, i+1, e.Name, e.Sets, e.Work, e.Rest))
	}
	return strings.TrimSpace(b.String())
}

func (m Model) renderWorkoutSummary() string {
	w := m.Workout
	if w.Preset.Name == "" {
		return "next workout:\n(no preset for today's routine)"
	}
	return fmt.Sprintf("next workout:\n%s %s\nphase: %s  %s\n\n%s",
		w.Preset.Icon, w.Preset.Name,
		views.PhaseLabel(string(w.Timer.Phase)), views.Clock(w.Timer.TimeRemaining),
		m.renderExerciseList(),
	)
}

func timerTickCmd(generation int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return TimerTickMsg{Generation: generation} })
}
