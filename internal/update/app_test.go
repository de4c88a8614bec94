package update

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/dayloop/internal/clock"
	"github.com/sandeepkv93/dayloop/internal/daily"
	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/presets"
	"github.com/sandeepkv93/dayloop/internal/scheduler"
	"github.com/sandeepkv93/dayloop/internal/storage"
	"github.com/sandeepkv93/dayloop/internal/timer"
)

var testStart = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo    *storage.SQLiteRepository
	clock   *clock.FakeClock
	stats   *daily.Stats
	tracker *daily.Tracker
	engine  *scheduler.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "update-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	fake := clock.Fake(testStart)
	stats := daily.NewStats(repo, time.UTC)
	tracker, err := daily.NewTracker(context.Background(), repo, daily.NewArchiver(repo, stats, fake, nil), daily.TrackerOptions{
		Goals:    daily.DefaultGoals(),
		Clock:    fake,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return &fixture{
		repo:    repo,
		clock:   fake,
		stats:   stats,
		tracker: tracker,
		engine:  scheduler.NewEngine(4, fake),
	}
}

func (f *fixture) model(t *testing.T) Model {
	t.Helper()
	return NewModel(Deps{
		Context:   context.Background(),
		Tracker:   f.tracker,
		Catalog:   presets.NewCatalog(f.repo),
		Stats:     f.stats,
		History:   f.repo,
		Scheduler: f.engine,
		Clock:     f.clock,
		Location:  time.UTC,
	})
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func palette(t *testing.T, m Model, line string) Model {
	t.Helper()
	m, _ = send(t, m, keys("/"), keys(line), tea.KeyMsg{Type: tea.KeyEnter})
	if m.Palette.Active {
		t.Fatalf("palette still active after %q", line)
	}
	return m
}

var tiny = model.WorkoutPreset{
	ID:        "custom-tiny",
	Name:      "Tiny",
	Exercises: []model.Exercise{{Name: "Jacks", Sets: 1, Work: 2, Rest: 0}},
}

func TestNewModelDefaults(t *testing.T) {
	m := newFixture(t).model(t)
	if m.CurrentView != ViewToday {
		t.Fatalf("expected default view %q, got %q", ViewToday, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if m.Today.Daily.Date != "2024-03-10" {
		t.Fatalf("expected today's record, got %q", m.Today.Daily.Date)
	}
	if m.Workout.Preset.ID != "upper-body-a" || m.Workout.Timer.Phase != timer.PhaseIdle {
		t.Fatalf("expected routine A preset loaded idle, got %q %s", m.Workout.Preset.ID, m.Workout.Timer.Phase)
	}
	if len(m.Presets.Items) != len(presets.BuiltIn()) {
		t.Fatalf("expected built-in presets listed, got %d", len(m.Presets.Items))
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newFixture(t).model(t)
	for _, tc := range []struct {
		key  string
		want View
	}{
		{"2", ViewWorkout},
		{"3", ViewHistory},
		{"4", ViewPresets},
		{"1", ViewToday},
	} {
		m, _ = send(t, m, keys(tc.key))
		if m.CurrentView != tc.want {
			t.Fatalf("key %s: expected %q, got %q", tc.key, tc.want, m.CurrentView)
		}
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, SwitchViewMsg{View: ViewHistory})
	if m.CurrentView != ViewHistory {
		t.Fatalf("expected history view, got %q", m.CurrentView)
	}
	m, _ = send(t, m, SwitchViewMsg{View: View("Unknown")})
	if m.CurrentView != ViewHistory {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m, _ = send(t, m, AppErrorMsg{Err: errors.New("boom")})
	if m.LastError == nil || m.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", m.LastError)
	}
	if !m.Status.IsError || m.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", m.Status)
	}

	m, _ = send(t, m, ClearStatusMsg{})
	if m.Status.Text != "" || m.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", m.Status)
	}
}

func TestUpdateQuitKeyDropsPulse(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, keys("2"), keys(" "))
	gen := m.Workout.Generation
	m, cmd := send(t, m, keys("q"))
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quitting flag and quit command")
	}
	if m.Workout.Generation == gen {
		t.Fatal("quit should invalidate the running pulse")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m := newFixture(t).model(t)
	m.Status = StatusBar{Text: "all good"}
	out := m.View()
	for _, want := range []string{"view: Today", "2024-03-10", "status: all good", "Read 10 pages"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output: %q", want, out)
		}
	}
}

func TestWindowSizeWidensPanes(t *testing.T) {
	m := newFixture(t).model(t)
	narrow := m.View()
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 200, Height: 50})
	if m.Width != 200 {
		t.Fatalf("expected width 200, got %d", m.Width)
	}
	if wide := m.View(); lipgloss.Width(wide) <= lipgloss.Width(narrow) {
		t.Fatalf("expected wider layout, got %d <= %d", lipgloss.Width(wide), lipgloss.Width(narrow))
	}
}

func TestPaletteTaskAndDone(t *testing.T) {
	m := newFixture(t).model(t)
	m = palette(t, m, "task buy oats")
	if len(m.Today.Daily.Tasks) != 1 || m.Today.Daily.Tasks[0].Title != "buy oats" {
		t.Fatalf("expected task added, got %+v", m.Today.Daily.Tasks)
	}
	m = palette(t, m, "done 1")
	if !m.Today.Daily.Tasks[0].Done {
		t.Fatalf("expected task done, got %+v", m.Today.Daily.Tasks[0])
	}

	m = palette(t, m, "done 4")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no task #4") {
		t.Fatalf("expected out-of-range error, got %+v", m.Status)
	}
}

func TestPaletteTrackers(t *testing.T) {
	m := newFixture(t).model(t)
	m = palette(t, m, "protein 40g")
	m = palette(t, m, "water")
	m = palette(t, m, "mind 5")
	m = palette(t, m, "pray fajr jamat")

	d := m.Today.Daily
	if d.Protein.Current != 40 || d.Hydration.Glasses != 1 || d.Mindfulness.Minutes != 5 {
		t.Fatalf("unexpected counters: %+v %+v %+v", d.Protein, d.Hydration, d.Mindfulness)
	}
	if len(d.Prayers) != 1 || d.Prayers[0].Type != model.PrayerJamat {
		t.Fatalf("unexpected prayers: %+v", d.Prayers)
	}
	if len(m.Notifications) == 0 {
		t.Fatal("expected command notifications")
	}
}

func TestPaletteRoutineReloadsIdleWorkout(t *testing.T) {
	m := newFixture(t).model(t)
	m = palette(t, m, "routine B")
	if m.Today.Daily.ActiveRoutine != model.RoutineB {
		t.Fatalf("expected routine B, got %q", m.Today.Daily.ActiveRoutine)
	}
	if m.Workout.Preset.ID != "lower-body-b" {
		t.Fatalf("expected routine B preset, got %q", m.Workout.Preset.ID)
	}
}

func TestPaletteWorkoutStartsTimer(t *testing.T) {
	m := newFixture(t).model(t)
	m, cmd := send(t, m, keys("/"), keys("workout core-express"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.CurrentView != ViewWorkout || m.Workout.Preset.ID != "core-express" {
		t.Fatalf("expected core express in workout view, got %q %q", m.CurrentView, m.Workout.Preset.ID)
	}
	if m.Workout.Timer.Phase != timer.PhasePrep || !m.Workout.Timer.IsRunning || cmd == nil {
		t.Fatalf("expected running PREP with a pulse, got %+v", m.Workout.Timer)
	}
}

func TestPaletteReportsParseErrors(t *testing.T) {
	m := newFixture(t).model(t)
	m = palette(t, m, "protein lots")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "invalid_argument") {
		t.Fatalf("expected invalid argument, got %+v", m.Status)
	}
	m, _ = send(t, m, keys("/"), keys("wat"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Palette.Input != "" {
		t.Fatalf("esc should close the palette, got %+v", m.Palette)
	}
}

func TestTimerPulseGeneration(t *testing.T) {
	m := newFixture(t).model(t)
	m, cmd := send(t, m, keys("2"), keys(" "))
	if cmd == nil || !m.Workout.Timer.IsRunning {
		t.Fatal("space should start the timer and schedule a pulse")
	}
	gen := m.Workout.Generation

	m, cmd = send(t, m, TimerTickMsg{Generation: gen})
	if m.Workout.Timer.TimeRemaining != timer.PrepTime-1 || cmd == nil {
		t.Fatalf("expected one second consumed, got %+v", m.Workout.Timer)
	}

	m, _ = send(t, m, keys(" "))
	if m.Workout.Timer.IsRunning || m.Workout.Generation == gen {
		t.Fatalf("pause should stop the timer and bump the generation, got %+v", m.Workout)
	}
	before := m.Workout.Timer
	m, cmd = send(t, m, TimerTickMsg{Generation: gen})
	if m.Workout.Timer != before || cmd != nil {
		t.Fatal("stale pulse must be dropped")
	}

	m, cmd = send(t, m, keys(" "))
	if !m.Workout.Timer.IsRunning || cmd == nil {
		t.Fatal("resume should restart the pulse")
	}
	m, _ = send(t, m, keys("r"))
	if m.Workout.Timer.Phase != timer.PhaseIdle || m.Workout.Elapsed != 0 {
		t.Fatalf("reset should return to IDLE, got %+v", m.Workout)
	}
}

func TestWorkoutCompletionRecordsLog(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	m.loadPreset(tiny)
	m, _ = send(t, m, keys("2"), keys(" "))
	for i := 0; i < timer.PrepTime+2; i++ {
		m, _ = send(t, m, TimerTickMsg{Generation: m.Workout.Generation})
	}
	if m.Workout.Timer.Phase != timer.PhaseComplete || !m.Workout.Logged {
		t.Fatalf("expected logged completion, got %+v", m.Workout)
	}
	if m.Workout.Elapsed != timer.PrepTime+2 {
		t.Fatalf("expected elapsed %d, got %d", timer.PrepTime+2, m.Workout.Elapsed)
	}

	logs, err := f.stats.ForDate(context.Background(), "2024-03-10")
	if err != nil {
		t.Fatalf("for date: %v", err)
	}
	if len(logs) != 1 || logs[0].PresetID != tiny.ID || logs[0].DurationSec != timer.PrepTime+2 {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if m.Today.WorkoutsDone != 1 {
		t.Fatalf("expected dashboard to count the workout, got %d", m.Today.WorkoutsDone)
	}

	m, _ = send(t, m, TimerTickMsg{Generation: m.Workout.Generation})
	logs, _ = f.stats.ForDate(context.Background(), "2024-03-10")
	if len(logs) != 1 {
		t.Fatalf("completion must be recorded once, got %d", len(logs))
	}
}

func TestRedoAfterCompletionLogsOnlyTheRedo(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	m.loadPreset(model.WorkoutPreset{
		ID:   "custom-pair",
		Name: "Pair",
		Exercises: []model.Exercise{
			{Name: "A", Sets: 1, Work: 2, Rest: 1},
			{Name: "B", Sets: 1, Work: 2, Rest: 0},
		},
	})
	finish := func(m Model) Model {
		t.Helper()
		for i := 0; i < 100; i++ {
			if m.Workout.Timer.Phase == timer.PhaseComplete {
				return m
			}
			m, _ = send(t, m, TimerTickMsg{Generation: m.Workout.Generation})
		}
		t.Fatalf("workout never completed: %+v", m.Workout.Timer)
		return m
	}
	full := 2*timer.PrepTime + 2 + 1 + 2

	m, _ = send(t, m, keys("2"), keys(" "))
	m = finish(m)
	if m.Workout.Elapsed != full {
		t.Fatalf("first run elapsed = %d, want %d", m.Workout.Elapsed, full)
	}

	f.clock.Advance(time.Minute)
	m, _ = send(t, m, keys("p"))
	if m.Workout.Timer.Phase != timer.PhasePrep || m.Workout.Elapsed != 0 || m.Workout.Logged {
		t.Fatalf("expected a fresh session after leaving COMPLETE, got %+v", m.Workout)
	}
	if !m.Workout.StartedAt.Equal(testStart.Add(time.Minute)) {
		t.Fatalf("expected redo start time to move, got %v", m.Workout.StartedAt)
	}
	m = finish(m)

	logs, err := f.stats.ForDate(context.Background(), "2024-03-10")
	if err != nil {
		t.Fatalf("for date: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected two logs, got %d", len(logs))
	}
	total := 0
	for _, l := range logs {
		total += l.DurationSec
	}
	if total != 2*full {
		t.Fatalf("expected %d recorded seconds, got %d", 2*full, total)
	}
}

func TestNextPreviousExercise(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, keys("2"), keys("n"))
	if m.Workout.Timer.CurrentExerciseIndex != 1 {
		t.Fatalf("expected exercise 2, got %d", m.Workout.Timer.CurrentExerciseIndex)
	}
	m, _ = send(t, m, keys("p"), keys("p"))
	if m.Workout.Timer.CurrentExerciseIndex != 0 {
		t.Fatalf("expected exercise 1, got %d", m.Workout.Timer.CurrentExerciseIndex)
	}
}

func TestFocusMsgRollsOverDay(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	m = palette(t, m, "protein 55")

	f.clock.Advance(24 * time.Hour)
	m, _ = send(t, m, tea.FocusMsg{})
	if m.Today.Daily.Date != "2024-03-11" || m.Today.Daily.Protein.Current != 0 {
		t.Fatalf("expected fresh day, got %+v", m.Today.Daily)
	}
	if !strings.Contains(m.Status.Text, "new day 2024-03-11") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	rec, err := f.repo.GetHistory(context.Background(), "2024-03-10")
	if err != nil {
		t.Fatalf("expected archived day: %v", err)
	}
	if rec.Nutrition.Protein != 55 {
		t.Fatalf("expected archived protein 55, got %d", rec.Nutrition.Protein)
	}

	m, _ = send(t, m, tea.FocusMsg{})
	if m.Today.Daily.Date != "2024-03-11" {
		t.Fatalf("second focus changed date: %q", m.Today.Daily.Date)
	}
}

func TestStaleCheckMsgRearms(t *testing.T) {
	m := newFixture(t).model(t)
	if _, cmd := send(t, m, StaleCheckMsg{}); cmd == nil {
		t.Fatal("stale check should schedule the next check")
	}
}

func TestDayBoundaryMsgReschedules(t *testing.T) {
	f := newFixture(t)
	m := f.model(t)
	if f.engine.Pending() != 1 {
		t.Fatalf("expected first midnight scheduled, got %d", f.engine.Pending())
	}
	f.clock.Advance(15 * time.Hour)
	m, cmd := send(t, m, DayBoundaryMsg{Event: scheduler.Event{Kind: scheduler.KindDayBoundary}})
	if cmd == nil {
		t.Fatal("expected to keep listening for boundaries")
	}
	if f.engine.Pending() != 2 {
		t.Fatalf("expected next midnight queued, got %d", f.engine.Pending())
	}
	if m.Today.Daily.Date != "2024-03-11" {
		t.Fatalf("expected rollover at midnight, got %q", m.Today.Daily.Date)
	}
}

func TestHistoryViewListsArchivedDays(t *testing.T) {
	f := newFixture(t)
	for _, date := range []string{"2024-03-08", "2024-03-09"} {
		rec := model.HistoryRecord{Date: date, Prayers: model.PrayerSummary{Completed: []model.PrayerStatus{}, Total: model.PrayersPerDay}}
		if _, err := f.repo.InsertHistory(context.Background(), rec); err != nil {
			t.Fatalf("insert history: %v", err)
		}
	}
	m := f.model(t)
	m, _ = send(t, m, keys("3"))
	if len(m.History.Records) != 2 || m.History.Records[0].Date != "2024-03-09" {
		t.Fatalf("expected newest first, got %+v", m.History.Records)
	}
	m, _ = send(t, m, keys("j"))
	if m.History.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.History.Cursor)
	}
	if out := m.View(); !strings.Contains(out, "history: 2 day(s)") {
		t.Fatalf("expected history header in output: %q", out)
	}
}

func TestPresetsCopyLoadAndDelete(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, keys("4"), keys("D"))
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "built in") {
		t.Fatalf("expected built-in delete refused, got %+v", m.Status)
	}

	m, _ = send(t, m, keys("c"))
	p, ok := m.currentPreset()
	if !ok || !p.IsCustom() || p.Name != "Upper Body A (copy)" {
		t.Fatalf("expected copy selected, got %+v", p)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.CurrentView != ViewWorkout || m.Workout.Preset.ID != p.ID {
		t.Fatalf("enter should load the preset, got %q %q", m.CurrentView, m.Workout.Preset.ID)
	}

	m, _ = send(t, m, keys("4"), keys("D"))
	if m.Status.IsError || len(m.Presets.Items) != len(presets.BuiltIn()) {
		t.Fatalf("expected copy deleted, got %+v items=%d", m.Status, len(m.Presets.Items))
	}
}

func TestTodayKeysToggleAndHydrate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.tracker.AddTask(context.Background(), "stretch"); err != nil {
		t.Fatalf("add task: %v", err)
	}
	m := f.model(t)
	m, _ = send(t, m, keys("x"), keys("+"), keys("+"), keys("-"))
	if !m.Today.Daily.Tasks[0].Done {
		t.Fatal("expected task toggled")
	}
	if m.Today.Daily.Hydration.Glasses != 1 {
		t.Fatalf("expected 1 glass, got %d", m.Today.Daily.Hydration.Glasses)
	}

	m, _ = send(t, m, keys("j"), keys("x"))
	if !m.Today.Daily.NonNegotiables[0].Done {
		t.Fatalf("expected first non-negotiable toggled, got %+v", m.Today.Daily.NonNegotiables)
	}

	m, _ = send(t, m, keys("k"), keys("D"))
	if len(m.Today.Daily.Tasks) != 0 {
		t.Fatalf("expected task removed, got %+v", m.Today.Daily.Tasks)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newFixture(t).model(t)
	m, _ = send(t, m, keys("2"), keys("?"))
	if !m.HelpVisible {
		t.Fatal("expected help visible")
	}
	if out := m.View(); !strings.Contains(out, "start/pause timer") {
		t.Fatalf("expected workout bindings in help: %q", out)
	}
}
